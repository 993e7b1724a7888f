package geekcms

type Language string

const (
	English    Language = "en"
	Vietnamese Language = "vi"

	DefaultLanguage = English
)

var Languages = map[Language]string{
	English:    "English",
	Vietnamese: "Tiếng Việt",
}

var translations = map[Language]*Content{
	English: NewContent(map[string]interface{}{
		"hero": map[string]interface{}{
			"title":    "Connecting the Game Industry of Vietnam",
			"subtitle": "Empower collaboration, innovation, and sustainable growth across the entire game industry ecosystem",
			"cta":      "Get Started",
		},
		"about": map[string]interface{}{
			"title":       "About GameGeek",
			"description": "We are a team of passionate developers, designers, and technology enthusiasts dedicated to creating innovative digital solutions that drive business growth.",
			"experience":  "With over 5 years of experience in the industry, we've helped hundreds of businesses transform their digital presence and achieve their goals.",
		},
		"features": map[string]interface{}{
			"title":    "Why Choose GameGeek?",
			"subtitle": "We combine cutting-edge technology with creative design to deliver exceptional digital experiences.",
		},
		"cta": map[string]interface{}{
			"title":    "Ready to Transform Your Digital Presence?",
			"subtitle": "Let's work together to create something amazing. Get in touch with our team today and let's discuss how we can help your business grow.",
			"button":   "Start Your Project",
		},
	}),
	Vietnamese: NewContent(map[string]interface{}{
		"hero": map[string]interface{}{
			"title":    "Kết nối ngành Game Việt Nam",
			"subtitle": "Thúc đẩy hợp tác, đổi mới và tăng trưởng bền vững trong toàn bộ hệ sinh thái ngành game",
			"cta":      "Bắt đầu",
		},
		"about": map[string]interface{}{
			"title":       "Về GameGeek",
			"description": "Chúng tôi là một đội ngũ phát triển, thiết kế và những người đam mê công nghệ, tận tâm tạo ra các giải pháp kỹ thuật số sáng tạo thúc đẩy tăng trưởng kinh doanh.",
			"experience":  "Với hơn 5 năm kinh nghiệm trong ngành, chúng tôi đã giúp hàng trăm doanh nghiệp chuyển đổi sự hiện diện kỹ thuật số và đạt được mục tiêu của họ.",
		},
		"features": map[string]interface{}{
			"title":    "Tại sao chọn GameGeek?",
			"subtitle": "Chúng tôi kết hợp công nghệ tiên tiến với thiết kế sáng tạo để mang lại trải nghiệm kỹ thuật số đặc biệt.",
		},
		"cta": map[string]interface{}{
			"title":    "Sẵn sàng chuyển đổi sự hiện diện kỹ thuật số?",
			"subtitle": "Hãy cùng chúng tôi tạo ra điều gì đó tuyệt vời. Liên hệ với đội ngũ của chúng tôi ngay hôm nay và hãy thảo luận về cách chúng tôi có thể giúp doanh nghiệp của bạn phát triển.",
			"button":   "Bắt đầu dự án",
		},
	}),
}

// ParseLanguage maps unknown codes to the default language.
func ParseLanguage(code string) Language {
	if _, ok := Languages[Language(code)]; ok {
		return Language(code)
	}
	return DefaultLanguage
}

// Translate looks key up in lang, then in the default language. Missing keys
// are returned unchanged.
func Translate(lang Language, key string) string {
	if c, ok := translations[lang]; ok {
		if s := c.String(key); s != "" {
			return s
		}
	}
	if s := translations[DefaultLanguage].String(key); s != "" {
		return s
	}
	return key
}
