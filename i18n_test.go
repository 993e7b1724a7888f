package geekcms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, Vietnamese, ParseLanguage("vi"))
	assert.Equal(t, English, ParseLanguage("en"))
	assert.Equal(t, DefaultLanguage, ParseLanguage("fr"))
	assert.Equal(t, DefaultLanguage, ParseLanguage(""))
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Connecting the Game Industry of Vietnam", Translate(English, "hero.title"))
	assert.NotEqual(t, Translate(English, "hero.title"), Translate(Vietnamese, "hero.title"))
	assert.Equal(t, Translate(English, "hero.title"), Translate(Language("de"), "hero.title"))
	assert.Equal(t, "no.such.key", Translate(Vietnamese, "no.such.key"))
}
