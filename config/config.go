// Package config loads server and tool settings from flags, config.yaml and
// the environment.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "GEEKCMS"

type Content struct {
	// Source is one of "dir", "git" or "github".
	Source string `mapstructure:"source"`
	Root   string `mapstructure:"root"`
	Branch string `mapstructure:"branch"`
}

type GitHub struct {
	Repo   string `mapstructure:"repo"`
	Branch string `mapstructure:"branch"`
	APIURL string `mapstructure:"api_url"`
	Token  string `mapstructure:"token"`
}

type OAuth struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	AuthorizeURL string `mapstructure:"authorize_url"`
	TokenURL     string `mapstructure:"token_url"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type Contact struct {
	SheetsURL string `mapstructure:"sheets_url"`
}

type Sync struct {
	Dir      string        `mapstructure:"dir"`
	Remote   string        `mapstructure:"remote"`
	Branch   string        `mapstructure:"branch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

type Config struct {
	Bind    string  `mapstructure:"bind"`
	Network string  `mapstructure:"network"`
	Debug   bool    `mapstructure:"debug"`
	Content Content `mapstructure:"content"`
	GitHub  GitHub  `mapstructure:"github"`
	OAuth   OAuth   `mapstructure:"oauth"`
	DB      DB      `mapstructure:"db"`
	Contact Contact `mapstructure:"contact"`
	Sync    Sync    `mapstructure:"sync"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bind", "localhost:8080")
	v.SetDefault("network", "tcp")
	v.SetDefault("debug", false)
	v.SetDefault("content.source", "dir")
	v.SetDefault("content.root", ".")
	v.SetDefault("content.branch", "main")
	v.SetDefault("github.repo", "khai-nguyen-dinh/gamegeek")
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.token", "")
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.authorize_url", "https://github.com/login/oauth/authorize")
	v.SetDefault("oauth.token_url", "https://github.com/login/oauth/access_token")
	v.SetDefault("db.path", "geekcms.db")
	v.SetDefault("contact.sheets_url", "")
	v.SetDefault("sync.dir", "src/content")
	v.SetDefault("sync.remote", "origin")
	v.SetDefault("sync.branch", "main")
	v.SetDefault("sync.debounce", "2s")
}

// legacyEnv are the variable names the site was deployed with before; they
// apply when the prefixed variables are unset.
var legacyEnv = map[string][]string{
	"oauth.client_id":     {EnvPrefix + "_OAUTH_CLIENT_ID", "KEYSTATIC_GITHUB_CLIENT_ID"},
	"oauth.client_secret": {EnvPrefix + "_OAUTH_CLIENT_SECRET", "KEYSTATIC_GITHUB_CLIENT_SECRET"},
	"github.token":        {EnvPrefix + "_GITHUB_TOKEN", "GITHUB_TOKEN", "KEYSTATIC_GITHUB_TOKEN"},
	"contact.sheets_url":  {EnvPrefix + "_CONTACT_SHEETS_URL", "PUBLIC_GOOGLE_SHEETS_WEB_APP_URL"},
}

// Load reads cfgFile (or ./config.yaml when empty and present), the
// environment and the flags in fs, in increasing priority.
func Load(cfgFile string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, errors.Wrapf(err, "bind env %q", key)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, errors.Wrap(err, "bind flags")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config into struct")
	}
	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Content.Source {
	case "dir", "git", "github":
	default:
		return errors.Errorf("content.source must be dir, git or github, got %q", c.Content.Source)
	}
	if c.GitHub.Repo == "" || !strings.Contains(c.GitHub.Repo, "/") {
		return errors.Errorf("github.repo must be owner/name, got %q", c.GitHub.Repo)
	}
	return nil
}
