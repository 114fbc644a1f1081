package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/user/site-scraper/internal/domain"
)

// EnvPrefix namespaces environment overrides, e.g. SCRAPER_MAX_PAGES.
const EnvPrefix = "SCRAPER"

const DefaultUserAgent = "SiteScraperBot/1.0 (+https://github.com/user/site-scraper)"

// Config stores all configuration for the application.
type Config struct {
	URL       string `mapstructure:"url"`
	Mode      string `mapstructure:"mode"`
	Output    string `mapstructure:"output"`
	MaxPages  int    `mapstructure:"max_pages"`
	UserAgent string `mapstructure:"user_agent"`
	LogLevel  string `mapstructure:"log_level"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	Delay          time.Duration `mapstructure:"delay"`

	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SelectorTimeout   time.Duration `mapstructure:"selector_timeout"`
	ContentSelector   string        `mapstructure:"content_selector"`
	Headless          bool          `mapstructure:"headless"`
	ChromePath        string        `mapstructure:"chrome_path"`

	ImageKeywords []string `mapstructure:"image_keywords"`
	AltKeywords   []string `mapstructure:"alt_keywords"`
	Proxies       []string `mapstructure:"proxies"`

	ServerPort  string        `mapstructure:"server_port"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	DedupWindow time.Duration `mapstructure:"dedup_window"`
	APITimeout  time.Duration `mapstructure:"api_timeout"`
}

var defaults = map[string]any{
	"url":                "",
	"mode":               string(domain.ModeAuto),
	"output":             "./scraped-content",
	"max_pages":          50,
	"user_agent":         DefaultUserAgent,
	"log_level":          "info",
	"request_timeout":    30 * time.Second,
	"max_body_bytes":     int64(10 << 20),
	"delay":              time.Duration(0),
	"navigation_timeout": 30 * time.Second,
	"selector_timeout":   5 * time.Second,
	"content_selector":   "main",
	"headless":           true,
	"chrome_path":        "",
	"image_keywords":     []string{"logo", "hero", "bbb", "google", "trust"},
	"alt_keywords":       []string{"badge"},
	"proxies":            []string{},
	"server_port":        "8080",
	"redis_addr":         "",
	"dedup_window":       48 * time.Hour,
	"api_timeout":        10 * time.Minute,
}

// RegisterCrawlFlags adds the per-job flags shared by every command.
func RegisterCrawlFlags(fs *pflag.FlagSet) {
	fs.String("mode", string(domain.ModeAuto), "fetch strategy: simple, browser or auto")
	fs.StringP("output", "o", "./scraped-content", "directory the JSON artifacts are written to")
	fs.Int("max-pages", 50, "maximum number of pages recorded per job")
	fs.String("user-agent", DefaultUserAgent, "User-Agent sent by both tiers")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.Duration("request-timeout", 30*time.Second, "per-request timeout of the static tier")
	fs.Duration("delay", 0, "pause between page fetches")
	fs.Duration("navigation-timeout", 30*time.Second, "how long the browser tier waits for the network to settle")
	fs.Duration("selector-timeout", 5*time.Second, "how long the browser tier waits for the content selector")
	fs.String("content-selector", "main", "CSS selector the browser tier waits for before capture")
	fs.Bool("headless", true, "run Chrome headless")
	fs.StringSlice("proxies", nil, "outbound proxy URLs, rotated per request")
}

// Load resolves configuration from flags, SCRAPER_* environment variables,
// an optional config file and defaults, in that order of precedence. With
// no configFile a .env file in the working directory is read if present.
func Load(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		// Missing .env is fine; configuration can come purely from the environment.
		_ = v.ReadInConfig()
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := defaults[key]; !known {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ImageKeywords = splitList(cfg.ImageKeywords)
	cfg.AltKeywords = splitList(cfg.AltKeywords)
	cfg.Proxies = splitList(cfg.Proxies)
	return &cfg, nil
}

// Validate rejects settings no job could run with. The URL is checked when
// a job is built.
func (c *Config) Validate() error {
	if _, err := domain.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidMaxPages, c.MaxPages)
	}
	for name, d := range map[string]time.Duration{
		"request_timeout":    c.RequestTimeout,
		"navigation_timeout": c.NavigationTimeout,
		"selector_timeout":   c.SelectorTimeout,
		"api_timeout":        c.APITimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.Delay)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// splitList flattens comma-separated entries, as env vars and .env files
// deliver lists as a single string.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
