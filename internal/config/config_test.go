package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/site-scraper/internal/domain"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("url", "", "")
	RegisterCrawlFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlagSet(t), "")
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Mode)
	assert.Equal(t, "./scraped-content", cfg.Output)
	assert.Equal(t, 50, cfg.MaxPages)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 5*time.Second, cfg.SelectorTimeout)
	assert.Equal(t, "main", cfg.ContentSelector)
	assert.True(t, cfg.Headless)
	assert.Equal(t, []string{"logo", "hero", "bbb", "google", "trust"}, cfg.ImageKeywords)
	assert.Equal(t, []string{"badge"}, cfg.AltKeywords)
	assert.Empty(t, cfg.Proxies)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 48*time.Hour, cfg.DedupWindow)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("SCRAPER_MAX_PAGES", "7")
	t.Setenv("SCRAPER_MODE", "browser")
	t.Setenv("SCRAPER_PROXIES", "http://p1:8080, http://p2:8080")
	t.Setenv("SCRAPER_HEADLESS", "false")

	cfgFile := filepath.Join(t.TempDir(), "scraper.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("max_pages: 3\noutput: ./from-file\nredis_addr: localhost:6379\n"), 0o644))

	fs := newFlagSet(t, "--url", "https://acme.example", "--mode", "simple", "--delay", "250ms")
	cfg, err := Load(fs, cfgFile)
	require.NoError(t, err)

	assert.Equal(t, "https://acme.example", cfg.URL)
	assert.Equal(t, "simple", cfg.Mode, "flag beats env")
	assert.Equal(t, 7, cfg.MaxPages, "env beats file")
	assert.Equal(t, "./from-file", cfg.Output, "file beats default")
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, []string{"http://p1:8080", "http://p2:8080"}, cfg.Proxies)
	assert.False(t, cfg.Headless)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			Mode:              "auto",
			MaxPages:          1,
			RequestTimeout:    time.Second,
			NavigationTimeout: time.Second,
			SelectorTimeout:   time.Second,
			APITimeout:        time.Second,
			MaxBodyBytes:      1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "turbo" }, wantErr: domain.ErrInvalidMode},
		{name: "zero pages", mutate: func(c *Config) { c.MaxPages = 0 }, wantErr: domain.ErrInvalidMaxPages},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("non-positive timeout", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.SelectorTimeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative delay", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.Delay = -time.Second
		assert.Error(t, cfg.Validate())
	})
}
