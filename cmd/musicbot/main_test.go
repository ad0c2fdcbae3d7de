package main

import (
	"strings"
	"testing"

	"github.com/spf13/viper"

	"musicbot/internal/core"
	"musicbot/internal/i18n"
)

func TestFlagToEnvVar(t *testing.T) {
	tests := map[string]string{
		"platform":               "MUSICBOT_PLATFORM",
		"onebot-access-token":    "MUSICBOT_ONEBOT_ACCESS_TOKEN",
		"flood-limit-per-minute": "MUSICBOT_FLOOD_LIMIT_PER_MINUTE",
	}
	for flag, want := range tests {
		if got := flagToEnvVar(flag); got != want {
			t.Errorf("flagToEnvVar(%q) = %q, want %q", flag, got, want)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*core.Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*core.Config) {},
		},
		{
			name: "no frontend",
			mutate: func(c *core.Config) {
				c.OneBot.Enabled = false
			},
			wantErr: "at least one chat frontend",
		},
		{
			name: "onebot without url",
			mutate: func(c *core.Config) {
				c.OneBot.URL = ""
			},
			wantErr: "OneBot URL",
		},
		{
			name: "telegram without token",
			mutate: func(c *core.Config) {
				c.Telegram.Enabled = true
			},
			wantErr: "telegram bot token",
		},
		{
			name: "platform alias",
			mutate: func(c *core.Config) {
				c.Music.Platform = "163"
			},
		},
		{
			name: "unknown platform",
			mutate: func(c *core.Config) {
				c.Music.Platform = "spotify"
			},
			wantErr: "default platform",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.DefaultConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateConfig() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateConfig() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("platform", " NetEase ")
	viper.Set("prompt-timeout-secs", -3)
	viper.Set("language", "xx")
	viper.Set("telegram-group-id", int64(-1001))
	viper.Set("flood-limit-per-minute", 0)

	cfg := buildConfig()

	if cfg.Music.Platform != "netease" {
		t.Errorf("Platform = %q, want netease", cfg.Music.Platform)
	}
	if cfg.Music.PromptTimeoutSecs != core.DefaultPromptTimeoutSecs {
		t.Errorf("PromptTimeoutSecs = %d, want default", cfg.Music.PromptTimeoutSecs)
	}
	if cfg.App.Language != i18n.DefaultLanguage {
		t.Errorf("Language = %q, want fallback %q", cfg.App.Language, i18n.DefaultLanguage)
	}
	if cfg.Telegram.GroupID != -1001 {
		t.Errorf("GroupID = %d", cfg.Telegram.GroupID)
	}
	if cfg.App.FloodLimitPerMinute != core.DefaultFloodLimitPerMinute {
		t.Errorf("FloodLimitPerMinute = %d, want default", cfg.App.FloodLimitPerMinute)
	}
	if cfg.WhatsApp.SessionPath != core.DefaultWhatsAppSessionPath {
		t.Errorf("SessionPath = %q", cfg.WhatsApp.SessionPath)
	}
}

func TestBuildLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		if l := buildLogger("debug", format); l == nil {
			t.Errorf("buildLogger(%q) = nil", format)
		}
	}
}

func TestGenerateEnvExampleContent(t *testing.T) {
	content := generateEnvExampleContent(rootCmd)

	for _, want := range []string{
		"MUSICBOT_ONEBOT_URL=ws://127.0.0.1:6700",
		"MUSICBOT_PLATFORM=qq",
		"MUSICBOT_IMAGE_MODE=true",
		"MUSICBOT_TELEGRAM_BOT_TOKEN=",
		"MUSICBOT_WHATSAPP_GROUP_JID=",
		"MUSICBOT_RENDERER_URL=",
		"MUSICBOT_LOG_FORMAT=json",
		"(default: 60)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("generated content lacks %q", want)
		}
	}
}
