package core

import (
	"time"

	"musicbot/internal/i18n"
)

// Configuration defaults.
const (
	DefaultPlatform                 = "qq"
	DefaultPromptTimeoutSecs        = 60
	DefaultRendererTimeoutSecs      = 20
	DefaultServerPort               = 8080
	DefaultFloodLimitPerMinute      = 6
	DefaultDedupCapacity            = 10000
	DefaultDedupFalsePositiveRate   = 0.001
	DefaultOneBotURL                = "ws://127.0.0.1:6700"
	DefaultOneBotReconnectDelaySecs = 5
	DefaultWhatsAppSessionPath      = "./whatsapp_session.db"
)

// Config is loaded once at startup and treated as read-only afterwards.
type Config struct {
	Music    MusicConfig
	Renderer RendererConfig
	OneBot   OneBotConfig
	Telegram TelegramConfig
	WhatsApp WhatsAppConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

// MusicConfig holds the music command settings.
type MusicConfig struct {
	Platform          string // Default search platform.
	ShowWarning       bool   // Reply with a notice when nothing was found.
	ImageMode         bool   // Render candidate lists as images when a renderer is configured.
	PromptTimeoutSecs int    // How long the selection prompt waits for a reply.
	SearchTimeoutSecs int    // Upstream HTTP timeout, 0 keeps the client default.
}

// PromptTimeout returns the selection wait as a duration.
func (m MusicConfig) PromptTimeout() time.Duration {
	return time.Duration(m.PromptTimeoutSecs) * time.Second
}

type RendererConfig struct {
	URL         string
	TimeoutSecs int
	Width       int
	Height      int
}

type OneBotConfig struct {
	Enabled            bool
	URL                string
	AccessToken        string
	ReconnectDelaySecs int
}

type TelegramConfig struct {
	Enabled  bool
	BotToken string
	GroupID  int64 // 0 accepts every chat the bot is in
}

type WhatsAppConfig struct {
	Enabled     bool
	GroupJID    string
	DeviceName  string
	SessionPath string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language            string
	FloodLimitPerMinute int
	DedupCapacity       int
}

func DefaultConfig() *Config {
	return &Config{
		Music: MusicConfig{
			Platform:          DefaultPlatform,
			ShowWarning:       false,
			ImageMode:         true,
			PromptTimeoutSecs: DefaultPromptTimeoutSecs,
		},
		Renderer: RendererConfig{
			TimeoutSecs: DefaultRendererTimeoutSecs,
		},
		OneBot: OneBotConfig{
			Enabled:            true,
			URL:                DefaultOneBotURL,
			ReconnectDelaySecs: DefaultOneBotReconnectDelaySecs,
		},
		WhatsApp: WhatsAppConfig{
			DeviceName:  "musicbot",
			SessionPath: DefaultWhatsAppSessionPath,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:            i18n.DefaultLanguage,
			FloodLimitPerMinute: DefaultFloodLimitPerMinute,
			DedupCapacity:       DefaultDedupCapacity,
		},
	}
}
