// Package main provides the musicbot CLI application entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"musicbot/internal/chat"
	"musicbot/internal/chat/onebot"
	"musicbot/internal/chat/telegram"
	"musicbot/internal/chat/whatsapp"
	"musicbot/internal/core"
	"musicbot/internal/flood"
	httpserver "musicbot/internal/http"
	"musicbot/internal/i18n"
	"musicbot/internal/present"
	"musicbot/internal/render"
	"musicbot/internal/store"
	"musicbot/pkg/musicsearch"
)

const (
	version           = "1.0.0"
	defaultServerHost = "0.0.0.0"
	envPrefix         = "MUSICBOT"
	stopTimeout       = 15 * time.Second
	pingTimeout       = 5 * time.Second
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "musicbot",
	Short: "musicbot - song search for group chats",
	Long: `musicbot listens to group chats (OneBot/QQ, Telegram, WhatsApp), searches NetEase Cloud Music
and QQ Music for requested songs and answers with a shareable music card.`,
	RunE: runMusicBot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, console)")

	platforms := strings.Join(platformNames(), ", ")
	flags.String("platform", core.DefaultPlatform, fmt.Sprintf("Default search platform (%s)", platforms))
	flags.Bool("show-warning", false, "Reply with a notice when no song was found")
	flags.Bool("image-mode", true, "Render candidate lists as images when a renderer is configured")
	flags.Int("prompt-timeout-secs", core.DefaultPromptTimeoutSecs, "Selection prompt timeout in seconds")
	flags.Int("search-timeout-secs", 0, "Upstream search timeout in seconds (0 uses the client default)")

	flags.String("renderer-url", "", "HTML screenshot service URL (empty disables images)")
	flags.Int("renderer-timeout-secs", core.DefaultRendererTimeoutSecs, "Renderer timeout in seconds")
	flags.Int("renderer-width", 0, "Rendered image width in pixels (0 uses the default)")
	flags.Int("renderer-height", 0, "Rendered image height in pixels (0 uses the default)")

	flags.Bool("onebot-enabled", true, "Enable OneBot v11 (QQ) integration")
	flags.String("onebot-url", core.DefaultOneBotURL, "OneBot forward WebSocket URL")
	flags.String("onebot-access-token", "", "OneBot access token")
	flags.Int("onebot-reconnect-delay-secs", core.DefaultOneBotReconnectDelaySecs, "OneBot reconnect delay in seconds")

	flags.Bool("telegram-enabled", false, "Enable Telegram integration")
	flags.String("telegram-bot-token", "", "Telegram bot token")
	flags.Int64("telegram-group-id", 0, "Telegram group ID (0 serves every chat)")

	flags.Bool("whatsapp-enabled", false, "Enable WhatsApp integration")
	flags.String("whatsapp-group-jid", "", "WhatsApp group JID (empty serves every group)")
	flags.String("whatsapp-device-name", "musicbot", "WhatsApp device name")
	flags.String("whatsapp-session-path", core.DefaultWhatsAppSessionPath, "WhatsApp session database path")

	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")

	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Bot language (%s)", supportedLangs))
	flags.Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute, "Maximum commands per user per minute")
	flags.Int("dedup-capacity", core.DefaultDedupCapacity, "Number of recent message IDs remembered for deduplication")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
	// Older deployments toggle image lists with MUSICBOT_PUPPETEER.
	if err := viper.BindEnv("image-mode", flagToEnvVar("image-mode"), envPrefix+"_PUPPETEER"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind environment: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureMusic(cfg)
	configureRenderer(cfg)
	configureOneBot(cfg)
	configureTelegram(cfg)
	configureWhatsApp(cfg)
	configureServer(cfg)
	configureApp(cfg)

	return cfg
}

func configureMusic(cfg *core.Config) {
	cfg.Music.Platform = strings.ToLower(strings.TrimSpace(viper.GetString("platform")))
	if cfg.Music.Platform == "" {
		cfg.Music.Platform = core.DefaultPlatform
	}
	cfg.Music.ShowWarning = viper.GetBool("show-warning")
	cfg.Music.ImageMode = viper.GetBool("image-mode")

	cfg.Music.PromptTimeoutSecs = viper.GetInt("prompt-timeout-secs")
	if cfg.Music.PromptTimeoutSecs <= 0 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid prompt timeout (%d), using default (%d)\n",
			cfg.Music.PromptTimeoutSecs, core.DefaultPromptTimeoutSecs)
		cfg.Music.PromptTimeoutSecs = core.DefaultPromptTimeoutSecs
	}
	cfg.Music.SearchTimeoutSecs = viper.GetInt("search-timeout-secs")
}

func configureRenderer(cfg *core.Config) {
	cfg.Renderer.URL = viper.GetString("renderer-url")
	cfg.Renderer.TimeoutSecs = viper.GetInt("renderer-timeout-secs")
	if cfg.Renderer.TimeoutSecs <= 0 {
		cfg.Renderer.TimeoutSecs = core.DefaultRendererTimeoutSecs
	}
	cfg.Renderer.Width = viper.GetInt("renderer-width")
	cfg.Renderer.Height = viper.GetInt("renderer-height")
}

func configureOneBot(cfg *core.Config) {
	cfg.OneBot.Enabled = viper.GetBool("onebot-enabled")
	cfg.OneBot.URL = viper.GetString("onebot-url")
	cfg.OneBot.AccessToken = viper.GetString("onebot-access-token")
	cfg.OneBot.ReconnectDelaySecs = viper.GetInt("onebot-reconnect-delay-secs")
	if cfg.OneBot.ReconnectDelaySecs <= 0 {
		cfg.OneBot.ReconnectDelaySecs = core.DefaultOneBotReconnectDelaySecs
	}
}

func configureTelegram(cfg *core.Config) {
	cfg.Telegram.Enabled = viper.GetBool("telegram-enabled")
	cfg.Telegram.BotToken = viper.GetString("telegram-bot-token")
	cfg.Telegram.GroupID = viper.GetInt64("telegram-group-id")
}

func configureWhatsApp(cfg *core.Config) {
	cfg.WhatsApp.Enabled = viper.GetBool("whatsapp-enabled")
	cfg.WhatsApp.GroupJID = viper.GetString("whatsapp-group-jid")
	cfg.WhatsApp.DeviceName = viper.GetString("whatsapp-device-name")
	cfg.WhatsApp.SessionPath = viper.GetString("whatsapp-session-path")
	if cfg.WhatsApp.SessionPath == "" {
		cfg.WhatsApp.SessionPath = core.DefaultWhatsAppSessionPath
	}
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureApp(cfg *core.Config) {
	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	// Flood prevention and deduplication
	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	if cfg.App.FloodLimitPerMinute <= 0 {
		cfg.App.FloodLimitPerMinute = core.DefaultFloodLimitPerMinute
	}
	cfg.App.DedupCapacity = viper.GetInt("dedup-capacity")
	if cfg.App.DedupCapacity <= 0 {
		cfg.App.DedupCapacity = core.DefaultDedupCapacity
	}
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}

	return builtLogger
}

func runMusicBot(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting musicbot",
		zap.String("version", version),
		zap.String("platform", config.Music.Platform),
		zap.Bool("image_mode", config.Music.ImageMode),
		zap.Bool("onebot_enabled", config.OneBot.Enabled),
		zap.Bool("telegram_enabled", config.Telegram.Enabled),
		zap.Bool("whatsapp_enabled", config.WhatsApp.Enabled))

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}

	return runServices(ctx, svcs)
}

type services struct {
	httpServer *httpserver.Server
	dispatcher *core.Dispatcher
}

func initializeServices(ctx context.Context) (*services, error) {
	searcher := musicsearch.NewManager(
		musicsearch.NewHTTPClient(time.Duration(config.Music.SearchTimeoutSecs) * time.Second))

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))
	localizer := i18n.NewLocalizer(config.App.Language)

	presenter := present.New(config.Music.ImageMode, createRenderer(ctx), localizer, logger.Named("present"),
		present.WithGenerator("musicbot v"+version),
		present.WithFallbackHook(httpServer.RecordRenderFallback))

	command := core.NewMusicCommand(config, searcher, presenter, httpServer, logger.Named("music"))

	seen, err := store.NewSeenStore(config.App.DedupCapacity, core.DefaultDedupFalsePositiveRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup store: %w", err)
	}

	frontends, err := createChatFrontends()
	if err != nil {
		return nil, err
	}

	dispatcher := core.NewDispatcher(config, frontends, command, flood.New(config.App.FloodLimitPerMinute),
		seen, httpServer, logger.Named("dispatcher"))

	return &services{
		httpServer: httpServer,
		dispatcher: dispatcher,
	}, nil
}

// createRenderer returns nil when no rendering service is configured.
func createRenderer(ctx context.Context) present.Renderer {
	if config.Renderer.URL == "" {
		if config.Music.ImageMode {
			logger.Info("No renderer configured, candidate lists are sent as text")
		}
		return nil
	}

	client := render.NewClient(&render.Config{
		URL:     config.Renderer.URL,
		Timeout: time.Duration(config.Renderer.TimeoutSecs) * time.Second,
		Width:   config.Renderer.Width,
		Height:  config.Renderer.Height,
	}, logger.Named("render"))

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		logger.Warn("Renderer is not reachable, lists will fall back to text until it is",
			zap.String("url", config.Renderer.URL),
			zap.Error(err))
	}

	return client
}

func createChatFrontends() ([]chat.Frontend, error) {
	var frontends []chat.Frontend

	if config.OneBot.Enabled {
		frontends = append(frontends, onebot.NewFrontend(&onebot.Config{
			URL:            config.OneBot.URL,
			AccessToken:    config.OneBot.AccessToken,
			ReconnectDelay: time.Duration(config.OneBot.ReconnectDelaySecs) * time.Second,
			Enabled:        true,
		}, logger.Named("onebot")))
		logger.Info("Using OneBot as chat frontend", zap.String("url", config.OneBot.URL))
	}

	if config.Telegram.Enabled {
		frontends = append(frontends, telegram.NewFrontend(&telegram.Config{
			BotToken: config.Telegram.BotToken,
			GroupID:  config.Telegram.GroupID,
			Enabled:  true,
			Language: config.App.Language,
		}, logger.Named("telegram")))
		logger.Info("Using Telegram as chat frontend", zap.Int64("group_id", config.Telegram.GroupID))
	}

	if config.WhatsApp.Enabled {
		frontends = append(frontends, whatsapp.NewFrontend(&whatsapp.Config{
			GroupJID:    config.WhatsApp.GroupJID,
			DeviceName:  config.WhatsApp.DeviceName,
			SessionPath: config.WhatsApp.SessionPath,
			Enabled:     true,
		}, logger.Named("whatsapp")))
		logger.Info("Using WhatsApp as chat frontend", zap.String("group_jid", config.WhatsApp.GroupJID))
	}

	if len(frontends) == 0 {
		return nil, errors.New("no chat frontend enabled - enable OneBot, Telegram or WhatsApp")
	}
	return frontends, nil
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	svcs.dispatcher.OnStarted(func() {
		svcs.httpServer.SetReady(true)
		logger.Info("musicbot started successfully",
			zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))
	})
	g.Go(func() error {
		return svcs.dispatcher.Start(gCtx)
	})

	err := g.Wait()
	svcs.httpServer.SetReady(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if stopErr := svcs.dispatcher.Stop(stopCtx); stopErr != nil {
		logger.Warn("Failed to stop dispatcher gracefully", zap.Error(stopErr))
	}

	if err != nil {
		logger.Error("musicbot stopped with error", zap.Error(err))
		return err
	}

	logger.Info("musicbot stopped gracefully")
	return nil
}

func validateConfig(cfg *core.Config) error {
	if err := validateChatFrontends(cfg); err != nil {
		return err
	}

	if _, err := musicsearch.ParsePlatform(cfg.Music.Platform); err != nil {
		return fmt.Errorf("default platform must be one of %s: %w", strings.Join(platformNames(), ", "), err)
	}

	return nil
}

func validateChatFrontends(cfg *core.Config) error {
	if !cfg.OneBot.Enabled && !cfg.Telegram.Enabled && !cfg.WhatsApp.Enabled {
		return errors.New("at least one chat frontend must be enabled (OneBot, Telegram or WhatsApp)")
	}

	if cfg.OneBot.Enabled && cfg.OneBot.URL == "" {
		return errors.New("OneBot URL is required when OneBot is enabled")
	}

	if cfg.Telegram.Enabled && cfg.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required when Telegram is enabled")
	}

	return nil
}

func platformNames() []string {
	names := make([]string, 0, len(musicsearch.Platforms()))
	for _, p := range musicsearch.Platforms() {
		names = append(names, p.String())
	}
	return names
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)
	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# musicbot Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: MUSICBOT_<SECTION>_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<section>-<setting>\n")
	content.WriteString("#\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("# CHAT PLATFORMS - Enable one or more\n")
	content.WriteString("# =============================================================================\n\n")

	generateOneBotSection(&content, cmd)
	generateTelegramSection(&content, cmd)
	generateWhatsAppSection(&content, cmd)
	generateMusicSection(&content, cmd)
	generateRendererSection(&content, cmd)
	generateAppSection(&content, cmd)
	generateServerSection(&content, cmd)
	generateLoggingSection(&content, cmd)

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}

func writeSectionHeader(content *strings.Builder, title string) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString("# -----------------------------------------------------------------------------\n")
}

// writeSetting writes one NAME=value line with a comment naming the flag default.
func writeSetting(content *strings.Builder, cmd *cobra.Command, flagName, value, comment string) {
	line := flagToEnvVar(flagName) + "=" + value
	if def := getDefaultValueString(cmd, flagName); def != "" {
		comment = fmt.Sprintf("%s (default: %s)", comment, def)
	}
	fmt.Fprintf(content, "%-48s # %s\n", line, comment)
}

func generateOneBotSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "OneBot v11 / QQ (Default enabled)")
	content.WriteString("# CLI: --onebot-enabled, --onebot-url, --onebot-access-token\n")
	writeSetting(content, cmd, "onebot-enabled", getDefaultValueString(cmd, "onebot-enabled"), "Enable OneBot integration")
	writeSetting(content, cmd, "onebot-url", getDefaultValueString(cmd, "onebot-url"), "Forward WebSocket of go-cqhttp, NapCat, Lagrange")
	writeSetting(content, cmd, "onebot-access-token", "", "Access token configured on the implementation")
	writeSetting(content, cmd, "onebot-reconnect-delay-secs", getDefaultValueString(cmd, "onebot-reconnect-delay-secs"), "Delay between reconnect attempts")
	content.WriteString("\n")
}

func generateTelegramSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Telegram Configuration (Optional)")
	content.WriteString("# CLI: --telegram-enabled, --telegram-bot-token, --telegram-group-id\n")
	writeSetting(content, cmd, "telegram-enabled", getDefaultValueString(cmd, "telegram-enabled"), "Enable Telegram bot")
	writeSetting(content, cmd, "telegram-bot-token", "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", "Bot token from @BotFather")
	writeSetting(content, cmd, "telegram-group-id", "-100xxxxxxxxxx", "Group ID, 0 serves every chat")
	content.WriteString("\n")
}

func generateWhatsAppSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "WhatsApp Configuration (Optional - Disabled by default due to ToS concerns)")
	content.WriteString("# CLI: --whatsapp-enabled, --whatsapp-group-jid, --whatsapp-device-name\n")
	writeSetting(content, cmd, "whatsapp-enabled", getDefaultValueString(cmd, "whatsapp-enabled"), "Enable WhatsApp integration")
	writeSetting(content, cmd, "whatsapp-group-jid", "120363123456789@g.us", "Group JID, empty serves every group")
	writeSetting(content, cmd, "whatsapp-device-name", getDefaultValueString(cmd, "whatsapp-device-name"), "Device name shown in WhatsApp")
	writeSetting(content, cmd, "whatsapp-session-path", getDefaultValueString(cmd, "whatsapp-session-path"), "Session database path")
	content.WriteString("\n")
}

func generateMusicSection(content *strings.Builder, cmd *cobra.Command) {
	content.WriteString("# =============================================================================\n")
	content.WriteString("# MUSIC COMMAND\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("# CLI: --platform, --show-warning, --image-mode, --prompt-timeout-secs\n")
	writeSetting(content, cmd, "platform", getDefaultValueString(cmd, "platform"), "Default platform: "+strings.Join(platformNames(), ", "))
	writeSetting(content, cmd, "show-warning", getDefaultValueString(cmd, "show-warning"), "Reply when nothing was found")
	writeSetting(content, cmd, "image-mode", getDefaultValueString(cmd, "image-mode"), "Send candidate lists as images")
	writeSetting(content, cmd, "prompt-timeout-secs", getDefaultValueString(cmd, "prompt-timeout-secs"), "Seconds to wait for a selection")
	writeSetting(content, cmd, "search-timeout-secs", getDefaultValueString(cmd, "search-timeout-secs"), "Upstream search timeout, 0 uses the client default")
	content.WriteString("\n")
}

func generateRendererSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Image Renderer (Gotenberg-compatible screenshot service)")
	content.WriteString("# CLI: --renderer-url, --renderer-timeout-secs\n")
	writeSetting(content, cmd, "renderer-url", "http://127.0.0.1:3000", "Empty sends lists as text")
	writeSetting(content, cmd, "renderer-timeout-secs", getDefaultValueString(cmd, "renderer-timeout-secs"), "Render timeout")
	content.WriteString("\n")
}

func generateAppSection(content *strings.Builder, cmd *cobra.Command) {
	content.WriteString("# =============================================================================\n")
	content.WriteString("# APPLICATION SETTINGS\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("# CLI: --language, --flood-limit-per-minute, --dedup-capacity\n")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	writeSetting(content, cmd, "language", getDefaultValueString(cmd, "language"), "Bot language: "+supportedLangs)
	writeSetting(content, cmd, "flood-limit-per-minute", getDefaultValueString(cmd, "flood-limit-per-minute"), "Commands per user per minute")
	writeSetting(content, cmd, "dedup-capacity", getDefaultValueString(cmd, "dedup-capacity"), "Message IDs remembered for deduplication")
	content.WriteString("\n")
}

func generateServerSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "HTTP Server (health, readiness, metrics)")
	content.WriteString("# CLI: --server-host, --server-port\n")
	writeSetting(content, cmd, "server-host", getDefaultValueString(cmd, "server-host"), "Bind address")
	writeSetting(content, cmd, "server-port", getDefaultValueString(cmd, "server-port"), "Port")
	content.WriteString("\n")
}

func generateLoggingSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Logging")
	content.WriteString("# CLI: --log-level, --log-format\n")
	writeSetting(content, cmd, "log-level", getDefaultValueString(cmd, "log-level"), "debug, info, warn, error")
	writeSetting(content, cmd, "log-format", getDefaultValueString(cmd, "log-format"), "json or console")
}
