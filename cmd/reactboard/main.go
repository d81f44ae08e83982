package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"reactboard/internal/bot"
	"reactboard/internal/config"
	"reactboard/internal/lang"
	"reactboard/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "Path to the TOML config file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	dev := flag.Bool("dev", false, "Human-readable development logging")
	flag.Parse()

	logger, err := zap.NewProduction()
	if *dev {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	store := storage.NewStore(db)

	dicts, err := lang.NewWatcher(cfg.Lang.Dir, cfg.Lang.Current, logger)
	if err != nil {
		logger.Fatal("localization", zap.Error(err))
	}
	defer dicts.Stop()

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		logger.Fatal("session", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentGuildEmojis |
		discordgo.IntentMessageContent

	b := bot.New(store, dicts, logger, cfg.Author)
	b.Register(session)

	if err := session.Open(); err != nil {
		logger.Fatal("authorization failed", zap.Error(err))
	}
	defer session.Close()
	logger.Info("authorized")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")
}
