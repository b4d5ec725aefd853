package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"watchvault/pkg/session"
	"watchvault/process/thumbnailer"
)

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()
	cfg := loadConfig()
	log := newLogger(cfg.LogLevel)

	// Support a lightweight migrate command: `./watchvault migrate`.
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if _, err := openDB(cfg); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migration completed")
		return
	}

	var (
		users   session.UserStore
		tokens  session.TokenStore
		watches watchStore
		gdb     *gorm.DB
	)
	if cfg.DSN != "" {
		var err error
		gdb, err = openDB(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("database init failed")
		}
		users = gormUserStore{gdb}
		tokens = gormTokenStore{gdb}
		watches = gormWatchStore{gdb}
	} else if cfg.Env == "development" {
		log.Warn().Msg("DB_DSN not set; using in-memory stores (data is lost on restart)")
		mem := session.NewMemoryStore()
		users = mem.Users()
		tokens = mem.Tokens()
		watches = newMemWatchStore()
	} else {
		log.Fatal().Msg("DB_DSN is required outside development")
	}

	if err := ensureUploadBase(cfg.UploadBase); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadBase).Msg("upload dir init failed")
	}

	codec := session.NewCodec(session.Config{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	manager := session.NewManager(users, tokens, session.NewBcryptHasher(cfg.BcryptCost), codec, log)

	if cfg.Thumbnailer && gdb != nil {
		go func() {
			if err := thumbnailer.Run(context.Background(), gdb, cfg.UploadBase, log); err != nil {
				log.Error().Err(err).Msg("thumbnailer stopped")
			}
		}()
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	s := &server{cfg: cfg, log: log, manager: manager, codec: codec, watches: watches}
	setupRoutes(r, s)

	log.Info().Str("addr", cfg.Addr).Str("env", cfg.Env).Msg("listening")
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
