// Command identityd runs the identity API server.
//
// @title        Identity API
// @version      1.0
// @description  Credential and token lifecycle management for user identities.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"regexp"

	"github.com/identikit/identity-api/internal/api"
	"github.com/identikit/identity-api/internal/core/service"
	"github.com/identikit/identity-api/internal/infrastructure/config"
	mongodb "github.com/identikit/identity-api/internal/infrastructure/db/mongo"
	redisdb "github.com/identikit/identity-api/internal/infrastructure/db/redis"
	"github.com/identikit/identity-api/internal/infrastructure/notifier"
	"github.com/identikit/identity-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	// --- Stores ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	repo := mongodb.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Password machinery. Corpus and word list are fatal when broken:
	// a half-working policy must never reach traffic. ---
	var breach service.BreachChecker
	if cfg.Security.BreachCheck {
		corpus, err := service.LoadCorpus(cfg.Security.BreachCorpusPath)
		if err != nil {
			log.Fatal().Err(err).Msg("breach corpus unavailable")
		}
		log.Info().Int("digests", corpus.Len()).Msg("breach corpus loaded")
		breach = corpus
	}

	var charset *regexp.Regexp
	if cfg.Security.PasswordCharsetPattern != "" {
		charset, err = regexp.Compile(cfg.Security.PasswordCharsetPattern)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid password charset pattern")
		}
	}

	passphrases, err := service.LoadWordList(cfg.Security.WordListPath)
	if err != nil {
		log.Fatal().Err(err).Msg("word list unavailable")
	}

	hasher := service.NewHasher(cfg.Security.BcryptCost)
	policy := service.NewPolicy(service.PolicyConfig{
		MinLength:                cfg.Security.MinPasswordLength,
		PasswordlessRegistration: cfg.Security.PasswordlessRegistration,
		BreachCheck:              cfg.Security.BreachCheck,
		CharsetPattern:           charset,
	}, breach)

	tokens := service.NewTokenService(service.TokenConfig{
		Secret:         cfg.Security.SecretKey,
		SessionTTL:     cfg.Security.SessionTTL,
		ResetTTL:       cfg.Security.ResetTokenTTL,
		EmailChangeTTL: cfg.Security.EmailChangeTokenTTL,
	})

	// --- Outbound mail ---
	var sender service.Notifier
	if cfg.SMTP.Enabled {
		sender = notifier.NewSMTP(notifier.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.FromEmail,
			FromName: cfg.ProjectName,
		})
	} else {
		sender = notifier.NewLog(log)
	}

	throttle := redisdb.NewRecoveryThrottle(rdb, cfg.Redis.RecoveryThrottleTTL)

	users := service.NewUserService(repo, tokens, hasher, policy, passphrases, sender, throttle,
		service.UserServiceConfig{
			ProjectName:     cfg.ProjectName,
			FrontendHost:    cfg.FrontendHost,
			TempPasswordTTL: cfg.Security.TempPasswordTTL,
		}, log)

	if cfg.Security.FirstSuperuserPassword != "" {
		if err := service.EnsureFirstSuperuser(ctx, users, cfg.Security.FirstSuperuser, cfg.Security.FirstSuperuserPassword, log); err != nil {
			log.Fatal().Err(err).Msg("first superuser bootstrap failed")
		}
	}

	e := api.NewRouter(api.Dependencies{
		Log:              log,
		DB:               db,
		Redis:            rdb,
		Users:            users,
		Tokens:           tokens,
		Repo:             repo,
		OpenRegistration: cfg.Security.OpenRegistration,
	})

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("identity API listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
