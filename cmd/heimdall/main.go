package main

import (
	"context"
	"flag"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meridian-labs/heimdall/adapters/events"
	"github.com/meridian-labs/heimdall/adapters/store"
	"github.com/meridian-labs/heimdall/adapters/tokenizer"
	"github.com/meridian-labs/heimdall/config"
	"github.com/meridian-labs/heimdall/service"
	transport "github.com/meridian-labs/heimdall/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Auth.CryptoSecret == "" {
		logger.Warn("crypto secret is not set; token issuance and verification will fail")
	}

	ctx := context.Background()

	if err := store.RunMigrations(cfg.Postgres.DSN); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("parse redis url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		logger.Fatal("create event publisher", zap.Error(err))
	}

	pgStore := store.NewPostgresStore(pool)
	challengeStore := store.NewRedisChallengeStore(redisClient)
	sessionTokenizer := tokenizer.NewHS256Tokenizer(cfg.Auth.CryptoSecret)
	eventPub := events.NewWatermillPublisher(publisher)

	challenges := service.NewChallengeService(challengeStore, logger)
	sessions := service.NewSessionService(pgStore, sessionTokenizer, logger)
	auth := service.NewAuthService(challenges, sessions, pgStore, sessionTokenizer, eventPub, logger)

	router := transport.SetupRouter(auth, sessions, logger)

	logger.Info("starting server", zap.String("addr", cfg.HTTP.Addr))
	if err := router.Run(cfg.HTTP.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
