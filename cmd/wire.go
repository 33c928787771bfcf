package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	session "github.com/goliatone/go-session"
	"github.com/goliatone/go-session/credstore"
)

type app struct {
	manager *session.Manager
	store   *credstore.Store
	close   func() error
}

func wireApp() (*app, error) {
	v := viper.New()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".backoffice")

	v.SetConfigName("config")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("BACKOFFICE")
	v.AutomaticEnv()

	v.SetDefault("api_url", "http://localhost:3000/api")
	v.SetDefault("db_path", filepath.Join(configDir, "session.db"))
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_prefix", credstore.DefaultRedisPrefix)
	v.SetDefault("hydration_timeout", "10s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, v.GetString("db_path"))
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	durable := credstore.NewBunBackend(db)
	if err := durable.Init(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize credential table: %w", err)
	}

	var scoped credstore.Backend
	closeFn := db.Close
	if addr := v.GetString("redis_addr"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		scoped = credstore.NewRedisBackend(client, v.GetString("redis_prefix"), 0)
		closeFn = func() error {
			_ = client.Close()
			return db.Close()
		}
	}

	store := credstore.New(durable, scoped)

	resolver, err := session.NewHTTPResolver(v.GetString("api_url"))
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("wire user resolver: %w", err)
	}

	hydrationTimeout := v.GetDuration("hydration_timeout")
	if hydrationTimeout <= 0 {
		hydrationTimeout = 10 * time.Second
	}

	manager := session.NewManager(store, resolver,
		session.WithHydrationTimeout(hydrationTimeout),
	)

	return &app{
		manager: manager,
		store:   store,
		close:   closeFn,
	}, nil
}
