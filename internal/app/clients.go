package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/clients/notification"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/clients/redis"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/clients/students"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/gcp"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type Clients struct {
	Files     gcp.FileStore
	Redis     *goredis.Client
	Sender    notification.Sender
	Templates *notification.Templates
	Students  students.Directory
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is only needed for the lease backend.
	var rdb *goredis.Client
	if cfg.LeaseBackend == "redis" {
		c, err := redis.NewClient(log, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis client: %w", err)
		}
		rdb = c
	}

	// Gcs
	files, err := gcp.NewFileStore(ctx, log, gcp.FileStoreConfig{
		Bucket:        cfg.GCSBucket,
		EmulatorHost:  cfg.GCSEmulatorHost,
		PublicBaseURL: cfg.GCSPublicBaseURL,
		SignedURLTTL:  cfg.SignedURLTTL,
	})
	if err != nil {
		closeRedis(rdb)
		return Clients{}, fmt.Errorf("init file store: %w", err)
	}

	// Email
	sender, err := notification.New(log, notification.Config{
		Provider:   cfg.NotificationProvider,
		ServiceURL: cfg.NotificationServiceURL,
		Timeout:    cfg.UpstreamTimeout,
		MaxRetries: cfg.UpstreamMaxRetries,
		SendGrid:   cfg.SendGrid,
	})
	if err != nil {
		closeRedis(rdb)
		return Clients{}, fmt.Errorf("init notification sender: %w", err)
	}
	templates, err := notification.LoadTemplates()
	if err != nil {
		closeRedis(rdb)
		return Clients{}, fmt.Errorf("load notification templates: %w", err)
	}

	// Student directory
	dir, err := students.New(log, cfg.StudentServiceURL, cfg.UpstreamTimeout, cfg.UpstreamMaxRetries)
	if err != nil {
		closeRedis(rdb)
		return Clients{}, fmt.Errorf("init student directory: %w", err)
	}

	return Clients{
		Files:     files,
		Redis:     rdb,
		Sender:    sender,
		Templates: templates,
		Students:  dir,
	}, nil
}

func closeRedis(rdb *goredis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	closeRedis(c.Redis)
	c.Redis = nil
}
