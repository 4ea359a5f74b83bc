package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/app"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/config"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/email"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/export"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/gitrepo"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/search"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/store"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/syncer"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/verify"
)

// runtime is a loaded service plus whatever must be released on exit.
type runtime struct {
	cfg     config.Config
	service *app.Service
	closers []func()
}

func (r *runtime) Close() {
	r.service.Close()
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildRuntime connects every backend named by cfg and loads the collection.
func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg}
	fail := func(err error) (*runtime, error) {
		for i := len(rt.closers) - 1; i >= 0; i-- {
			rt.closers[i]()
		}
		return nil, err
	}

	kv, err := openKV(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	rt.closers = append(rt.closers, func() { _ = kv.Close() })

	if err := os.MkdirAll(cfg.SnapshotDir, 0o755); err != nil {
		return fail(fmt.Errorf("create snapshot dir: %w", err))
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchService := search.NewService(meiliClient)
	rt.closers = append(rt.closers, searchService.Close)

	verifySource, err := openVerifySource(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	rt.service = app.New(cfg, app.Deps{
		Store:     store.NewSlots(kv),
		Snapshots: gitrepo.New(cfg.SnapshotDir),
		Feed:      feed.NewFetcher(cfg.FeedURL, nil),
		Sync:      syncer.NewClient(cfg.SyncURL, cfg.SyncToken, nil),
		Verify:    verifySource,
		Search:    searchService,
		Mailer: email.NewService(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		}),
		Exporter: export.NewService(nil),
	})

	result, err := rt.service.Load(ctx)
	if err != nil {
		return fail(err)
	}
	log.Printf("Loaded %d standards from %s", result.Count, result.Source)
	return rt, nil
}

func openKV(ctx context.Context, cfg config.Config) (store.KV, error) {
	switch cfg.Store {
	case "redis":
		log.Printf("Using Redis for standards storage")
		return store.NewRedisKV(cfg.RedisURL)
	case "postgres":
		log.Printf("Using PostgreSQL for standards storage")
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := store.ApplyMigrations(ctx, db, store.Postgres, store.Migrations()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		return store.NewSQLKV(db, store.Postgres), nil
	case "sqlite", "":
		log.Printf("Using SQLite at %s for standards storage", cfg.SQLitePath)
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite open failed: %w", err)
		}
		if err := store.ApplyMigrations(ctx, db, store.SQLite, store.Migrations()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		return store.NewSQLKV(db, store.SQLite), nil
	default:
		return nil, fmt.Errorf("unknown DQA_STORE %q (want sqlite, redis or postgres)", cfg.Store)
	}
}

// openVerifySource prefers a remote verification service; otherwise the
// agent runs in process and reports go to MinIO or the local report dir.
func openVerifySource(ctx context.Context, cfg config.Config) (verify.Source, error) {
	if strings.TrimSpace(cfg.ReportURL) != "" {
		log.Printf("Using remote verification service at %s", cfg.ReportURL)
		return verify.NewRemoteSource(cfg.ReportURL, nil), nil
	}

	var reports verify.ReportStore
	if strings.TrimSpace(cfg.Minio.Endpoint) != "" {
		minioStore, err := verify.NewMinioStore(ctx, verify.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("report bucket: %w", err)
		}
		reports = minioStore
	} else {
		reports = verify.NewFileStore(cfg.ReportDir)
	}

	agent := verify.NewAgent(verify.Options{
		Static:     verify.NewHTTPFetcher(nil),
		Browser:    verify.NewBrowserFetcher(3 * time.Second),
		RatePerSec: cfg.VerifyRatePerSec,
		Burst:      cfg.VerifyBurst,
		Timeout:    cfg.VerifyTimeout,
	})
	return verify.NewLocalSource(agent, reports), nil
}
