package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpadapter "gallerywalk/internal/adapter/http"
	metricsinmem "gallerywalk/internal/adapter/metrics/inmemory"
	observermem "gallerywalk/internal/adapter/observer/memory"
	gormrepo "gallerywalk/internal/adapter/repo/gorm"
	memrepo "gallerywalk/internal/adapter/repo/memory"
	"gallerywalk/internal/adapter/world/catalog"
	worldruntime "gallerywalk/internal/adapter/world/runtime"
	"gallerywalk/internal/app/ports"
	"gallerywalk/internal/app/stream"
	"gallerywalk/internal/config"
	"gallerywalk/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", resolveConfigPath(), "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		logrus.Fatalf("build logger: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	layout, err := loadLayout(ctx, cfg, log)
	if err != nil {
		log.Fatalf("load zone layout: %v", err)
	}
	policy, err := world.NewZonePolicy(layout)
	if err != nil {
		log.Fatalf("build zone policy: %v", err)
	}

	kpi := metricsinmem.NewRecorder()
	ctrl, err := stream.NewController(stream.Config{ChunkSize: cfg.World.ChunkSize}, stream.Deps{
		Registry:     world.NewRegistry(),
		Policy:       policy,
		Materializer: catalog.New(log, layout.Templates()...),
		Metrics:      kpi,
		Rand:         rand.New(rand.NewSource(randSeed(cfg.Loop.RandSeed))),
	})
	if err != nil {
		log.Fatalf("build stream controller: %v", err)
	}

	observer := observermem.NewObserver(mgl64.Vec3{})
	if cfg.World.SeedOrigin {
		start := world.CoordOf(observer.Position(), cfg.World.ChunkSize)
		if _, created, err := ctrl.Seed(start); err != nil {
			log.Fatalf("seed starting cell: %v", err)
		} else if created {
			log.WithField("coord", start.String()).Info("seeded starting cell")
		}
	}

	loop := worldruntime.NewLoop(worldruntime.Config{Interval: cfg.TickInterval()}, ctrl, observer, log)
	go func() {
		if err := loop.Run(ctx); err != nil {
			log.WithError(err).Fatal("stream loop failed")
		}
	}()

	h := httpadapter.Handler{
		Stream:    loop,
		Observer:  observer,
		Zones:     policy,
		KPI:       kpi,
		ChunkSize: cfg.World.ChunkSize,
	}
	s := server.Default(server.WithHostPorts(cfg.HTTP.Addr))
	h.RegisterRoutes(s)

	log.WithFields(logrus.Fields{
		"addr":       cfg.HTTP.Addr,
		"chunk_size": cfg.World.ChunkSize,
		"off_limits": len(layout.OffLimits),
		"special":    len(layout.Special),
		"pool":       len(layout.Pool),
	}).Info("gallerywalk listening")
	s.Spin()
	cancel()
}

// loadLayout reads the zone layout from Postgres when a DSN is configured,
// seeding it from the config file on first start if asked to. Without a
// DSN the config file layout is used as is.
func loadLayout(ctx context.Context, cfg config.Config, log *logrus.Logger) (world.Layout, error) {
	var (
		repo ports.ZoneLayoutRepository
		tx   ports.TxManager
	)
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		db, err := gormrepo.OpenPostgres(dsn, gormrepo.Options{MaxOpenConns: 4, ConnMaxLifetime: 30 * time.Minute})
		if err != nil {
			return world.Layout{}, err
		}
		if err := gormrepo.ApplyBundledMigrations(ctx, db); err != nil {
			return world.Layout{}, err
		}
		repo, tx = gormrepo.NewZoneLayoutRepo(db), gormrepo.NewTxManager(db)
		log.Info("zone layout source: postgres")
	} else {
		store := memrepo.NewStore()
		store.SeedLayout(cfg.Layout())
		repo, tx = memrepo.NewZoneLayoutRepo(store), memrepo.NewTxManager(store)
		log.Info("zone layout source: config file")
	}

	layout, err := repo.Load(ctx)
	if errors.Is(err, ports.ErrNotFound) && cfg.Database.SeedLayout {
		err = tx.RunInTx(ctx, func(ctx context.Context) error {
			return repo.Replace(ctx, cfg.Layout())
		})
		if err != nil {
			return world.Layout{}, fmt.Errorf("seed zone layout: %w", err)
		}
		log.Info("seeded zone layout from config")
		return repo.Load(ctx)
	}
	return layout, err
}

func resolveConfigPath() string {
	if v := strings.TrimSpace(os.Getenv("GALLERY_CONFIG")); v != "" {
		return v
	}
	return "config.toml"
}

func randSeed(configured int64) int64 {
	if configured != 0 {
		return configured
	}
	return time.Now().UnixNano()
}
