package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kaamkhojo-engine/internal/cache"
	"kaamkhojo-engine/internal/config"
	"kaamkhojo-engine/internal/events"
	"kaamkhojo-engine/internal/httpapi"
	"kaamkhojo-engine/internal/scheduler"
	"kaamkhojo-engine/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the listing server",
	Long:  `Start the HTTP server for the listing screens, the JSON API and the SSE event stream.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config and $"+config.EnvPort+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, err := loadRuntime()
	if err != nil {
		return err
	}
	cfg := env.cfg
	if servePort > 0 {
		cfg.App.Port = servePort
	}

	lock, err := lockDataDir(env.dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	db, err := openStore(env.dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Seed.OnStart {
		if err := seedIfEmpty(ctx, db, cfg.Seed.File); err != nil {
			return err
		}
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)
	loadCfg := func() (config.Config, error) {
		next, err := loadConfig(env.userCfgPath)
		if err != nil {
			return next, err
		}
		next.App.DataDir = env.dataDir
		return next, nil
	}

	respCache := newCache(ctx, cfg)
	if c, ok := respCache.(*cache.Redis); ok {
		defer c.Close()
	}

	hub := events.NewHub()
	defer hub.Close()

	sched := scheduler.New()
	if cfg.Maintenance.CleanupCron != "" {
		cleanup := scheduler.Cleanup{
			DB:        db.Pool,
			Retention: time.Duration(cfg.Maintenance.RetentionDays) * 24 * time.Hour,
			OnExpired: func(ctx context.Context, n int64) {
				httpapi.InvalidateListings(ctx, respCache)
				hub.Publish(events.MakeEvent("", events.TypeRecordsExpired, 1, map[string]any{"count": n}))
			},
		}
		if err := sched.Add(cfg.Maintenance.CleanupCron, "cleanup", cleanup.Run); err != nil {
			return err
		}
	}

	token := os.Getenv("KAAMKHOJO_SHUTDOWN_TOKEN")
	if token == "" {
		if token, err = randomToken(16); err != nil {
			return err
		}
		log.Println("level=info msg=\"generated shutdown token\" hint=\"set KAAMKHOJO_SHUTDOWN_TOKEN to choose one\"")
	}

	limiter := httpapi.NewClientLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	if cfg.Maintenance.CleanupCron != "" {
		prune := func(context.Context) error {
			if n := limiter.Prune(time.Hour); n > 0 {
				log.Printf("[maintenance] pruned %d idle rate limiters", n)
			}
			return nil
		}
		if err := sched.Add(cfg.Maintenance.CleanupCron, "prune-limiters", prune); err != nil {
			return err
		}
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		DB:          db.Pool,
		Source:      store.Source{DB: db.Pool, Window: cfg.Listing.Window},
		Hub:         hub,
		Cache:       respCache,
		Actions:     httpapi.LogActions{},
		CfgVal:      &cfgVal,
		UserCfgPath: env.userCfgPath,
		LoadCfg:     loadCfg,
		Shutdown:    shutdownHandler(token, stop),
	}, limiter)

	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	log.Printf("level=info msg=\"engine listening\" addr=http://%s data_dir=%s", addr, env.dataDir)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	sched.Start(ctx)
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Every(gctx, 10*time.Minute, "checkpoint", db.Checkpoint)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// SSE clients hold connections open; close them before Shutdown waits.
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("level=info msg=\"engine stopped\"")
	return nil
}

func seedIfEmpty(ctx context.Context, db *store.DB, file string) error {
	n, err := store.CountRecords(ctx, db.Pool)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	recs, err := seedRecords(file)
	if err != nil {
		return err
	}
	added, err := store.Seed(ctx, db.Pool, recs)
	if err != nil {
		return fmt.Errorf("seed on start: %w", err)
	}
	log.Printf("level=info msg=\"seeded empty store\" records=%d", added)
	return nil
}

// newCache uses redis when configured and reachable, else an in-process cache.
func newCache(ctx context.Context, cfg config.Config) cache.Cache {
	if cfg.Cache.RedisURL == "" {
		return cache.NewMemory()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	c, err := cache.NewRedis(pingCtx, cfg.Cache.RedisURL, cfg.Cache.Prefix)
	if err != nil {
		log.Printf("level=warn msg=\"redis unavailable, using memory cache\" err=%v", err)
		return cache.NewMemory()
	}
	return c
}
