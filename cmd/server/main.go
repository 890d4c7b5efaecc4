package main

import (
	"context"
	"flag"
	"holdem-server/internal/config"
	"holdem-server/internal/mux"
	"holdem-server/internal/rng"
	"holdem-server/pkg/db"
	"holdem-server/pkg/evaluator"
	"holdem-server/pkg/policy"
	"holdem-server/pkg/room"
	"holdem-server/pkg/store"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const dbWait = time.Second * 10
const retryBackoff = time.Millisecond * 200

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address, overrides the configuration")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()
	if *addr != "" {
		cfg.Addr = *addr
	}

	gateway := setupStore(cfg)

	gen := rng.Crypto{}
	policies := policy.NewRegistry(gen)
	defer policies.Close()
	if path := cfg.AI.ScriptsPath; path != "" {
		if err := policies.LoadDir(path, gen); err != nil {
			logrus.WithError(err).Fatal("could not load bot policies")
		}
	}

	pitBoss, err := room.NewPitBoss(room.Config{
		Store:          store.NewRetrying(gateway, cfg.Store.Retries, retryBackoff),
		Policies:       policies,
		Evaluator:      evaluator.New(),
		RNG:            gen,
		TableOptions:   cfg.TableOptions(),
		PersistTimeout: cfg.StoreTimeout(),
		Logger:         logrus.StandardLogger(),
	})
	if err != nil {
		logrus.WithError(err).Fatal("could not start the pit boss")
	}

	stopReaper := startReaper(pitBoss, cfg.IdleTimeout())

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
		AllowedMethods: []string{http.MethodGet},
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, pitBoss))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		logrus.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logrus.WithField("addr", srv.Addr).WithField("version", Version).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("server failed")
	}

	stopReaper()
	pitBoss.EndShift()
}

func setupStore(cfg config.Config) store.Gateway {
	var driver, dsn string
	switch cfg.Store.Driver {
	case config.StorePostgres:
		driver, dsn = db.Postgres, cfg.Store.PGDSN
	case config.StoreSQLite:
		driver, dsn = db.SQLite, cfg.Store.SQLitePath
	default:
		logrus.Warn("using the in-memory store, tables will not survive a restart")
		return store.NewMemory()
	}

	dbh, err := db.WaitFor(driver, dsn, dbWait)
	if err != nil {
		logrus.WithError(err).Fatal("could not open the database")
	}

	if driver == db.Postgres {
		// run the db migrations
		if err := db.Migrate(dbh, cfg.Store.MigrationsPath); err != nil {
			logrus.WithError(err).Fatal("could not run migrations")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbWait)
	defer cancel()

	gateway, err := store.NewSQL(ctx, dbh, driver)
	if err != nil {
		logrus.WithError(err).Fatal("could not prepare the snapshot store")
	}

	return gateway
}

func startReaper(pitBoss *room.PitBoss, idle time.Duration) (stop func()) {
	if idle <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(idle / 2)
	done := make(chan bool)
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := pitBoss.Reap(idle); n > 0 {
					logrus.WithField("tables", n).Info("reaped idle tables")
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(config.Instance().Log.Format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
