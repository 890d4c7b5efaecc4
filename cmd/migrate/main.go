package main

import (
	"flag"
	"holdem-server/internal/config"
	"holdem-server/pkg/db"
	"time"

	"github.com/sirupsen/logrus"
)

var timeout = flag.Duration("timeout", time.Second*10, "how long to wait for the database")

func main() {
	flag.Parse()

	cfg := config.Instance()
	if cfg.Store.PGDSN == "" {
		logrus.Fatal("store.pgDsn is not configured")
	}

	dbh, err := db.WaitFor(db.Postgres, cfg.Store.PGDSN, *timeout)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
	defer dbh.Close()

	if err := db.Migrate(dbh, cfg.Store.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	logrus.Info("migrations complete")
}
