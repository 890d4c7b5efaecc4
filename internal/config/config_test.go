package config

import (
	"holdem-server/internal/util"
	"holdem-server/pkg/holdem"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	defer util.SetEnv("HOLDEM_CONFIG_FILE", "testdata/config.yaml")()
	defer util.SetEnv("HOLDEM_TABLE_BIG_BLIND", "40")()
	config = Config{}

	a := assert.New(t)
	cfg := Instance()
	a.Equal(":6000", cfg.Addr)
	a.Equal("debug", cfg.Log.Level)
	a.Equal("json", cfg.Log.Format)
	a.Equal(StoreSQLite, cfg.Store.Driver)
	a.Equal("/tmp/holdem-test.db", cfg.Store.SQLitePath)
	a.Equal(5, cfg.Store.Retries)
	a.Equal(5*time.Second, cfg.StoreTimeout(), "defaults survive a partial file")
	a.Equal("./bots", cfg.AI.ScriptsPath)
	a.Equal([]string{"https://poker.example.com"}, cfg.CORS.AllowedOrigins)
	a.Equal(holdem.Options{SmallBlind: 10, BigBlind: 40, StartingChips: 500, MaxSeats: 10}, cfg.TableOptions())

	// ensure that it's only loaded once
	_ = os.Setenv("HOLDEM_TABLE_BIG_BLIND", "80")
	// ensure we aren't using a pointer
	cfg.Addr = "bad"
	cfg = Instance()
	a.Equal(":6000", cfg.Addr)
	a.Equal(40, cfg.Table.BigBlind)
}

func TestDefaults(t *testing.T) {
	defer util.SetEnv("HOLDEM_CONFIG_FILE", "testdata/missing.yaml")()

	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, holdem.DefaultOptions(), cfg.TableOptions())
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
}

func TestLoad_errors(t *testing.T) {
	a := assert.New(t)

	restore := util.SetEnv("HOLDEM_CONFIG_FILE", "testdata/bad-driver.yaml")
	a.EqualError(Load(), `unknown store driver: "mongodb"`)
	restore()

	defer util.SetEnv("HOLDEM_CONFIG_FILE", "testdata/missing.yaml")()

	restore = util.SetEnv("HOLDEM_STORE_DRIVER", "postgres")
	a.EqualError(Load(), "store.pgDsn is required by the postgres driver")
	restore()

	restore = util.SetEnv("HOLDEM_TABLE_SMALL_BLIND", "0")
	a.EqualError(Load(), "small blind must be > 0")
	restore()

	restore = util.SetEnv("HOLDEM_TABLE_STARTING_CHIPS", "lots")
	a.Error(Load())
	restore()
}
