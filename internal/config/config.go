package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/calvinwijaya/blackjack/internal/game"
)

// EnvPrefix scopes environment overrides, e.g. BLACKJACK_DB_DRIVER.
const EnvPrefix = "BLACKJACK"

const (
	KeyPort     = "port"
	KeyDBDriver = "db-driver"
	KeyDBDSN    = "db-dsn"
	KeyFrontend = "frontend"
	KeyLogLevel = "log-level"
	KeyLogJSON  = "log-json"
	KeyDecks    = "decks"
)

// DriverMemory keeps everything in process memory.
const DriverMemory = "memory"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string
	Frontend string
	LogLevel string
	LogJSON  bool
	Decks    int
}

func Default() Config {
	return Config{
		Port:     "8080",
		DBDriver: "sqlite3",
		DBDSN:    "./data/blackjack.db",
		Frontend: "http://localhost:5173",
		LogLevel: "info",
		LogJSON:  false,
		Decks:    game.DefaultDeckCount,
	}
}

// NewViper returns a viper instance holding the defaults and reading
// BLACKJACK_* environment variables.
func NewViper() *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetDefault(KeyPort, d.Port)
	v.SetDefault(KeyDBDriver, d.DBDriver)
	v.SetDefault(KeyDBDSN, d.DBDSN)
	v.SetDefault(KeyFrontend, d.Frontend)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogJSON, d.LogJSON)
	v.SetDefault(KeyDecks, d.Decks)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags lets command line flags override env and defaults.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	return v.BindPFlags(flags)
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:     strings.TrimSpace(v.GetString(KeyPort)),
		DBDriver: strings.ToLower(strings.TrimSpace(v.GetString(KeyDBDriver))),
		DBDSN:    v.GetString(KeyDBDSN),
		Frontend: v.GetString(KeyFrontend),
		LogLevel: v.GetString(KeyLogLevel),
		LogJSON:  v.GetBool(KeyLogJSON),
		Decks:    v.GetInt(KeyDecks),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port cannot be empty", ErrInvalidConfig)
	}
	switch c.DBDriver {
	case "sqlite3", "postgres", DriverMemory:
	default:
		return fmt.Errorf("%w: unknown db driver %q", ErrInvalidConfig, c.DBDriver)
	}
	if c.DBDriver != DriverMemory && strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("%w: db dsn cannot be empty for %s", ErrInvalidConfig, c.DBDriver)
	}
	if err := game.ValidateDeckCount(c.Decks); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// NewLogger builds the root logger described by the configuration.
func (c Config) NewLogger(w io.Writer) (log.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	opts := []log.Option{log.LevelOption(level)}
	if c.LogJSON {
		opts = append(opts, log.OutputJSONOption())
	} else {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(w, opts...), nil
}
