package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	PriceHub PriceHubConfig `mapstructure:"pricehub"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Game     GameConfig     `mapstructure:"game"`
	API      APIConfig      `mapstructure:"api"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PriceHubConfig configures the live BTC price feed connection.
type PriceHubConfig struct {
	URL            string        `mapstructure:"url"`             // websocket hub endpoint
	Symbol         string        `mapstructure:"symbol"`          // traded symbol, e.g. "BTCUSDT"
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`    // per-attempt connect timeout
	MaxRetries     int           `mapstructure:"max_retries"`     // initial connection budget before fallback
	RetryDelay     time.Duration `mapstructure:"retry_delay"`     // delay between initial attempts (first retry is immediate)
	ReconnectWaits []int         `mapstructure:"reconnect_waits"` // reconnect backoff steps in milliseconds
}

// OrdersConfig configures the backend order-service hub.
type OrdersConfig struct {
	URL      string        `mapstructure:"url"`
	MemberID string        `mapstructure:"member_id"`
	GameID   int           `mapstructure:"game_id"` // 6=insurance, 7=battle, 8=extreme
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GameConfig holds the betting-round rules.
type GameConfig struct {
	InitialBalance   float64 `mapstructure:"initial_balance"`
	PayoutMultiplier float64 `mapstructure:"payout_multiplier"` // winner multiplier on stake, e.g. 1.975
	// TiePolicy forces the uninsured tie rule ("refund50" or "loss").
	// Leave empty to use the game mode's own rule.
	TiePolicy string `mapstructure:"tie_policy"`
}

type APIConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	// Support environment variables with dot notation (e.g., PRICEHUB_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pricehub.symbol", "BTCUSDT")
	v.SetDefault("pricehub.dial_timeout", "3s")
	v.SetDefault("pricehub.max_retries", 3)
	v.SetDefault("pricehub.retry_delay", "1s")
	v.SetDefault("pricehub.reconnect_waits", []int{0, 500, 1000, 2000})

	v.SetDefault("orders.game_id", 6)
	v.SetDefault("orders.timeout", "5s")

	v.SetDefault("game.initial_balance", 2000)
	v.SetDefault("game.payout_multiplier", 1.975)
	v.SetDefault("game.tie_policy", "") // empty: defer to the game mode

	v.SetDefault("api.addr", ":8080")
}
