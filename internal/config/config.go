// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Engine EngineConfig
	Cache  CacheConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// EngineConfig holds the tunables of the reorder decision engine.
type EngineConfig struct {
	SafetyMarginDays      int
	MinOrderQty           int
	WindowDays            int
	TargetStockDays       int
	MinimumDailyDemand    float64
	ServiceLevel          float64
	SafetyStockMultiplier float64
	DefaultLeadTimeDays   int
	HoldingCostRate       float64
	OrderCost             float64
	LowStockThresholdPct  float64
	Workers               int
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads the process configuration once. A .env file in the working
// directory is honoured when present.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		instance = LoadFrom(viper.GetViper())
	})

	return instance
}

// LoadFrom builds a Config from the given viper instance after applying defaults.
func LoadFrom(v *viper.Viper) *Config {
	setDefaults(v)

	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Engine: EngineConfig{
			SafetyMarginDays:      v.GetInt("ENGINE_SAFETY_MARGIN_DAYS"),
			MinOrderQty:           v.GetInt("ENGINE_MIN_ORDER_QTY"),
			WindowDays:            v.GetInt("ENGINE_WINDOW_DAYS"),
			TargetStockDays:       v.GetInt("ENGINE_TARGET_STOCK_DAYS"),
			MinimumDailyDemand:    v.GetFloat64("ENGINE_MINIMUM_DAILY_DEMAND"),
			ServiceLevel:          v.GetFloat64("SERVICE_LEVEL"),
			SafetyStockMultiplier: v.GetFloat64("SAFETY_STOCK_MULTIPLIER"),
			DefaultLeadTimeDays:   v.GetInt("DEFAULT_LEAD_TIME_DAYS"),
			HoldingCostRate:       v.GetFloat64("HOLDING_COST_RATE"),
			OrderCost:             v.GetFloat64("ORDER_COST"),
			LowStockThresholdPct:  v.GetFloat64("INVENTORY_THRESHOLD_PERCENTAGE"),
			Workers:               v.GetInt("ENGINE_WORKERS"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("ENGINE_SAFETY_MARGIN_DAYS", 7)
	v.SetDefault("ENGINE_MIN_ORDER_QTY", 1)
	v.SetDefault("ENGINE_WINDOW_DAYS", 90)
	v.SetDefault("ENGINE_TARGET_STOCK_DAYS", 30)
	v.SetDefault("ENGINE_MINIMUM_DAILY_DEMAND", 0.1)
	v.SetDefault("SERVICE_LEVEL", 0.95)
	v.SetDefault("SAFETY_STOCK_MULTIPLIER", 1.2)
	v.SetDefault("DEFAULT_LEAD_TIME_DAYS", 7)
	v.SetDefault("HOLDING_COST_RATE", 0.25)
	v.SetDefault("ORDER_COST", 50.0)
	v.SetDefault("INVENTORY_THRESHOLD_PERCENTAGE", 20.0)
	v.SetDefault("ENGINE_WORKERS", 4)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}
