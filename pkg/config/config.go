package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// FPL API
	FPLBaseURL        string        `mapstructure:"FPL_BASE_URL"`
	FPLTimeout        time.Duration `mapstructure:"FPL_TIMEOUT"`
	FPLRequestsPerSec float64       `mapstructure:"FPL_REQUESTS_PER_SEC"`
	RefreshInterval   time.Duration `mapstructure:"REFRESH_INTERVAL"`
	BootstrapCacheTTL time.Duration `mapstructure:"BOOTSTRAP_CACHE_TTL"`

	// Squad rules
	Budget        int `mapstructure:"BUDGET"` // tenths of a million
	GoalkeeperQty int `mapstructure:"GOALKEEPER_QUOTA"`
	DefenderQty   int `mapstructure:"DEFENDER_QUOTA"`
	MidfielderQty int `mapstructure:"MIDFIELDER_QUOTA"`
	ForwardQty    int `mapstructure:"FORWARD_QUOTA"`
	MaxPerClub    int `mapstructure:"MAX_PER_CLUB"`

	// Optimizer
	OptimizerTimeout  time.Duration `mapstructure:"OPTIMIZER_TIMEOUT"`
	OptimizerMaxNodes int64         `mapstructure:"OPTIMIZER_MAX_NODES"`

	// Lineup selection
	DoubtfulFactor    float64 `mapstructure:"DOUBTFUL_FACTOR"`
	UnavailableFactor float64 `mapstructure:"UNAVAILABLE_FACTOR"`

	// Chip thresholds
	TripleCaptainMultiple float64 `mapstructure:"TRIPLE_CAPTAIN_MULTIPLE"`
	BenchBoostRatio       float64 `mapstructure:"BENCH_BOOST_RATIO"`
	FreeHitDisruption     float64 `mapstructure:"FREE_HIT_DISRUPTION"`

	// Prediction model
	EPNextWeight float64 `mapstructure:"EP_NEXT_WEIGHT"`
	FormWeight   float64 `mapstructure:"FORM_WEIGHT"`
	ICTWeight    float64 `mapstructure:"ICT_WEIGHT"`
	MinMinutes   int     `mapstructure:"MIN_MINUTES"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_URL", "file:fpl_optimizer.db")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	viper.SetDefault("FPL_BASE_URL", "https://fantasy.premierleague.com/api")
	viper.SetDefault("FPL_TIMEOUT", "30s")
	viper.SetDefault("FPL_REQUESTS_PER_SEC", 2.0)
	viper.SetDefault("REFRESH_INTERVAL", "6h")
	viper.SetDefault("BOOTSTRAP_CACHE_TTL", "1h")

	// Season-long rule set: £100.0m budget, 2 GKP / 5 DEF / 5 MID / 3 FWD,
	// at most 3 players from any one club. Budget is in tenths of a million.
	viper.SetDefault("BUDGET", 1000)
	viper.SetDefault("GOALKEEPER_QUOTA", 2)
	viper.SetDefault("DEFENDER_QUOTA", 5)
	viper.SetDefault("MIDFIELDER_QUOTA", 5)
	viper.SetDefault("FORWARD_QUOTA", 3)
	viper.SetDefault("MAX_PER_CLUB", 3)

	viper.SetDefault("OPTIMIZER_TIMEOUT", "30s")
	viper.SetDefault("OPTIMIZER_MAX_NODES", 0) // 0 = unbounded

	viper.SetDefault("DOUBTFUL_FACTOR", 0.6)
	viper.SetDefault("UNAVAILABLE_FACTOR", 0.1)

	viper.SetDefault("TRIPLE_CAPTAIN_MULTIPLE", 1.5)
	viper.SetDefault("BENCH_BOOST_RATIO", 0.4)
	viper.SetDefault("FREE_HIT_DISRUPTION", 0.34)

	viper.SetDefault("EP_NEXT_WEIGHT", 0.6)
	viper.SetDefault("FORM_WEIGHT", 0.3)
	viper.SetDefault("ICT_WEIGHT", 0.1)
	viper.SetDefault("MIN_MINUTES", 1)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
