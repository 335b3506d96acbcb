// Package config defines environment configuration structs and loaders.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	ChainEnvConfig
	WalletEnvConfig
	KamiEnvConfig
	RedisEnvConfig
	ServiceAPIEnvConfig
	IntakeEnvConfig
	ValidatorEnvConfig
	ScoringEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.ScoringEnvConfig.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ChainEnvConfig holds chain-specific environment values.
type ChainEnvConfig struct {
	Netuid int `env:"NETUID" envDefault:"98"`
}

// WalletEnvConfig holds wallet key configuration.
type WalletEnvConfig struct {
	WalletHotkey  string `env:"WALLET_HOTKEY"`
	WalletColdkey string `env:"WALLET_COLDKEY"`
	BittensorDir  string `env:"BITTENSOR_DIR" envDefault:"~/.bittensor"`
}

// KamiEnvConfig contains the subtensor gateway target and keys.
type KamiEnvConfig struct {
	WalletEnvConfig
	SubtensorNetwork string `env:"SUBTENSOR_NETWORK" envDefault:"test"`
	KamiHost         string `env:"KAMI_HOST" envDefault:"127.0.0.1"`
	KamiPort         string `env:"KAMI_PORT" envDefault:"3000"`
}

// RedisEnvConfig configures the optional Redis observation queue.
type RedisEnvConfig struct {
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:"password"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisUsername string `env:"REDIS_USERNAME" envDefault:"admin"`
}

// ServiceAPIEnvConfig configures the business service API used to validate
// node responses into raw reward values.
type ServiceAPIEnvConfig struct {
	ServiceAPIUrl     string        `env:"SERVICE_API_URL" envDefault:"http://localhost:5000"`
	ServiceAPIKey     string        `env:"SERVICE_API_KEY"`
	ServiceAPIRetries int           `env:"SERVICE_API_MAX_RETRIES" envDefault:"3"`
	ClientTimeout     time.Duration `env:"CLIENT_TIMEOUT" envDefault:"30s"`
}

// IntakeEnvConfig configures the observation intake server.
type IntakeEnvConfig struct {
	IntakeAddress   string `env:"INTAKE_ADDRESS" envDefault:"127.0.0.1"`
	IntakePort      int    `env:"INTAKE_PORT" envDefault:"8091"`
	IntakeBodyLimit int    `env:"INTAKE_BODY_LIMIT" envDefault:"1048576"`
}

// ValidatorEnvConfig configures validator runtime.
type ValidatorEnvConfig struct {
	ChainEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	StateFile   string `env:"STATE_FILE" envDefault:"scores.json"`
	// WeightEpochBlocks > 0 gates weight submission on chain block intervals
	// instead of score step counts.
	WeightEpochBlocks int `env:"WEIGHT_EPOCH_BLOCKS" envDefault:"0"`
}

// ScoringEnvConfig holds the engine hyperparameters.
type ScoringEnvConfig struct {
	ExternalRewardWeight    float64 `env:"EXTERNAL_REWARD_WEIGHT" envDefault:"0.5"`
	MovingAverageAlpha      float64 `env:"MOVING_AVERAGE_ALPHA" envDefault:"0.1"`
	MaxWeightsPerSubmission int     `env:"MAX_WEIGHTS_PER_SUBMISSION" envDefault:"0"`
	MinWeightCutoff         float64 `env:"MIN_WEIGHT_CUTOFF" envDefault:"0"`
}

func (c *ScoringEnvConfig) Validate() error {
	if c.ExternalRewardWeight < 0 || c.ExternalRewardWeight > 1 {
		return fmt.Errorf("EXTERNAL_REWARD_WEIGHT must be in [0, 1], got %f", c.ExternalRewardWeight)
	}
	if c.MovingAverageAlpha <= 0 || c.MovingAverageAlpha > 1 {
		return fmt.Errorf("MOVING_AVERAGE_ALPHA must be in (0, 1], got %f", c.MovingAverageAlpha)
	}
	return nil
}

type IntervalConfig struct {
	MetagraphInterval     time.Duration
	BlockInterval         time.Duration
	ScoringInterval       time.Duration
	WeightSettingInterval time.Duration
}

var (
	DevIntervalConfig = &IntervalConfig{
		MetagraphInterval:     5 * time.Second,
		BlockInterval:         2 * time.Second,
		ScoringInterval:       10 * time.Second,
		WeightSettingInterval: 30 * time.Second,
	}
	TestIntervalConfig = &IntervalConfig{
		MetagraphInterval:     30 * time.Second,
		BlockInterval:         12 * time.Second,
		ScoringInterval:       10 * time.Minute,
		WeightSettingInterval: 60 * time.Minute,
	}

	ProdIntervalConfig = &IntervalConfig{
		MetagraphInterval:     30 * time.Second,
		BlockInterval:         12 * time.Second,
		ScoringInterval:       10 * time.Minute,
		WeightSettingInterval: 60 * time.Minute,
	}
)

func NewIntervalConfig(environment string) *IntervalConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevIntervalConfig
	case "test":
		return TestIntervalConfig
	case "prod":
		return ProdIntervalConfig
	}

	return DevIntervalConfig
}
