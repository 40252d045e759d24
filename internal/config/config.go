package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendEAS   = "eas"
	BackendRedis = "redis"
)

type Config struct {
	LogLevel string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	AIDelay  time.Duration `yaml:"ai-delay" env-default:"500ms"`
	Ledger   Ledger        `yaml:"ledger"`
	Wallet   Wallet        `yaml:"wallet"`
	Redis    Redis         `yaml:"redis"`
}

type Ledger struct {
	Backend         string `yaml:"backend" env:"LEDGER_BACKEND" env-default:"eas"`
	RPCURL          string `yaml:"rpc-url" env:"LEDGER_RPC_URL" env-default:"https://sepolia.base.org"`
	GraphQLURL      string `yaml:"graphql-url" env-default:"https://base-sepolia.easscan.org/graphql"`
	ExplorerURL     string `yaml:"explorer-url" env-default:"https://base-sepolia.easscan.org/attestation/view/"`
	ContractAddress string `yaml:"contract-address" env-default:"0x4200000000000000000000000000000000000021"`
	SchemaUID       string `yaml:"schema-uid" env-default:"0x31876b77368248bfab65f0ce7c5d5f74109b2491ac018c2424083e017cf6d52c"`
	ChainID         int64  `yaml:"chain-id" env-default:"84532"`
}

type Wallet struct {
	PrivateKey string `yaml:"private-key" env:"WALLET_PRIVATE_KEY"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the yaml file at path, then the environment.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if config.Ledger.Backend != BackendEAS && config.Ledger.Backend != BackendRedis {
		return nil, fmt.Errorf("unknown ledger backend %q", config.Ledger.Backend)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// ExplorerLink - where an attestation can be viewed.
func (that *Ledger) ExplorerLink(uid string) string {
	return that.ExplorerURL + uid
}
