// Package config reads the gateway's environment contract. The
// deployment wires these variables into the function resource; they
// are the only channel between the topology and the runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	envRedisHost     = "REDIS_HOST"
	envRedisPort     = "REDIS_PORT"
	envRPMLimit      = "RPM_LIMIT"
	envTPMLimit      = "TPM_LIMIT"
	envBedrockRegion = "BEDROCK_REGION"

	defaultRedisPort     = 6379
	defaultRPMLimit      = 10
	defaultTPMLimit      = 10000
	defaultBedrockRegion = "us-east-1"
)

type Config struct {
	RedisHost     string
	RedisPort     int
	RPMLimit      int64
	TPMLimit      int64
	BedrockRegion string
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Load reads the contract from the process environment. Missing
// optional variables take their defaults; a present but non-numeric
// value is an error, not a default.
func Load() (Config, error) {
	cfg := Config{
		RedisHost:     os.Getenv(envRedisHost),
		RedisPort:     defaultRedisPort,
		RPMLimit:      defaultRPMLimit,
		TPMLimit:      defaultTPMLimit,
		BedrockRegion: defaultBedrockRegion,
	}

	if cfg.RedisHost == "" {
		return Config{}, fmt.Errorf("%s is required", envRedisHost)
	}

	if v := os.Getenv(envRedisPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid %s %q", envRedisPort, v)
		}
		cfg.RedisPort = port
	}

	if v := os.Getenv(envRPMLimit); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q", envRPMLimit, v)
		}
		cfg.RPMLimit = limit
	}

	if v := os.Getenv(envTPMLimit); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q", envTPMLimit, v)
		}
		cfg.TPMLimit = limit
	}

	if v := os.Getenv(envBedrockRegion); v != "" {
		cfg.BedrockRegion = v
	}

	return cfg, nil
}
