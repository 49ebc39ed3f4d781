// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
	"lukechampine.com/uint128"
)

type ctxKey string

const configContextKey ctxKey = "ballot.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultTickLength      = "6s"
	envPrefix              = "ballot"
	pluginEnvPrefix        = "ballot_database"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// ClockMode selects how the governance clock advances
type ClockMode string

const (
	ClockModeStored ClockMode = "stored" // Persisted tick, advanced on request (default)
	ClockModeWall   ClockMode = "wall"   // Derived from wall time since genesis
)

// Valid returns true if the ClockMode is a known valid mode
func (m ClockMode) Valid() bool {
	switch m {
	case ClockModeStored, ClockModeWall, "":
		return true
	default:
		return false
	}
}

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	GenesisBalances     map[string]string `yaml:"genesisBalances"                                          split_words:"true"`
	MetadataPlugin      string            `yaml:"metadataPlugin"      envconfig:"BALLOT_DATABASE_METADATA_PLUGIN"`
	BlobPlugin          string            `yaml:"blobPlugin"          envconfig:"BALLOT_DATABASE_BLOB_PLUGIN"`
	DatabasePath        string            `yaml:"databasePath"                                             split_words:"true"`
	BindAddr            string            `yaml:"bindAddr"                                                 split_words:"true"`
	AdminToken          string            `yaml:"adminToken"                                               split_words:"true"`
	RegisterFee         string            `yaml:"registerFee"                                              split_words:"true"`
	ClockMode           ClockMode         `yaml:"clockMode"                                                split_words:"true"`
	GenesisTime         string            `yaml:"genesisTime"                                              split_words:"true"`
	TickLength          string            `yaml:"tickLength"                                               split_words:"true"`
	ShutdownTimeout     string            `yaml:"shutdownTimeout"                                          split_words:"true"`
	MaxProposalDuration uint64            `yaml:"maxProposalDuration"                                      split_words:"true"`
	ApiPort             uint              `yaml:"apiPort"                                                  split_words:"true"`
	MetricsPort         uint              `yaml:"metricsPort"                                              split_words:"true"`
	MaxOptions          uint8             `yaml:"maxOptions"                                               split_words:"true"`
	StrictVoteCommit    bool              `yaml:"strictVoteCommit"                                         split_words:"true"`
	Tracing             bool              `yaml:"tracing"`
	TracingStdout       bool              `yaml:"tracingStdout"                                            split_words:"true"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:        ".ballot",
		BindAddr:            "0.0.0.0",
		ApiPort:             3000,
		MetricsPort:         12799,
		RegisterFee:         "50",
		MaxOptions:          3,
		MaxProposalDuration: 10,
		ClockMode:           ClockModeStored,
		TickLength:          DefaultTickLength,
		BlobPlugin:          DefaultBlobPlugin,
		MetadataPlugin:      DefaultMetadataPlugin,
		ShutdownTimeout:     DefaultShutdownTimeout,
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.ballot/ballot.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".ballot", "ballot.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/ballot/ballot.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/ballot/ballot.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		// First unmarshal into temp config to handle plugin sections
		var tempCfg tempConfig
		err = yaml.Unmarshal(buf, &tempCfg)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		// If config section exists, use it for main config
		if tempCfg.Config != nil {
			// Overlay config values onto existing defaults
			configBytes, err := yaml.Marshal(tempCfg.Config)
			if err != nil {
				return nil, fmt.Errorf("error re-marshalling config: %w", err)
			}
			err = yaml.Unmarshal(configBytes, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			// Otherwise unmarshal the whole file as main config
			err = yaml.Unmarshal(buf, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}

		// Process plugin configurations
		blobConfig := tempCfg.Blob
		metadataConfig := tempCfg.Metadata
		// Handle database section if present
		if tempCfg.Database != nil {
			if tempCfg.Database.Blob != nil {
				blobConfig = mergePluginSection(
					blobConfig,
					tempCfg.Database.Blob,
					&globalConfig.BlobPlugin,
					"blob",
				)
			}
			if tempCfg.Database.Metadata != nil {
				metadataConfig = mergePluginSection(
					metadataConfig,
					tempCfg.Database.Metadata,
					&globalConfig.MetadataPlugin,
					"metadata",
				)
			}
		}
		if len(blobConfig) > 0 {
			if err := plugin.ProcessConfig(plugin.PluginTypeBlob, blobConfig); err != nil {
				return nil, fmt.Errorf(
					"error processing blob plugin config: %w",
					err,
				)
			}
		}
		if len(metadataConfig) > 0 {
			if err := plugin.ProcessConfig(plugin.PluginTypeMetadata, metadataConfig); err != nil {
				return nil, fmt.Errorf(
					"error processing metadata plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	err := envconfig.Process(envPrefix, globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars(pluginEnvPrefix)
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	if globalConfig.ClockMode == "" {
		globalConfig.ClockMode = ClockModeStored
	}
	return globalConfig, nil
}

// mergePluginSection splits a database plugin section into the selected
// plugin name and the per-plugin option maps, merging into existing
func mergePluginSection(
	existing map[string]map[string]any,
	section map[string]any,
	pluginName *string,
	sectionName string,
) map[string]map[string]any {
	// Extract plugin name if specified
	if pluginVal, exists := section["plugin"]; exists {
		if name, ok := pluginVal.(string); ok {
			*pluginName = name
			delete(section, "plugin")
		}
	}
	pluginConfig := make(map[string]map[string]any)
	for k, v := range section {
		switch val := v.(type) {
		case map[string]any:
			pluginConfig[k] = val
		case map[any]any:
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			pluginConfig[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				sectionName,
				k,
				v,
			)
		}
	}
	if existing == nil {
		return pluginConfig
	}
	maps.Copy(existing, pluginConfig)
	return existing
}

func (c *Config) validate() error {
	if !c.ClockMode.Valid() {
		return fmt.Errorf(
			"invalid clockMode: %q (must be 'stored' or 'wall')",
			c.ClockMode,
		)
	}
	if _, err := c.RegisterFeeAmount(); err != nil {
		return err
	}
	if _, err := c.GenesisBalanceAmounts(); err != nil {
		return err
	}
	if _, err := c.GenesisTimeValue(); err != nil {
		return err
	}
	if c.ClockMode == ClockModeWall && c.GenesisTime == "" {
		return errors.New("clockMode 'wall' requires genesisTime")
	}
	return nil
}

// RegisterFeeAmount parses the decimal register fee
func (c *Config) RegisterFeeAmount() (uint128.Uint128, error) {
	fee, err := uint128.FromString(c.RegisterFee)
	if err != nil {
		return uint128.Zero, fmt.Errorf("invalid registerFee %q: %w", c.RegisterFee, err)
	}
	return fee, nil
}

// GenesisBalanceAmounts parses the decimal genesis balances
func (c *Config) GenesisBalanceAmounts() (map[string]uint128.Uint128, error) {
	ret := make(map[string]uint128.Uint128, len(c.GenesisBalances))
	for account, amountStr := range c.GenesisBalances {
		amount, err := uint128.FromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf(
				"invalid genesis balance for %q: %w",
				account,
				err,
			)
		}
		ret[account] = amount
	}
	return ret, nil
}

// GenesisTimeValue parses the RFC 3339 genesis time. An empty value returns the zero time
func (c *Config) GenesisTimeValue() (time.Time, error) {
	if c.GenesisTime == "" {
		return time.Time{}, nil
	}
	ret, err := time.Parse(time.RFC3339, c.GenesisTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid genesisTime: %w", err)
	}
	return ret, nil
}

func GetConfig() *Config {
	return globalConfig
}
