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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeMetadata PluginType = iota
	PluginTypeBlob
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeMetadata:
		return "metadata"
	case PluginTypeBlob:
		return "blob"
	default:
		return "unknown"
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin entry to the registry. It's meant to be called from
// a plugin package init()
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns all registered plugin entries of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, pluginEntry := range pluginEntries {
		if pluginEntry.Type == pluginType {
			ret = append(ret, pluginEntry)
		}
	}
	return ret
}

// GetPlugin creates a new instance of the named plugin from its current
// options. It returns nil if no such plugin is registered
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	for _, pluginEntry := range pluginEntries {
		if pluginEntry.Type != pluginType || pluginEntry.Name != pluginName {
			continue
		}
		return pluginEntry.NewFromOptionsFunc()
	}
	return nil
}

// PopulateCmdlineOptions adds a flag for each plugin option, named like
// --<type>-<plugin>-<option>
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, pluginEntry := range pluginEntries {
		for _, option := range pluginEntry.Options {
			flagName := cmdlineFlagName(pluginEntry, option)
			if err := option.addFlag(fs, flagName); err != nil {
				return fmt.Errorf(
					"%s plugin '%s': %w",
					PluginTypeName(pluginEntry.Type),
					pluginEntry.Name,
					err,
				)
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from environment variables named like
// <prefix>_<TYPE>_<PLUGIN>_<OPTION>
func ProcessEnvVars(prefix string) error {
	for _, pluginEntry := range pluginEntries {
		for _, option := range pluginEntry.Options {
			envName := envVarName(prefix, pluginEntry, option)
			val, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			if err := option.setFromString(val); err != nil {
				return fmt.Errorf("environment variable %s: %w", envName, err)
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options from a config file section, keyed by
// plugin name and then option name
func ProcessConfig(
	pluginType PluginType,
	pluginConfig map[string]map[string]any,
) error {
	for pluginName, options := range pluginConfig {
		for optionName, value := range options {
			if err := SetPluginOption(pluginType, pluginName, optionName, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func cmdlineFlagName(pluginEntry PluginEntry, option PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(pluginEntry.Type),
		pluginEntry.Name,
		option.Name,
	)
}

func envVarName(
	prefix string,
	pluginEntry PluginEntry,
	option PluginOption,
) string {
	ret := fmt.Sprintf(
		"%s_%s_%s_%s",
		prefix,
		PluginTypeName(pluginEntry.Type),
		pluginEntry.Name,
		option.Name,
	)
	ret = strings.ReplaceAll(ret, "-", "_")
	return strings.ToUpper(ret)
}

func (p PluginOption) addFlag(fs *pflag.FlagSet, flagName string) error {
	switch p.Type {
	case PluginOptionTypeString:
		dest, ok := p.Dest.(*string)
		if !ok || dest == nil {
			return fmt.Errorf("invalid destination for option %s", p.Name)
		}
		defVal, _ := p.DefaultValue.(string)
		fs.StringVar(dest, flagName, defVal, p.Description)
	case PluginOptionTypeBool:
		dest, ok := p.Dest.(*bool)
		if !ok || dest == nil {
			return fmt.Errorf("invalid destination for option %s", p.Name)
		}
		defVal, _ := p.DefaultValue.(bool)
		fs.BoolVar(dest, flagName, defVal, p.Description)
	case PluginOptionTypeInt:
		dest, ok := p.Dest.(*int)
		if !ok || dest == nil {
			return fmt.Errorf("invalid destination for option %s", p.Name)
		}
		defVal, _ := p.DefaultValue.(int)
		fs.IntVar(dest, flagName, defVal, p.Description)
	case PluginOptionTypeUint:
		dest, ok := p.Dest.(*uint64)
		if !ok || dest == nil {
			return fmt.Errorf("invalid destination for option %s", p.Name)
		}
		defVal, _ := p.DefaultValue.(uint64)
		fs.Uint64Var(dest, flagName, defVal, p.Description)
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			p.Type,
			p.Name,
		)
	}
	return nil
}

func (p PluginOption) setFromString(val string) error {
	switch p.Type {
	case PluginOptionTypeString:
		return p.setValue(val)
	case PluginOptionTypeBool:
		tmpVal, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		return p.setValue(tmpVal)
	case PluginOptionTypeInt:
		tmpVal, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		return p.setValue(tmpVal)
	case PluginOptionTypeUint:
		tmpVal, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return err
		}
		return p.setValue(tmpVal)
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			p.Type,
			p.Name,
		)
	}
}
