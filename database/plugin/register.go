// Copyright 2025 Blink Labs Software
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
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

// PluginOption describes a single tunable of a plugin. Dest must point at a
// variable matching Type.
type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	CustomEnvVar string
	CustomFlag   string
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

func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugin returns a new instance of the named plugin built from its current
// option values, or nil if no such plugin is registered
func GetPlugin(pluginType PluginType, name string) Plugin {
	for _, p := range pluginEntries {
		if p.Type == pluginType && p.Name == name {
			return p.NewFromOptionsFunc()
		}
	}
	return nil
}

func GetPlugins(pluginType PluginType) []PluginEntry {
	var ret []PluginEntry
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// PopulateCmdlineOptions adds a flag for every registered plugin option, named
// <type>-<plugin>-<option> unless the option sets CustomFlag
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			if err := opt.addToFlagSet(fs, p.Type, p.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessEnvVars applies option values from environment variables named
// TOKENREG_<TYPE>_<PLUGIN>_<OPTION> unless the option sets CustomEnvVar
func ProcessEnvVars() error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			envVar := opt.envVarName(p.Type, p.Name)
			val, ok := os.LookupEnv(envVar)
			if !ok {
				continue
			}
			if err := opt.setFromString(val); err != nil {
				return fmt.Errorf("environment variable %s: %w", envVar, err)
			}
		}
	}
	return nil
}

// ProcessConfig applies option values from a config file section. The map is
// keyed by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for _, p := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(p.Type)]
		if !ok {
			continue
		}
		entryConfig, ok := typeConfig[p.Name]
		if !ok {
			continue
		}
		for _, opt := range p.Options {
			val, ok := entryConfig[opt.Name]
			if !ok {
				continue
			}
			if err := opt.setFromConfig(val); err != nil {
				return fmt.Errorf(
					"%s plugin '%s': option %s: %w",
					PluginTypeName(p.Type),
					p.Name,
					opt.Name,
					err,
				)
			}
		}
	}
	return nil
}

func (p *PluginOption) flagName(pluginType PluginType, pluginName string) string {
	if p.CustomFlag != "" {
		return p.CustomFlag
	}
	return fmt.Sprintf("%s-%s-%s", PluginTypeName(pluginType), pluginName, p.Name)
}

func (p *PluginOption) envVarName(pluginType PluginType, pluginName string) string {
	if p.CustomEnvVar != "" {
		return p.CustomEnvVar
	}
	name := fmt.Sprintf(
		"TOKENREG_%s_%s_%s",
		PluginTypeName(pluginType),
		pluginName,
		p.Name,
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (p *PluginOption) addToFlagSet(
	fs *pflag.FlagSet,
	pluginType PluginType,
	pluginName string,
) error {
	name := p.flagName(pluginType, pluginName)
	switch p.Type {
	case PluginOptionTypeString:
		dest, ok := p.Dest.(*string)
		if !ok {
			return fmt.Errorf("option %s: destination is not *string", name)
		}
		def, _ := p.DefaultValue.(string)
		fs.StringVar(dest, name, def, p.Description)
	case PluginOptionTypeBool:
		dest, ok := p.Dest.(*bool)
		if !ok {
			return fmt.Errorf("option %s: destination is not *bool", name)
		}
		def, _ := p.DefaultValue.(bool)
		fs.BoolVar(dest, name, def, p.Description)
	case PluginOptionTypeInt:
		dest, ok := p.Dest.(*int)
		if !ok {
			return fmt.Errorf("option %s: destination is not *int", name)
		}
		def, _ := p.DefaultValue.(int)
		fs.IntVar(dest, name, def, p.Description)
	case PluginOptionTypeUint:
		dest, ok := p.Dest.(*uint64)
		if !ok {
			return fmt.Errorf("option %s: destination is not *uint64", name)
		}
		def, _ := p.DefaultValue.(uint64)
		fs.Uint64Var(dest, name, def, p.Description)
	default:
		return fmt.Errorf("option %s: unknown option type %d", name, p.Type)
	}
	return nil
}

func (p *PluginOption) setFromString(val string) error {
	switch p.Type {
	case PluginOptionTypeString:
		return assignOption(p, val)
	case PluginOptionTypeBool:
		v, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		return assignOption(p, v)
	case PluginOptionTypeInt:
		v, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		return assignOption(p, v)
	case PluginOptionTypeUint:
		v, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return err
		}
		return assignOption(p, v)
	default:
		return fmt.Errorf("unknown option type %d", p.Type)
	}
}

// setFromConfig accepts the loosely typed values produced by the YAML decoder
func (p *PluginOption) setFromConfig(val any) error {
	switch v := val.(type) {
	case string:
		return p.setFromString(v)
	case bool:
		if p.Type != PluginOptionTypeBool {
			return fmt.Errorf("unexpected bool value %v", v)
		}
		return assignOption(p, v)
	case int:
		switch p.Type {
		case PluginOptionTypeInt:
			return assignOption(p, v)
		case PluginOptionTypeUint:
			if v < 0 {
				return fmt.Errorf("negative value %d", v)
			}
			return assignOption(p, uint64(v))
		}
		return fmt.Errorf("unexpected integer value %d", v)
	default:
		return fmt.Errorf("unsupported value type %T", val)
	}
}
