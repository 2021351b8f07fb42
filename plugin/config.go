// Package plugin implements the host side of the native plugin boundary:
// the nyash.toml plugin configuration, the BID-1 TLV argument encoding, the
// CBOR catalog handshake and the factory that surfaces plugin Box types
// through the runtime's construction registry.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root of a nyash.toml file.
type Config struct {
	Libraries map[string]Library `toml:"libraries"`
	Types     map[string]BoxType `toml:"types"`

	// Dir is the directory containing the nyash.toml (set at load time).
	Dir string `toml:"-"`
}

// Library describes one plugin library and the Box types it provides.
type Library struct {
	PluginPath string   `toml:"plugin_path"`
	Provides   []string `toml:"provides"`
}

// BoxType maps a plugin Box type to its library and wire identifiers.
type BoxType struct {
	Library string            `toml:"library"`
	TypeID  uint32            `toml:"type_id"`
	Methods map[string]Method `toml:"methods"`
}

// Method carries the wire identifier and arity of one plugin method.
type Method struct {
	MethodID uint32 `toml:"method_id"`
	Arity    int    `toml:"arity"`
}

// LoadConfig reads and validates a nyash.toml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plugin config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return &cfg, nil
}

func (c *Config) validate() error {
	for name, bt := range c.Types {
		if bt.Library == "" {
			return fmt.Errorf("type %s: missing library", name)
		}
		if _, ok := c.Libraries[bt.Library]; !ok {
			return fmt.Errorf("type %s: unknown library %q", name, bt.Library)
		}
	}
	for lib, l := range c.Libraries {
		if l.PluginPath == "" {
			return fmt.Errorf("library %s: missing plugin_path", lib)
		}
		for _, t := range l.Provides {
			if _, ok := c.Types[t]; !ok {
				return fmt.Errorf("library %s provides undeclared type %q", lib, t)
			}
		}
	}
	return nil
}
