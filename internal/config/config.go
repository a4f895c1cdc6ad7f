// Package config loads the optional TOML run configuration. Flags given on
// the command line take precedence over values loaded here.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// ProtoPaths are the import roots searched for .proto files.
	ProtoPaths []string `toml:"proto_paths"`
	// Files are the .proto files to compile.
	Files []string `toml:"files"`
	// CsOut is the output directory for generated C# sources.
	CsOut string `toml:"cs_out"`
	// Namespace overrides the C# namespace for all files.
	Namespace string `toml:"namespace"`
}

func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q in %s", undecoded[0], path)
	}
	return cfg, nil
}
