// Package config loads the repository-local git-ai settings.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the .git/git-ai/config.toml contents.
type Config struct {
	// IgnorePrompts strips message transcripts from emitted notes; prompt
	// records and counters are kept.
	IgnorePrompts bool `toml:"ignore_prompts"`
	// Debug enables verbose diagnostic logging.
	Debug bool `toml:"debug"`
	// NotesRemote is the remote notes refs are pushed to, when set.
	NotesRemote string `toml:"notes_remote"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{}
}

// Load reads config from path. A missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}
