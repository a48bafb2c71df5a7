package bot

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the [bot] section of the shared config file; the rest of the
// file is read by app.LoadConfig.
type Config struct {
	Bot struct {
		Token    string  `toml:"token"`
		AdminIDs []int64 `toml:"admin_ids"`
	} `toml:"bot"`
}

func ReadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is not specified in config")
	}

	return &cfg, nil
}
