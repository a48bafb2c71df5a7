package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/intake"
	"github.com/tukangsapu/sapu/internal/scoring"
)

type GSheetConfig struct {
	SheetID         string `toml:"sheet_id"`
	SheetName       string `toml:"sheet_name"`
	CredentialsPath string `toml:"credentials_path"`
	Schedule        string `toml:"schedule"`
	Year            int    `toml:"year"`
	Semester        int    `toml:"semester"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL           string `toml:"redis_url"`
		TokenHeader        string `toml:"token_header"`
		SessionKeyTemplate string `toml:"session_key_template"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Storage struct {
		DSN           string `toml:"dsn"`
		PublicBaseURL string `toml:"public_base_url"`
	} `toml:"storage"`

	Events struct {
		RedisURL string `toml:"redis_url"`
		Channel  string `toml:"channel"`
	} `toml:"events"`

	Intake intake.Policy `toml:"intake"`

	Scoring scoring.Scorer `toml:"scoring"`

	Recap struct {
		KetuaOSIS     string `toml:"ketua_osis"`
		SubmitBaseURL string `toml:"submit_base_url"`
	} `toml:"recap"`

	GSheet []GSheetConfig `toml:"gsheet"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	config.Intake = intake.DefaultPolicy()
	config.Scoring = *scoring.DefaultScorer()

	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Events.Channel == "" {
		config.Events.Channel = "sapu:changes"
	}

	logger.Debug.Printf("Loaded scoring config: %+v", config.Scoring)

	return &config, nil
}
