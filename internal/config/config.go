package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // production (json) or development (console)
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`
	Gemini struct {
		APIKey      string  `yaml:"api_key"`
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"base_url"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"gemini"`
	Game struct {
		CountdownFrom   int    `yaml:"countdown_from"`
		QuestionSeconds int    `yaml:"question_seconds"`
		Tick            string `yaml:"tick"`
		GoDelay         string `yaml:"go_delay"`
		SubmitReveal    string `yaml:"submit_reveal"`
		TimeoutReveal   string `yaml:"timeout_reveal"`
		WinDelay        string `yaml:"win_delay"`
	} `yaml:"game"`
	Pool struct {
		Size int    `yaml:"size"`
		TTL  string `yaml:"ttl"`
	} `yaml:"pool"`
	Archive struct {
		PruneSchedule string `yaml:"prune_schedule"`
		Retention     string `yaml:"retention"`
	} `yaml:"archive"`
}

// Load reads YAML config from path. A .env file in the working directory is
// loaded first; GEMINI_API_KEY from the environment wins over the YAML value.
func Load(path string) (Config, error) {
	cfg := Config{}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadOptional is Load for commands that can run without a config file.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Config{}
		cfg.applyEnv()
		return cfg, nil
	}
	return cfg, err
}

func (c *Config) applyEnv() {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		c.Gemini.APIKey = key
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
