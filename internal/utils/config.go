package utils

import (
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Scraper struct {
		Timeout     int `yaml:"timeout"`
		Retries     int `yaml:"retries"`
		Delay       int `yaml:"delay"`
		SettleDelay int `yaml:"settleDelay"`
		Browser     struct {
			Headless   bool   `yaml:"headless"`
			Debug      bool   `yaml:"debug"`
			ProfileDir string `yaml:"profileDir"`
		} `yaml:"browser"`
	} `yaml:"scraper"`
}

// Credentials holds the Stockbit account credentials loaded from the
// environment. Empty values are tolerated; automated login will then fail
// cleanly instead of crashing.
type Credentials struct {
	Username string
	Password string
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	return config, nil
}

// DefaultConfig returns a usable configuration when no config file exists.
func DefaultConfig() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Scraper.Timeout <= 0 {
		c.Scraper.Timeout = 60
	}
	if c.Scraper.Retries <= 0 {
		c.Scraper.Retries = 3
	}
	if c.Scraper.Delay <= 0 {
		c.Scraper.Delay = 2
	}
	if c.Scraper.SettleDelay <= 0 {
		c.Scraper.SettleDelay = 3
	}
	if c.Scraper.Browser.ProfileDir == "" {
		c.Scraper.Browser.ProfileDir = ".chrome-profile"
	}
}

// LoadCredentials reads the Stockbit credentials from the environment.
func LoadCredentials() Credentials {
	return Credentials{
		Username: os.Getenv("STOCKBIT_USERNAME"),
		Password: os.Getenv("STOCKBIT_PASSWORD"),
	}
}

// HeadlessOverride reports whether HEADLESS_MODE is set in the environment
// and, if so, the value it forces.
func HeadlessOverride() (value bool, set bool) {
	raw, ok := os.LookupEnv("HEADLESS_MODE")
	if !ok {
		return false, false
	}
	return strings.EqualFold(strings.TrimSpace(raw), "true"), true
}
