package config

import (
	"github.com/caarlos0/env"
	"github.com/pkg/errors"
)

// Conf stores global config.
var Conf Config

// LoadConfig loads environmental variable into Conf.
func LoadConfig() error {
	c, err := Parse()
	if err != nil {
		return err
	}
	Conf = c
	return nil
}

// Parse reads a Config from the environment without touching Conf.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, errors.Wrap(err, "env.Parse failed")
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c, nil
}

// Config stores mpkfont config.
type Config struct {
	FontName      string `env:"MPKFONT_FONT_NAME" envDefault:"normal.ttf"`
	AssetsDir     string `env:"MPKFONT_ASSETS_DIR" envDefault:"./assets"`
	ClientVersion string `env:"MPKFONT_CLIENT_VERSION" envDefault:""`
	DBName        string `env:"MPKFONT_DB_NAME" envDefault:"mpkfont.db"`
	Workers       int    `env:"MPKFONT_WORKERS" envDefault:"4"`

	GCSBucket string `env:"MPKFONT_GCS_BUCKET" envDefault:""`
	GCSPrefix string `env:"MPKFONT_GCS_PREFIX" envDefault:"bundles/"`

	GCPProjectID string `env:"MPKFONT_GCP_PROJECT_ID" envDefault:""`
	GCPKeyPath   string `env:"MPKFONT_GCP_KEY_PATH" envDefault:""`
}
