package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "INSULTR_"

// Load layers defaults, the YAML file named by INSULTR_CONFIG (if any) and
// INSULTR_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// INSULTR_FACE_API_KEY -> face_api_key
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret must be set", ErrInvalidConfig)
	case c.MaxUploadSize <= 0:
		return fmt.Errorf("%w: max_upload_size must be positive", ErrInvalidConfig)
	case c.FaceAPITimeout <= 0:
		return fmt.Errorf("%w: face_api_timeout must be positive", ErrInvalidConfig)
	case c.S3URLTTL <= 0 || c.S3URLTTL > 7*24*time.Hour:
		return fmt.Errorf("%w: s3_url_ttl must be within (0, 168h]", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(c.FaceAPIURL); err != nil {
		return fmt.Errorf("%w: face_api_url: %v", ErrInvalidConfig, err)
	}
	if c.S3PublicBaseURL != "" {
		if _, err := url.ParseRequestURI(c.S3PublicBaseURL); err != nil {
			return fmt.Errorf("%w: s3_public_base_url: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
