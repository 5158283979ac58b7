// Package config holds the service configuration and its loader.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxUploadSize caps uploaded images, in bytes.
	MaxUploadSize int64 `koanf:"max_upload_size"`

	DatabaseDSN string `koanf:"database_dsn"`
	RedisAddr   string `koanf:"redis_addr"`

	JWTSecret   string `koanf:"jwt_secret"`
	JWTAudience string `koanf:"jwt_audience"`

	// FaceAPIURL is the detection endpoint; FaceAPIHost and FaceAPIKey are
	// sent as x-rapidapi-host and x-rapidapi-key.
	FaceAPIURL     string        `koanf:"face_api_url"`
	FaceAPIHost    string        `koanf:"face_api_host"`
	FaceAPIKey     string        `koanf:"face_api_key"`
	FaceAPITimeout time.Duration `koanf:"face_api_timeout"`

	S3Bucket          string `koanf:"s3_bucket"`
	S3Region          string `koanf:"s3_region"`
	S3Endpoint        string `koanf:"s3_endpoint"`
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`
	// S3PublicBaseURL, when set, is prefixed to object keys instead of
	// handing out presigned URLs.
	S3PublicBaseURL string        `koanf:"s3_public_base_url"`
	S3URLTTL        time.Duration `koanf:"s3_url_ttl"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		ShutdownTimeout: 15 * time.Second,
		MaxUploadSize:   10 << 20,
		DatabaseDSN:     "host=postgres user=postgres password=postgres dbname=insultr port=5432 sslmode=disable",
		RedisAddr:       "redis:6379",
		FaceAPIURL:      "https://rapidapi.p.rapidapi.com/facepp/v3/detect",
		FaceAPIHost:     "faceplusplus-faceplusplus.p.rapidapi.com",
		FaceAPITimeout:  30 * time.Second,
		S3Region:        "us-east-1",
		S3URLTTL:        7 * 24 * time.Hour,
	}
}
