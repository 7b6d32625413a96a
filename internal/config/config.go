package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port                  int      `mapstructure:"port"`
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	LoginRateLimitPerHour int      `mapstructure:"login_rate_limit_per_hour"`
	LoginLockThreshold    int      `mapstructure:"login_lock_threshold"`
	LoginLockTTLMinutes   int      `mapstructure:"login_lock_ttl_minutes"`
	CookieDomain          string   `mapstructure:"cookie_domain"`
	InternalSecret        string   `mapstructure:"internal_secret"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AuthConfig 包含 JWT 密钥与令牌有效期配置。
type AuthConfig struct {
	PrivateKeyPath  string `mapstructure:"private_key_path"`
	PublicKeyPath   string `mapstructure:"public_key_path"`
	AccessTTLHours  int    `mapstructure:"access_ttl_hours"`
	RefreshTTLHours int    `mapstructure:"refresh_ttl_hours"`
}

// UploadConfig 包含个人资料图片上传的限制与扫描配置。
type UploadConfig struct {
	ClamdAddr        string `mapstructure:"clamd_addr"`
	MaxBytes         int64  `mapstructure:"max_bytes"`
	MaxAssetsPerUser int    `mapstructure:"max_assets_per_user"`
	MaxUploadsPerDay int    `mapstructure:"max_uploads_per_day"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Addr 返回 host:port 形式的 Redis 地址。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AccessTTL 返回访问令牌有效期。
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLHours) * time.Hour
}

// RefreshTTL 返回刷新令牌有效期。
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTTLHours) * time.Hour
}

// ReadKeyPair 读取 PEM 私钥与公钥文件。
func (a AuthConfig) ReadKeyPair() (privatePEM, publicPEM []byte, err error) {
	privatePEM, err = os.ReadFile(a.PrivateKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read private key: %w", err)
	}
	publicPEM, err = os.ReadFile(a.PublicKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read public key: %w", err)
	}
	return privatePEM, publicPEM, nil
}

// LoginLockTTL 返回登录失败锁定时长。
func (a APIConfig) LoginLockTTL() time.Duration {
	return time.Duration(a.LoginLockTTLMinutes) * time.Minute
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.login_rate_limit_per_hour", 10)
	v.SetDefault("api.login_lock_threshold", 5)
	v.SetDefault("api.login_lock_ttl_minutes", 15)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "cvforge")
	v.SetDefault("database.user", "cvforge")
	v.SetDefault("database.password", "cvforge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "cvforge")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("auth.private_key_path", "keys/jwt_private.pem")
	v.SetDefault("auth.public_key_path", "keys/jwt_public.pem")
	v.SetDefault("auth.access_ttl_hours", 1)
	v.SetDefault("auth.refresh_ttl_hours", 168)
	v.SetDefault("upload.max_bytes", 5*1024*1024)
	v.SetDefault("upload.max_assets_per_user", 20)
	v.SetDefault("upload.max_uploads_per_day", 50)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                      "API_PORT",
		"api.allowed_origins":           "API_ALLOWED_ORIGINS",
		"api.login_rate_limit_per_hour": "API_LOGIN_RATE_LIMIT_PER_HOUR",
		"api.login_lock_threshold":      "API_LOGIN_LOCK_THRESHOLD",
		"api.login_lock_ttl_minutes":    "API_LOGIN_LOCK_TTL_MINUTES",
		"api.cookie_domain":             "API_COOKIE_DOMAIN",
		"api.internal_secret":           "INTERNAL_API_SECRET",
		"database.host":                 "DATABASE_HOST",
		"database.port":                 "DATABASE_PORT",
		"database.name":                 "POSTGRES_DB",
		"database.user":                 "POSTGRES_USER",
		"database.password":             "POSTGRES_PASSWORD",
		"database.sslmode":              "DATABASE_SSLMODE",
		"redis.host":                    "REDIS_HOST",
		"redis.port":                    "REDIS_PORT",
		"minio.endpoint":                "MINIO_ENDPOINT",
		"minio.public_endpoint":         "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":           "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":       "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                 "MINIO_USE_SSL",
		"minio.bucket":                  "MINIO_BUCKET",
		"minio.region":                  "MINIO_REGION",
		"minio.bucket_lookup":           "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":      "MINIO_AUTO_CREATE_BUCKET",
		"auth.private_key_path":         "JWT_PRIVATE_KEY_PATH",
		"auth.public_key_path":          "JWT_PUBLIC_KEY_PATH",
		"auth.access_ttl_hours":         "JWT_ACCESS_TTL_HOURS",
		"auth.refresh_ttl_hours":        "JWT_REFRESH_TTL_HOURS",
		"upload.clamd_addr":             "CLAMD_ADDR",
		"upload.max_bytes":              "UPLOAD_MAX_BYTES",
		"upload.max_assets_per_user":    "UPLOAD_MAX_ASSETS_PER_USER",
		"upload.max_uploads_per_day":    "UPLOAD_MAX_UPLOADS_PER_DAY",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Auth.PrivateKeyPath == "" {
		return errors.New("jwt private key path is required")
	}
	if cfg.Auth.PublicKeyPath == "" {
		return errors.New("jwt public key path is required")
	}
	if cfg.Auth.AccessTTLHours <= 0 {
		return errors.New("jwt access ttl must be positive")
	}
	if cfg.Auth.RefreshTTLHours <= 0 {
		return errors.New("jwt refresh ttl must be positive")
	}
	return nil
}
