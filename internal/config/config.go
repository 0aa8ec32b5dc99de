package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envEnableProfiling       = "ENABLE_PROFILING"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envJWTSecret             = "JWT_SECRET"
	envJWTRefreshSecret      = "JWT_REFRESH_SECRET"
	envJWTExpiresIn          = "JWT_EXPIRES_IN"
	envJWTRefreshExpiresIn   = "JWT_REFRESH_EXPIRES_IN"
	envTokenSweepSchedule    = "TOKEN_SWEEP_SCHEDULE"
	envRedisURL              = "REDIS_URL"
	envRoleCacheTTL          = "ROLE_CACHE_TTL"
	envRoleCacheSize         = "ROLE_CACHE_SIZE"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envExportBucket          = "EXPORT_BUCKET"
	envExportURLExpiry       = "EXPORT_URL_EXPIRY"
	envS3Endpoint            = "S3_ENDPOINT"
	envPaginationPageSize    = "PAGINATION_PAGE_SIZE"
)

const (
	defaultServerPort         = "8080"
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 10 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBName             = "projecthub"
	defaultDBUser             = "projecthub_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 25
	defaultDBMinConns         = 5
	defaultAccessTTL          = 15 * time.Minute
	defaultRefreshTTL         = 7 * 24 * time.Hour
	defaultSweepSchedule      = "@hourly"
	defaultRoleCacheTTL       = 5 * time.Minute
	defaultRoleCacheSize      = 256
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
	defaultExportURLExpiry    = 15 * time.Minute
	defaultPageSize           = 20
	maxPageSize               = 100
	minJWTSecretLength        = 32
	minUniqueCharsInSecret    = 16
	minRepeatedCharThreshold  = 4
	maxRepeatedChars          = 2

	errPortRequired          = "PORT must be set"
	errDBPasswordRequired    = "DB_PASSWORD must be set"
	errSecretMinLengthFmt    = "%s must be at least %d characters"
	errSecretLowEntropyFmt   = "%s has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errSecretsMustDiffer     = "JWT_SECRET and JWT_REFRESH_SECRET must differ"
	errTTLPositiveFmt        = "%s must be positive"
	errRefreshShorterFmt     = "JWT_REFRESH_EXPIRES_IN (%s) must be longer than JWT_EXPIRES_IN (%s)"
	errPageSizeRangeFmt      = "PAGINATION_PAGE_SIZE must be between 1 and %d"
	errRoleCacheSizeFmt      = "ROLE_CACHE_SIZE must be positive"
	errExportRegionRequired  = "REGION must be set when EXPORT_BUCKET is configured"
	errInvalidConfigurationF = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Cache    CacheConfig
	Log      LogConfig
	AWS      AWSConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// ProfilingEnabled exposes /debug/pprof and /debug/memory.
	ProfilingEnabled bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SweepSchedule string
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
	Size     int
}

type LogConfig struct {
	Level  string
	Format string
}

// AWSConfig is optional. Activity export is disabled when ExportBucket is empty.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ExportBucket    string
	ExportURLExpiry time.Duration

	// Endpoint points at an S3-compatible store instead of AWS when set.
	Endpoint string
}

type AppConfig struct {
	PageSize int
}

// ExportEnabled reports whether activity export has somewhere to write.
func (a AWSConfig) ExportEnabled() bool {
	return a.ExportBucket != ""
}

func Load() (*Config, error) {
	var missing missingEnv
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),

			ProfilingEnabled: getBoolEnv(envEnableProfiling),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: missing.require(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		JWT: JWTConfig{
			AccessSecret:  missing.require(envJWTSecret),
			RefreshSecret: missing.require(envJWTRefreshSecret),
			AccessTTL:     getDurationEnv(envJWTExpiresIn, defaultAccessTTL),
			RefreshTTL:    getDurationEnv(envJWTRefreshExpiresIn, defaultRefreshTTL),
			SweepSchedule: getEnv(envTokenSweepSchedule, defaultSweepSchedule),
		},
		Cache: CacheConfig{
			RedisURL: getEnv(envRedisURL, ""),
			TTL:      getDurationEnv(envRoleCacheTTL, defaultRoleCacheTTL),
			Size:     getIntEnv(envRoleCacheSize, defaultRoleCacheSize),
		},
		Log: LogConfig{
			Level:  getEnv(envLogLevel, defaultLogLevel),
			Format: getEnv(envLogFormat, defaultLogFormat),
		},
		AWS: AWSConfig{
			Region:          getEnv(envAWSRegion, ""),
			AccessKeyID:     getEnv(envAWSAccessKeyID, ""),
			SecretAccessKey: getEnv(envAWSSecretAccessKey, ""),
			ExportBucket:    getEnv(envExportBucket, ""),
			ExportURLExpiry: getDurationEnv(envExportURLExpiry, defaultExportURLExpiry),
			Endpoint:        getEnv(envS3Endpoint, ""),
		},
		App: AppConfig{
			PageSize: getIntEnv(envPaginationPageSize, defaultPageSize),
		},
	}

	if err := missing.err(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationF, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationF, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New(errPortRequired)
	}

	if c.Database.Password == "" {
		return errors.New(errDBPasswordRequired)
	}

	if err := validateSecret(envJWTSecret, c.JWT.AccessSecret); err != nil {
		return err
	}
	if err := validateSecret(envJWTRefreshSecret, c.JWT.RefreshSecret); err != nil {
		return err
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New(errSecretsMustDiffer)
	}

	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf(errTTLPositiveFmt, envJWTExpiresIn)
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return fmt.Errorf(errRefreshShorterFmt, c.JWT.RefreshTTL, c.JWT.AccessTTL)
	}

	if c.App.PageSize < 1 || c.App.PageSize > maxPageSize {
		return fmt.Errorf(errPageSizeRangeFmt, maxPageSize)
	}

	if c.Cache.Size <= 0 {
		return errors.New(errRoleCacheSizeFmt)
	}

	if c.AWS.ExportEnabled() && c.AWS.Region == "" {
		return errors.New(errExportRegionRequired)
	}

	return nil
}

func validateSecret(name, secret string) error {
	if len(secret) < minJWTSecretLength {
		return fmt.Errorf(errSecretMinLengthFmt, name, minJWTSecretLength)
	}
	if !hasMinimumEntropy(secret) {
		return fmt.Errorf(errSecretLowEntropyFmt, name)
	}
	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getBoolEnv accepts true, 1 and yes in any case.
func getBoolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
