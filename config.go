package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Catalog storage backend names.
const (
	FileBackend  = "file"
	BoltBackend  = "bolt"
	RedisBackend = "redis"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"DLIB_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"DLIB_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"DLIB_BUILD_TIME"`
	IsProduction       bool          `yaml:"is_production" envconfig:"DLIB_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"DLIB_LOG_LEVEL"`
	LogFile            string        `yaml:"log_file" envconfig:"DLIB_LOG_FILE"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"DLIB_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" envconfig:"DLIB_PROFILER_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Auth               AuthConfig    `yaml:"auth"`
	Storage            StorageConfig `yaml:"storage"`
	BoltDB             BoltDBConfig  `yaml:"boltdb"`
	Redis              RedisConfig   `yaml:"redis"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"DLIB_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"DLIB_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"DLIB_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"DLIB_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"DLIB_SERVER_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"DLIB_SERVER_SHUTDOWN_TIMEOUT"`
	TemplatesDir    string        `yaml:"templates_dir" envconfig:"DLIB_SERVER_TEMPLATES_DIR"`
	StaticDir       string        `yaml:"static_dir" envconfig:"DLIB_SERVER_STATIC_DIR"`
}

// AuthConfig holds the token issuance settings. The signing secret must
// come from the configuration file or the environment, never from code.
type AuthConfig struct {
	Secret    string        `yaml:"secret" envconfig:"DLIB_AUTH_SECRET" json:"-"`
	TokenTTL  time.Duration `yaml:"token_ttl" envconfig:"DLIB_AUTH_TOKEN_TTL"`
	UsersFile string        `yaml:"users_file" envconfig:"DLIB_AUTH_USERS_FILE"`
}

// StorageConfig selects the catalog backend and locates the default
// file-based catalog document.
type StorageConfig struct {
	Backend     string `yaml:"backend" envconfig:"DLIB_STORAGE_BACKEND"`
	CatalogFile string `yaml:"catalog_file" envconfig:"DLIB_STORAGE_CATALOG_FILE"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"DLIB_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"DLIB_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"DLIB_BOLTDB_BUCKET_NAME"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"DLIB_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"DLIB_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"DLIB_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"DLIB_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"DLIB_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"DLIB_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"DLIB_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"DLIB_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"DLIB_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"DLIB_REDIS_DATABASE_INDEX"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Auth.Secret) == 0 {
		return errors.New("make sure to set the token signing secret in configuration file or environment")
	}

	if config.Auth.TokenTTL <= 0 {
		config.Auth.TokenTTL = 1440 * time.Minute
	}

	if len(config.Auth.UsersFile) == 0 {
		config.Auth.UsersFile = "users.json"
	}

	switch config.Storage.Backend {
	case FileBackend, BoltBackend, RedisBackend:
	case "":
		config.Storage.Backend = FileBackend
	default:
		return fmt.Errorf("unknown catalog storage backend: %s", config.Storage.Backend)
	}

	if len(config.Storage.CatalogFile) == 0 {
		config.Storage.CatalogFile = "library.json"
	}

	if config.Storage.Backend == RedisBackend && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if config.Storage.Backend == BoltBackend && len(config.BoltDB.FilePath) == 0 {
		return errors.New("make sure to set valid boltdb file path in configuration file")
	}

	if len(config.Server.TemplatesDir) == 0 {
		config.Server.TemplatesDir = "templates"
	}

	if len(config.Server.StaticDir) == 0 {
		config.Server.StaticDir = "static"
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration. The env file is optional
	// so a missing one does not abort the startup.
	if err = godotenv.Load("./config.env"); err != nil && !os.IsNotExist(err) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `DLIB`.
	err = LoadConfigEnvs("DLIB", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
