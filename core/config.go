package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	apiConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	storageConfig struct {
		Driver   string // memory (default) | file | redis | database
		FilePath string
		Prefix   string
	}

	redisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	dbConfig struct {
		Engine     string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}

	sandboxConfig struct {
		Address         string
		ShutdownTimeout time.Duration
	}

	Config struct {
		Env          string // DEV (default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		LogLevel     string
		RollbarToken string
		WorkDir      string

		API      apiConfig
		Storage  storageConfig
		Redis    redisConfig
		Database dbConfig
		Sandbox  sandboxConfig
	}
)

func (c dbConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the client configuration from the environment.
// `config/.env.<env>` is loaded first when it exists.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Masomo")
	v.SetDefault("log.level", "info")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("api.baseURL", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("storage.driver", "") // each app picks its own
	v.SetDefault("storage.filePath", "")
	v.SetDefault("storage.prefix", "masomo")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "masomo_client")
	v.SetDefault("database.disableTLS", env == "DEV" || env == "TEST")
	v.SetDefault("sandbox.address", ":8000")
	v.SetDefault("sandbox.shutdownTimeout", 5*time.Second)

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	// api.baseURL -> <ENV>_API_BASEURL
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     env == "TEST",
		AppName:      v.GetString("appName"),
		LogLevel:     v.GetString("log.level"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		API: apiConfig{
			BaseURL: strings.TrimSuffix(v.GetString("api.baseURL"), "/"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Storage: storageConfig{
			Driver:   strings.ToLower(v.GetString("storage.driver")),
			FilePath: v.GetString("storage.filePath"),
			Prefix:   v.GetString("storage.prefix"),
		},
		Redis: redisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: dbConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Name:       v.GetString("database.name"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Sandbox: sandboxConfig{
			Address:         v.GetString("sandbox.address"),
			ShutdownTimeout: v.GetDuration("sandbox.shutdownTimeout"),
		},
	}
}
