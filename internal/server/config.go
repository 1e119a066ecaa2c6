package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Addr          string        `json:"addr"`
	Port          int           `json:"port"`
	DBStr         string        `json:"dbstr"`
	MigratePath   string        `json:"migratePath"`
	AccessSecret  string        `json:"accessSecret"`
	RefreshSecret string        `json:"refreshSecret"`
	AccessExpiry  time.Duration `json:"-"`
	RefreshExpiry time.Duration `json:"-"`
	CORSOrigin    string        `json:"corsOrigin"`
	Environment   string        `json:"environment"`
}

const (
	defaultAddr          = "0.0.0.0"
	defaultPort          = 8080
	defaultDBStr         = "postgresql://taskapp:taskapp@db:5432/tasks?sslmode=disable"
	defaultMigratePath   = "migrations"
	defaultAccessExpiry  = time.Hour
	defaultRefreshExpiry = 7 * 24 * time.Hour
	defaultCORSOrigin    = "*"
	defaultEnvironment   = EnvDevelopment
)

var (
	addr        = flag.String("addr", defaultAddr, "server listen address")
	port        = flag.Int("port", defaultPort, "server listen port")
	dbstr       = flag.String("dbstr", defaultDBStr, "database connection string")
	dbDsn       = flag.String("dbdsn", "", "database DSN (takes precedence over dbstr)")
	migratePath = flag.String("migratepath", defaultMigratePath, "path to the migrations directory")
	corsOrigin  = flag.String("cors-origin", "", "allowed CORS origin")
	environment = flag.String("env", "", "runtime environment: development or production")
	configFile  = flag.String("c", "", "path to a JSON configuration file")
	parsed      = false
)

// ReadConfig layers configuration sources: defaults, then the JSON
// file, then environment variables, then flags.
func ReadConfig() *Config {
	if !parsed {
		flag.Parse()
		parsed = true
	}

	cfg := &Config{
		Addr:          defaultAddr,
		Port:          defaultPort,
		DBStr:         defaultDBStr,
		MigratePath:   defaultMigratePath,
		AccessExpiry:  defaultAccessExpiry,
		RefreshExpiry: defaultRefreshExpiry,
		CORSOrigin:    defaultCORSOrigin,
		Environment:   defaultEnvironment,
	}

	if jsonConfig := loadJSONConfig(); jsonConfig != nil {
		mergeJSONConfig(cfg, jsonConfig)
	}

	applyEnvOverrides(cfg)
	applyFlagOverrides(cfg)

	return cfg
}

func loadJSONConfig() *Config {
	configPath := *configFile
	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}

	if configPath == "" {
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Warnf("failed to read config file %s: %v", configPath, err)
		return nil
	}

	var jsonConfig Config
	if err := json.Unmarshal(data, &jsonConfig); err != nil {
		log.Warnf("failed to parse config file %s: %v", configPath, err)
		return nil
	}

	log.Infof("loaded configuration from %s", configPath)
	return &jsonConfig
}

func mergeJSONConfig(cfg, jsonConfig *Config) {
	if jsonConfig.Addr != "" {
		cfg.Addr = jsonConfig.Addr
	}
	if jsonConfig.Port != 0 {
		cfg.Port = jsonConfig.Port
	}
	if jsonConfig.DBStr != "" {
		cfg.DBStr = jsonConfig.DBStr
	}
	if jsonConfig.MigratePath != "" {
		cfg.MigratePath = jsonConfig.MigratePath
	}
	if jsonConfig.AccessSecret != "" {
		cfg.AccessSecret = jsonConfig.AccessSecret
	}
	if jsonConfig.RefreshSecret != "" {
		cfg.RefreshSecret = jsonConfig.RefreshSecret
	}
	if jsonConfig.CORSOrigin != "" {
		cfg.CORSOrigin = jsonConfig.CORSOrigin
	}
	if jsonConfig.Environment != "" {
		cfg.Environment = jsonConfig.Environment
	}
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err != nil {
			log.Warnf("invalid PORT value: %s", port)
		} else if p < 1 || p > 65535 {
			log.Warnf("PORT must be between 1 and 65535, got %d", p)
		} else {
			cfg.Port = p
		}
	}
	if dbStr := os.Getenv("DB_STR"); dbStr != "" {
		cfg.DBStr = dbStr
	}
	if migratePath := os.Getenv("MIGRATE_PATH"); migratePath != "" {
		cfg.MigratePath = migratePath
	}
	if secret := os.Getenv("ACCESS_TOKEN_SECRET"); secret != "" {
		cfg.AccessSecret = secret
	}
	if secret := os.Getenv("REFRESH_TOKEN_SECRET"); secret != "" {
		cfg.RefreshSecret = secret
	}
	if expiry := os.Getenv("ACCESS_TOKEN_EXPIRY"); expiry != "" {
		if d, err := time.ParseDuration(expiry); err != nil {
			log.Warnf("invalid ACCESS_TOKEN_EXPIRY value: %s", expiry)
		} else {
			cfg.AccessExpiry = d
		}
	}
	if expiry := os.Getenv("REFRESH_TOKEN_EXPIRY"); expiry != "" {
		if d, err := time.ParseDuration(expiry); err != nil {
			log.Warnf("invalid REFRESH_TOKEN_EXPIRY value: %s", expiry)
		} else {
			cfg.RefreshExpiry = d
		}
	}
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		cfg.CORSOrigin = origin
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Environment = env
	}

	if cfg.DBStr == defaultDBStr {
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")
		dbHost := os.Getenv("DB_HOST")
		dbPort := os.Getenv("DB_PORT")
		if dbUser != "" && dbPassword != "" && dbName != "" && dbHost != "" && dbPort != "" {
			cfg.DBStr = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)
		}
	}
}

func applyFlagOverrides(cfg *Config) {
	if *addr != defaultAddr {
		cfg.Addr = *addr
	}
	if *port != defaultPort {
		cfg.Port = *port
	}
	if *migratePath != defaultMigratePath {
		cfg.MigratePath = *migratePath
	}
	if *corsOrigin != "" {
		cfg.CORSOrigin = *corsOrigin
	}
	if *environment != "" {
		cfg.Environment = *environment
	}

	if *dbDsn != "" {
		cfg.DBStr = *dbDsn
	} else if *dbstr != defaultDBStr {
		cfg.DBStr = *dbstr
	}
}
