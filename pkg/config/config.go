package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOCKROOM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STOCKROOM_DB_DSN"
	EnvDBHost = "STOCKROOM_DB_HOST"
	EnvDBUser = "STOCKROOM_DB_USER"
	EnvDBName = "STOCKROOM_DB_NAME"
)

// Backend kinds recognized by the storage layer.
const (
	BackendMemory   = "memory"
	BackendLocal    = "local"
	BackendDocstore = "docstore"
	BackendSQL      = "sql"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Local    LocalStoreConfig
	JWT      JWTConfig
	Password PasswordConfig
	Admin    AdminConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Storage.Backend == BackendSQL {
		if err := cfg.DB.EnsureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKROOM_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOCKROOM_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOCKROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the active backend and bounds external operations.
type StorageConfig struct {
	Backend   string        `envconfig:"STOCKROOM_STORAGE_BACKEND" default:"memory"`
	OpTimeout time.Duration `envconfig:"STOCKROOM_STORAGE_OP_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	DSN string `envconfig:"STOCKROOM_DB_DSN"`

	Host     string `envconfig:"STOCKROOM_DB_HOST"`
	Port     int    `envconfig:"STOCKROOM_DB_PORT" default:"5432"`
	User     string `envconfig:"STOCKROOM_DB_USER"`
	Password string `envconfig:"STOCKROOM_DB_PASSWORD"`
	Name     string `envconfig:"STOCKROOM_DB_NAME"`
	SSLMode  string `envconfig:"STOCKROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"STOCKROOM_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKROOM_REDIS_URL"`
	Address      string        `envconfig:"STOCKROOM_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKROOM_REDIS_DB" default:"0"`
	DBName       string        `envconfig:"STOCKROOM_DOCSTORE_DB_NAME" default:"stockroom"`
	PoolSize     int           `envconfig:"STOCKROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// LocalStoreConfig names the embedded snapshot database and its slots.
type LocalStoreConfig struct {
	Path       string `envconfig:"STOCKROOM_LOCAL_PATH" default:"stockroom.db"`
	SlotPrefix string `envconfig:"STOCKROOM_LOCAL_SLOT_PREFIX" default:"stockroom_"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKROOM_JWT_SECRET"`
	Issuer            string `envconfig:"STOCKROOM_JWT_ISSUER" default:"stockroom"`
	ExpirationMinutes int    `envconfig:"STOCKROOM_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKROOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKROOM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKROOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKROOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKROOM_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig carries the single mock-login credential for the console.
type AdminConfig struct {
	Email    string `envconfig:"STOCKROOM_ADMIN_EMAIL" default:"admin@stockroom.local"`
	Password string `envconfig:"STOCKROOM_ADMIN_PASSWORD" default:"admin123"`
}

func (db *DBConfig) EnsureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range []string{EnvDBHost, EnvDBUser, EnvDBName} {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
