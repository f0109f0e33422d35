package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Tax           TaxConfig
	Razorpay      RazorpayConfig
	Cloudinary    CloudinaryConfig
	OneSignal     OneSignalConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REBOOTMART_APP_ENV" required:"true"`
	Port         string `envconfig:"REBOOTMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REBOOTMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REBOOTMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REBOOTMART_DB_DSN"`
	Driver string `envconfig:"REBOOTMART_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"REBOOTMART_DB_HOST"`
	Port     int    `envconfig:"REBOOTMART_DB_PORT" default:"5432"`
	User     string `envconfig:"REBOOTMART_DB_USER"`
	Password string `envconfig:"REBOOTMART_DB_PASSWORD"`
	Name     string `envconfig:"REBOOTMART_DB_NAME"`
	SSLMode  string `envconfig:"REBOOTMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REBOOTMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REBOOTMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REBOOTMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REBOOTMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REBOOTMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REBOOTMART_REDIS_ADDR"`
	Password     string        `envconfig:"REBOOTMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"REBOOTMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REBOOTMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REBOOTMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REBOOTMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REBOOTMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REBOOTMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"REBOOTMART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"REBOOTMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"REBOOTMART_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"REBOOTMART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REBOOTMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REBOOTMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REBOOTMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REBOOTMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REBOOTMART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"REBOOTMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"REBOOTMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"REBOOTMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"REBOOTMART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"REBOOTMART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"REBOOTMART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"REBOOTMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"REBOOTMART_AUTO_MIGRATE" default:"false"`
}

type TaxConfig struct {
	// GST rate in basis points, 1800 = 18%.
	RateBps int `envconfig:"REBOOTMART_TAX_RATE_BPS" default:"1800"`
}

type RazorpayConfig struct {
	KeyID         string        `envconfig:"REBOOTMART_RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string        `envconfig:"REBOOTMART_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"REBOOTMART_RAZORPAY_WEBHOOK_SECRET" required:"true"`
	BaseURL       string        `envconfig:"REBOOTMART_RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	CheckoutURL   string        `envconfig:"REBOOTMART_RAZORPAY_CHECKOUT_URL" default:"https://api.razorpay.com/v1/checkout/embedded"`
	CallbackURL   string        `envconfig:"REBOOTMART_RAZORPAY_CALLBACK_URL"`
	Timeout       time.Duration `envconfig:"REBOOTMART_RAZORPAY_TIMEOUT" default:"15s"`
}

type CloudinaryConfig struct {
	CloudName string        `envconfig:"REBOOTMART_CLOUDINARY_CLOUD_NAME" required:"true"`
	APIKey    string        `envconfig:"REBOOTMART_CLOUDINARY_API_KEY" required:"true"`
	APISecret string        `envconfig:"REBOOTMART_CLOUDINARY_API_SECRET" required:"true"`
	Folder    string        `envconfig:"REBOOTMART_CLOUDINARY_FOLDER" default:"rebootmart/products"`
	Timeout   time.Duration `envconfig:"REBOOTMART_CLOUDINARY_TIMEOUT" default:"30s"`
	MaxMB     int           `envconfig:"REBOOTMART_CLOUDINARY_MAX_MB" default:"10"`
}

type OneSignalConfig struct {
	AppID   string        `envconfig:"REBOOTMART_ONESIGNAL_APP_ID" required:"true"`
	APIKey  string        `envconfig:"REBOOTMART_ONESIGNAL_API_KEY" required:"true"`
	BaseURL string        `envconfig:"REBOOTMART_ONESIGNAL_BASE_URL" default:"https://onesignal.com/api/v1"`
	Timeout time.Duration `envconfig:"REBOOTMART_ONESIGNAL_TIMEOUT" default:"15s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
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
