package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env          string             `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   HTTPServerConfig   `yaml:"http_server"`
	MongoDB      MongoDBConfig      `yaml:"mongo"`
	Redis        RedisConfig        `yaml:"redis"`
	NATS         NATSConfig         `yaml:"nats"`
	Logger       LoggerConfig       `yaml:"logger"`
	JWT          JWTConfig          `yaml:"jwt"`
	GoogleOAuth  GoogleOAuthConfig  `yaml:"google_oauth"`
	Payment      PaymentConfig      `yaml:"payment"`
	Uploads      UploadsConfig      `yaml:"uploads"`
	S3           S3Config           `yaml:"s3"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	Cart         CartConfig         `yaml:"cart"`
	ProductCache ProductCacheConfig `yaml:"product_cache"`
	Negotiation  NegotiationConfig  `yaml:"negotiation"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Tracing      TracingConfig      `yaml:"tracing"`
}

// IsDevelopment reports whether internal error details may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "local" || c.Env == "development"
}

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"30s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env:"HTTP_TIMEOUT_GRACEFUL" env-default:"15s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017/?replicaSet=rs0"`
	User            string `yaml:"user" env:"MONGO_USER"`
	Password        string `yaml:"password" env:"MONGO_PASSWORD"`
	Database        string `yaml:"database" env:"MONGO_DATABASE" env-default:"marketplace_db"`
	UseTransactions bool   `yaml:"use_transactions" env:"MONGO_USE_TRANSACTIONS" env-default:"true"`

	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
	MaxPoolSize    uint64        `yaml:"max_pool_size" env:"MONGO_MAX_POOL_SIZE" env-default:"50"`
}

type RedisConfig struct {
	Addr         string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize     int           `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"20"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

type NATSConfig struct {
	URL            string        `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	Enabled        bool          `yaml:"enabled" env:"NATS_ENABLED" env-default:"true"`
	ClientName     string        `yaml:"client_name" env:"NATS_CLIENT_NAME" env-default:"marketplace-service"`
	Token          string        `yaml:"token" env:"NATS_TOKEN"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NATS_CONNECT_TIMEOUT" env-default:"5s"`
	// -1 reconnects forever
	MaxReconnects int           `yaml:"max_reconnects" env:"NATS_MAX_RECONNECTS" env-default:"-1"`
	ReconnectWait time.Duration `yaml:"reconnect_wait" env:"NATS_RECONNECT_WAIT" env-default:"2s"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
	Output     string `yaml:"output" env:"LOG_OUTPUT" env-default:"stderr"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"720h"`
	Issuer string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"marketplace-service"`
}

type GoogleOAuthConfig struct {
	ClientID     string        `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string        `yaml:"redirect_url" env:"GOOGLE_REDIRECT_URL" env-default:"http://localhost:8080/auth/google/callback"`
	FrontendURL  string        `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	StateTTL     time.Duration `yaml:"state_ttl" env:"GOOGLE_OAUTH_STATE_TTL" env-default:"10m"`
}

// Enabled reports whether Google sign-in is configured.
func (c GoogleOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type PaymentConfig struct {
	BaseURL   string        `yaml:"base_url" env:"PAYMENT_GATEWAY_URL" env-default:"https://api.razorpay.com"`
	KeyID     string        `yaml:"key_id" env:"PAYMENT_KEY_ID"`
	KeySecret string        `yaml:"key_secret" env:"PAYMENT_KEY_SECRET"`
	Currency  string        `yaml:"currency" env:"PAYMENT_CURRENCY" env-default:"INR"`
	Timeout   time.Duration `yaml:"timeout" env:"PAYMENT_TIMEOUT" env-default:"15s"`
}

type UploadsConfig struct {
	Driver       string `yaml:"driver" env:"UPLOADS_DRIVER" env-default:"local"`
	Dir          string `yaml:"dir" env:"UPLOADS_DIR" env-default:"./uploads/images"`
	PublicPrefix string `yaml:"public_prefix" env:"UPLOADS_PUBLIC_PREFIX" env-default:"/uploads/images"`
	MaxBytes     int64  `yaml:"max_bytes" env:"UPLOADS_MAX_BYTES" env-default:"5242880"`
	MaxFiles     int    `yaml:"max_files" env:"UPLOADS_MAX_FILES" env-default:"6"`
	MaxWidth     uint   `yaml:"max_width" env:"UPLOADS_MAX_WIDTH" env-default:"1200"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET" env-default:"marketplace-images"`
	UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL" env-default:"false"`
}

type SMTPConfig struct {
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	SenderEmail  string        `yaml:"sender_email" env:"SMTP_SENDER_EMAIL"`
	SenderName   string        `yaml:"sender_name" env:"SMTP_SENDER_NAME" env-default:"Marketplace"`
	Encryption   string        `yaml:"encryption" env:"SMTP_ENCRYPTION" env-default:"tls"`
	ServerName   string        `yaml:"server_name" env:"SMTP_SERVER_NAME"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SMTP_WRITE_TIMEOUT" env-default:"10s"`
}

// Enabled reports whether outgoing mail is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.SenderEmail != ""
}

type CartConfig struct {
	TTL time.Duration `yaml:"ttl" env:"CART_TTL" env-default:"168h"`
}

type ProductCacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"PRODUCT_CACHE_TTL" env-default:"5m"`
}

type NegotiationConfig struct {
	BargainTTL     time.Duration `yaml:"bargain_ttl" env:"BARGAIN_TTL" env-default:"24h"`
	ChallengeTTL   time.Duration `yaml:"challenge_ttl" env:"CHALLENGE_TTL" env-default:"168h"`
	ChallengeRatio float64       `yaml:"challenge_ratio" env:"CHALLENGE_RATIO" env-default:"0.9"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env:"NEGOTIATION_SWEEP_INTERVAL" env-default:"5m"`
}

type MetricsConfig struct {
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"9090"`
}

type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"marketplace-service"`
	// fraction of root spans kept, 0..1
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLE_RATIO" env-default:"1"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: config file not found at %s, loading from environment variables only", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
