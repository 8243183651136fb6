package config

import "strings"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	Database  Database  `envPrefix:"DATABASE_"`
	Firebase  Firebase  `envPrefix:"FIREBASE_"`
	Auth      Auth      `envPrefix:"AUTH_"`
	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
	SMTP      SMTP      `envPrefix:"EMAIL_"`
	Kafka     Kafka     `envPrefix:"KAFKA_"`
	Storage   Storage   `envPrefix:"STORAGE_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return strings.EqualFold(e.Name, "production")
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host       string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port       string `env:"HTTP_PORT" envDefault:"3000"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	BodyLimit  string `env:"HTTP_BODY_LIMIT" envDefault:"10M"`
	// requests per RateWindowMinutes per client IP, 0 disables limiting
	RateLimit         int `env:"RATE_LIMIT" envDefault:"100"`
	RateWindowMinutes int `env:"RATE_LIMIT_WINDOW_MINUTES" envDefault:"15"`
}

type Database struct {
	// mysql, postgres, sqlite or firestore
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	URL    string `env:"URL" envDefault:"streamaccts.db"`
}

type Firebase struct {
	ProjectID     string `env:"PROJECT_ID"`
	ClientEmail   string `env:"CLIENT_EMAIL"`
	PrivateKey    string `env:"PRIVATE_KEY"`
	StorageBucket string `env:"STORAGE_BUCKET"`
}

// Enabled reports whether a full service account is configured.
func (f Firebase) Enabled() bool {
	return f.ProjectID != "" && f.ClientEmail != "" && f.PrivateKey != ""
}

// Bucket falls back to the default Firebase bucket name for the project.
func (f Firebase) Bucket() string {
	if f.StorageBucket != "" {
		return f.StorageBucket
	}
	if f.ProjectID == "" {
		return ""
	}
	return f.ProjectID + ".firebasestorage.app"
}

type Auth struct {
	// HS256 secret for locally issued tokens when Firebase is not configured.
	// Demo mode refuses to start without it and is never allowed in production.
	DevJWTSecret string `env:"DEV_JWT_SECRET"`
}

type Stripe struct {
	SecretKey string `env:"SECRET_KEY"`
	Currency  string `env:"CURRENCY" envDefault:"usd"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Currency     string `env:"CURRENCY" envDefault:"USD"`
}

func (p Paypal) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

func (b Braintree) Enabled() bool {
	return b.MerchantID != "" && b.PublicKey != "" && b.PrivateKey != ""
}

type SMTP struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

func (s SMTP) Enabled() bool {
	return s.User != "" && s.Password != ""
}

// Sender defaults to the SMTP login, like most hosted mailboxes require.
func (s SMTP) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.User
}

type Kafka struct {
	Brokers     []string `env:"BROKERS" envSeparator:","`
	TopicPrefix string   `env:"TOPIC_PREFIX" envDefault:"streamaccts"`
}

type Storage struct {
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`
}
