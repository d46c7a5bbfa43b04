package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Tipos de almacenamiento soportados para el estado del diseñador
const (
	StorageTypeFile     = "file"
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// Config representa la configuración del servicio
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Inngest  InngestConfig
	Logging  LoggingConfig
	Email    EmailConfig
	Storage  StorageConfig
	Supabase SupabaseConfig
	Designer DesignerConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig representa la configuración de la base de datos
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Table    string
}

// RedisConfig representa la configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// InngestConfig representa la configuración de Inngest
type InngestConfig struct {
	EventKey   string
	SigningKey string
	AppID      string
	Dev        bool
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// EmailConfig representa la configuración de email
type EmailConfig struct {
	ResendAPIKey string
	From         string
}

// StorageConfig define dónde se persisten la configuración activa y los presets
type StorageConfig struct {
	Type      string
	Path      string
	KeyPrefix string
}

// SupabaseConfig representa la configuración del bucket de exportaciones
type SupabaseConfig struct {
	StorageEndpoint string
	StorageRegion   string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

// DesignerConfig agrupa los parámetros del diseñador de plantillas
type DesignerConfig struct {
	Currency    string
	DefaultZoom string
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// El archivo .env es opcional
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8082"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Env:          getEnv("SERVER_ENV", "development"),
			BaseURL:      getEnv("SERVER_BASE_URL", "http://localhost:8082"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Name:     getEnv("PGDATABASE", "invoice_designer"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Table:    getEnv("DB_STATE_TABLE", "designer_state"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Inngest: InngestConfig{
			EventKey:   getEnv("INNGEST_EVENT_KEY", ""),
			SigningKey: getEnv("INNGEST_SIGNING_KEY", ""),
			AppID:      getEnv("INNGEST_APP_ID", "invoice-designer"),
			Dev:        getEnvAsBool("INNGEST_DEV", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "onboarding@resend.dev"),
		},
		Storage: StorageConfig{
			Type:      strings.ToLower(getEnv("STORAGE_TYPE", StorageTypeFile)),
			Path:      getEnv("STORAGE_PATH", "./storage"),
			KeyPrefix: getEnv("STORAGE_KEY_PREFIX", ""),
		},
		Supabase: SupabaseConfig{
			StorageEndpoint: getEnv("SUPABASE_STORAGE_ENDPOINT", ""),
			StorageRegion:   getEnv("SUPABASE_STORAGE_REGION", ""),
			AccessKeyID:     getEnv("SUPABASE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("SUPABASE_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("SUPABASE_EXPORT_BUCKET", "invoice-exports"),
			PublicURL:       getEnv("SUPABASE_PUBLIC_URL", ""),
		},
		Designer: DesignerConfig{
			Currency:    getEnv("DESIGNER_CURRENCY", "$"),
			DefaultZoom: getEnv("DESIGNER_DEFAULT_ZOOM", "75"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica los valores que no admiten fallback silencioso
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageTypeFile, StorageTypeMemory, StorageTypeRedis, StorageTypePostgres:
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be one of file, memory, redis, postgres", c.Storage.Type)
	}

	switch c.Designer.DefaultZoom {
	case "50", "75", "100", "fit", "fill":
	default:
		return fmt.Errorf("invalid DESIGNER_DEFAULT_ZOOM %q", c.Designer.DefaultZoom)
	}

	if strings.TrimSpace(c.Designer.Currency) == "" {
		return fmt.Errorf("DESIGNER_CURRENCY must not be empty")
	}

	return nil
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool obtiene una variable de entorno como booleano
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction retorna true si el entorno es de producción
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// HasSupabase indica si hay credenciales para el bucket de exportaciones
func (c *Config) HasSupabase() bool {
	return c.Supabase.StorageEndpoint != "" && c.Supabase.AccessKeyID != "" && c.Supabase.SecretAccessKey != ""
}

// GetDSN retorna la cadena de conexión a la base de datos
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}
