package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	APIPort string
	Origin  string

	JWTKey []byte
	JWTExp time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TwoFactorEnabled bool
	TwoFactorTTL     time.Duration
	ResetTokenTTL    time.Duration

	AdminAccessKey string

	UploadDir string

	ReminderInterval time.Duration
	ReminderAfter    time.Duration

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string
	BaseURL  string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		Env:     getEnv("APP_ENV", "dev"),
		APIPort: getEnv("API_PORT", "8080"),
		Origin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),

		JWTKey: []byte(getEnv("JWT_SECRET", "defaultsecret")),
		// Session tokens live exactly one hour; there is no refresh path.
		JWTExp: time.Duration(getEnvAsInt("JWT_EXPIRATION_MINUTES", 60)) * time.Minute,

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "ssemi"),
		DBPassword: getEnv("DB_PASSWORD", "ssemi"),
		DBName:     getEnv("DB_NAME", "ssemi_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		TwoFactorEnabled: getEnvAsBool("TWO_FACTOR_ENABLED", true),
		TwoFactorTTL:     time.Duration(getEnvAsInt("TWO_FACTOR_TTL_MINUTES", 5)) * time.Minute,
		ResetTokenTTL:    time.Duration(getEnvAsInt("RESET_TOKEN_TTL_MINUTES", 60)) * time.Minute,

		AdminAccessKey: getEnv("ACCESS_KEY_ADMIN", "miclaveespecial123"),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		ReminderInterval: time.Duration(getEnvAsInt("REMINDER_INTERVAL_MINUTES", 30)) * time.Minute,
		ReminderAfter:    time.Duration(getEnvAsInt("REMINDER_AFTER_DAYS", 3)) * 24 * time.Hour,

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "no-reply@ssemi.com"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
