package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"KinderTube/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

type Config struct {
	Port     string
	LogLevel string
	GinMode  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBTimeZone string

	MigrationsPath string

	JWTSecret string
	JWTTTL    time.Duration

	FirebaseCredentialsPath string

	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	EmailFrom    string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	SESEndpoint        string
	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string

	CORSOrigin string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		GinMode:  getEnv("GIN_MODE", "debug"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "kindertube"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),
		DBTimeZone: getEnv("DB_TIMEZONE", "UTC"),

		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),

		EmailFrom:    os.Getenv("EMAIL_FROM"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		SESEndpoint:        os.Getenv("SES_ENDPOINT"),
		SESRegion:          getEnv("SES_REGION", "us-east-1"),
		SESAccessKeyID:     os.Getenv("SES_ACCESS_KEY_ID"),
		SESSecretAccessKey: os.Getenv("SES_SECRET_ACCESS_KEY"),

		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
	}

	// Используем значение из DB_SSLMODE или "require" для Render
	if cfg.DBSSLMode == "" {
		if strings.Contains(cfg.DBHost, "render.com") {
			cfg.DBSSLMode = "require"
		} else {
			cfg.DBSSLMode = "disable"
		}
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.JWTTTL = ttl

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone)
}

func (c *Config) StorageConfigured() bool {
	return c.S3Bucket != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// InitDatabase connects to Postgres and prepares the schema: SQL migrations when
// MIGRATIONS_PATH is set, AutoMigrate otherwise.
func InitDatabase(cfg *Config, log *logrus.Logger) error {
	log.WithFields(logrus.Fields{
		"host":    cfg.DBHost,
		"user":    cfg.DBUser,
		"dbname":  cfg.DBName,
		"port":    cfg.DBPort,
		"sslmode": cfg.DBSSLMode,
	}).Info("Connecting to database")

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	DB = db
	log.Info("Successfully connected to database")

	if cfg.MigrationsPath != "" {
		return RunMigrations(db, cfg.MigrationsPath, log)
	}

	return DB.AutoMigrate(
		&models.Parent{},
		&models.ChildProfile{},
		&models.VideoRequest{},
		&models.SearchEntry{},
		&models.WatchEntry{},
		&models.Video{},
		&models.VideoLike{},
		&models.VideoComment{},
	)
}

func RunMigrations(db *gorm.DB, migrationsPath string, log *logrus.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// InitMessaging returns an FCM client, nil when no credentials are configured.
func InitMessaging(ctx context.Context, cfg *Config) (*messaging.Client, error) {
	if cfg.FirebaseCredentialsPath == "" {
		return nil, nil
	}

	opt := option.WithCredentialsFile(cfg.FirebaseCredentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing FCM client: %w", err)
	}
	return client, nil
}
