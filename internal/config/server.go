package config

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type ServerConfig struct {
	Port        string
	CORSOrigins []string
	Production  bool
}

func NewServerConfig() *ServerConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	origins := []string{"http://localhost:5173"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = splitList(raw)
	}
	return &ServerConfig{
		Port:        port,
		CORSOrigins: origins,
		Production:  os.Getenv("APP_ENV") == "production",
	}
}

type AuthConfig struct {
	JWTKey   []byte
	TokenTTL time.Duration
}

func NewAuthConfig(logger *zap.Logger) *AuthConfig {
	key := os.Getenv("JWT_KEY")
	if key == "" {
		logger.Fatal("JWT key not set", zap.String("env", "JWT_KEY"))
	}
	return &AuthConfig{
		JWTKey:   []byte(key),
		TokenTTL: durationEnv(logger, "JWT_TTL", 24*time.Hour),
	}
}

// AdminSeed is the optional administrator created at startup.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

func NewAdminSeed() *AdminSeed {
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Administrator"
	}
	return &AdminSeed{
		Name:     name,
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
}

// MaxRetentionDays keeps the TTL in seconds within int32.
const MaxRetentionDays = math.MaxInt32 / (24 * 60 * 60)

type NotificationConfig struct {
	// RetentionDays of 0 keeps notifications forever.
	RetentionDays    int
	DispatchInterval time.Duration
}

func NewNotificationConfig(logger *zap.Logger) *NotificationConfig {
	days := 0
	if raw := os.Getenv("NOTIFICATION_RETENTION_DAYS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			logger.Fatal("Invalid NOTIFICATION_RETENTION_DAYS", zap.String("value", raw))
		}
		days = v
	}
	if days > MaxRetentionDays {
		logger.Warn("NOTIFICATION_RETENTION_DAYS capped", zap.Int("value", days), zap.Int("max", MaxRetentionDays))
		days = MaxRetentionDays
	}
	return &NotificationConfig{
		RetentionDays:    days,
		DispatchInterval: durationEnv(logger, "NOTIFICATION_DISPATCH_INTERVAL", time.Minute),
	}
}

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type StorageConfig struct {
	Driver        string
	UploadDir     string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3PublicURL   string
}

func NewStorageConfig(server *ServerConfig, logger *zap.Logger) *StorageConfig {
	cfg := &StorageConfig{
		Driver:        os.Getenv("STORAGE_DRIVER"),
		UploadDir:     os.Getenv("UPLOAD_DIR"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      os.Getenv("S3_REGION"),
		S3PublicURL:   os.Getenv("S3_PUBLIC_URL"),
	}
	if cfg.Driver == "" {
		cfg.Driver = StorageDriverLocal
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + server.Port
	}
	if cfg.Driver == StorageDriverS3 && (cfg.S3Bucket == "" || cfg.S3Region == "") {
		logger.Fatal("Missing Environment variables", zap.Strings("required", []string{"S3_BUCKET", "S3_REGION"}))
	}
	if cfg.S3PublicURL == "" && cfg.S3Bucket != "" {
		cfg.S3PublicURL = "https://" + cfg.S3Bucket + ".s3." + cfg.S3Region + ".amazonaws.com"
	}
	return cfg
}

func durationEnv(logger *zap.Logger, name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Fatal("Invalid duration", zap.String("env", name), zap.String("value", raw))
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
