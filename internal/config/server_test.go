package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewServerConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("APP_ENV", "")

	cfg := NewServerConfig()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.False(t, cfg.Production)
}

func TestNewServerConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("APP_ENV", "production")

	cfg := NewServerConfig()
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.True(t, cfg.Production)
}

func TestNewNotificationConfig(t *testing.T) {
	t.Setenv("NOTIFICATION_RETENTION_DAYS", "30")
	t.Setenv("NOTIFICATION_DISPATCH_INTERVAL", "15s")

	cfg := NewNotificationConfig(zap.NewNop())
	require.Equal(t, 30, cfg.RetentionDays)
	require.Equal(t, 15*time.Second, cfg.DispatchInterval)
}

func TestNewNotificationConfigCapsRetention(t *testing.T) {
	t.Setenv("NOTIFICATION_RETENTION_DAYS", "100000")
	t.Setenv("NOTIFICATION_DISPATCH_INTERVAL", "")

	cfg := NewNotificationConfig(zap.NewNop())
	require.Equal(t, MaxRetentionDays, cfg.RetentionDays)
	require.Positive(t, int32(cfg.RetentionDays*24*60*60))
}

func TestNewStorageConfigDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("UPLOAD_DIR", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("S3_BUCKET", "")

	cfg := NewStorageConfig(&ServerConfig{Port: "8081"}, zap.NewNop())
	require.Equal(t, StorageDriverLocal, cfg.Driver)
	require.Equal(t, "uploads", cfg.UploadDir)
	require.Equal(t, "http://localhost:8081", cfg.PublicBaseURL)
	require.Empty(t, cfg.S3PublicURL)
}

func TestNewEmailConfigDisabledByDefault(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "")
	cfg := NewEmailConfig(zap.NewNop())
	require.Equal(t, EmailProviderNone, cfg.Provider)
	require.Equal(t, 587, cfg.SMTPPort)
}
