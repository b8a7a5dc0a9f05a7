package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_ENV_PATH", t.TempDir()+"/absent.env")
	t.Setenv("DB_USER", "studio")
	t.Setenv("DB_NAME", "studio")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GENAI_API_KEY", "key")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("GENERATION_COST", "")
	t.Setenv("INITIAL_CREDITS", "")
	t.Setenv("GENERATION_TIMEOUT", "")
	t.Setenv("IMAGE_MODEL", "")
	t.Setenv("CACHE_METHODS", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_EMAILS", " Root@Example.com ,ops@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(25), cfg.InitialCredits)
	assert.Equal(t, int64(5), cfg.GenerationCost)
	assert.Equal(t, "imagen-4.0-generate-001", cfg.ImageModel)
	assert.Equal(t, 90*time.Second, cfg.GenerationTimeout)
	assert.False(t, cfg.S3.Enabled())
	assert.True(t, cfg.IsAdminEmail("root@example.com"))
	assert.True(t, cfg.IsAdminEmail("OPS@example.com "))
	assert.False(t, cfg.IsAdminEmail("someone@example.com"))
	assert.True(t, cfg.Cache.Methods["GET"])
}

func TestLoadReportsMissingKeys(t *testing.T) {
	t.Setenv("CONFIG_ENV_PATH", t.TempDir()+"/absent.env")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GENAI_API_KEY", "")
	t.Setenv("API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "GENAI_API_KEY")
}

func TestLoadRequiresS3SettingsWhenBucketSet(t *testing.T) {
	setRequired(t)
	t.Setenv("S3_BUCKET", "images")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_REGION")
	assert.Contains(t, err.Error(), "S3_PUBLIC_BASE_URL")
}

func TestLoadRejectsNonPositiveCost(t *testing.T) {
	setRequired(t)
	t.Setenv("GENERATION_COST", "0")

	_, err := Load()
	require.Error(t, err)
}
