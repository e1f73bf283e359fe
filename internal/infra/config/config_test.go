package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresWeatherAPIKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "weather.apiKey")
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9000"
weather:
  apiKey: from-file
auth:
  jwtSecret: file-secret
view:
  protectedDelay: 10ms
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("OPENWEATHER_API_KEY", "from-env")
	t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, "from-env", cfg.Weather.APIKey)
	require.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 10*time.Millisecond, cfg.View.ProtectedDelay)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORS.AllowedOrigins)
	require.Equal(t, "https://api.openweathermap.org", cfg.Weather.BaseURL)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENWEATHER_API_KEY=dotenv-key\nAUTH_JWT_SECRET=dotenv-secret\n"), 0o600))
	t.Setenv("CONFIG_PATH", "")
	// Registering with t.Setenv restores the variables godotenv sets.
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("OPENWEATHER_API_KEY"))
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dotenv-key", cfg.Weather.APIKey)
	require.Equal(t, "dotenv-secret", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Weather.APIKey = "key"
	cfg.Auth.JWTSecret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.Valkey.Enabled = true
	require.ErrorContains(t, cfg.Validate(), "valkey.addr")
	cfg.Valkey.Addr = "localhost:6379"
	require.NoError(t, cfg.Validate())

	cfg.HTTP.RateLimit.Burst = 0
	require.ErrorContains(t, cfg.Validate(), "burst")
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working directory
// for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
