package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
modules:
  smsotp:
    code_length: 8
    sender_id: ACME
    simulation_mode: true
    transport:
      timeout_seconds: 5
instrument:
  log_mask_fields: "otp, code,,password"
hash:
  hmac:
    key: "c2VjcmV0"
app:
  labels: "env:dev,team:auth"
`

func TestNewViperFromBytes(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(sample), WithDefaults(map[string]any{
		"modules.smsotp.code_length": 6,
		"modules.smsotp.ttl_seconds": 300,
	}))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 8, cfg.GetInt("modules.smsotp.code_length"), "file value wins over default")
	assert.Equal(t, 300, cfg.GetInt("modules.smsotp.ttl_seconds"), "default used when absent")
	assert.True(t, cfg.IsSet("modules.smsotp.ttl_seconds"))
	assert.False(t, cfg.IsSet("modules.smsotp.unknown"))
	assert.Equal(t, "ACME", cfg.GetString("modules.smsotp.sender_id"))
	assert.True(t, cfg.GetBool("modules.smsotp.simulation_mode"))
	assert.Equal(t, 5*time.Second, cfg.GetSecond("modules.smsotp.transport.timeout_seconds"))
	assert.Equal(t, []string{"otp", "code", "password"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Nil(t, cfg.GetArray("instrument.missing"))
	assert.Equal(t, []byte("secret"), cfg.GetBinary("hash.hmac.key"))
	assert.Equal(t, map[string]string{"env": "dev", "team": "auth"}, cfg.GetMap("app.labels"))
	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sample))

	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}

func TestNewViper(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))

	// Act
	cfg, err := NewViper(file)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ACME", cfg.GetString("modules.smsotp.sender_id"))
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
