package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-a", "http://api.example.com", "-t", "5"}

	c := LoadConfig()

	require.NotNil(t, c)
	assert.Equal(t, "http://api.example.com", c.ServerEndpointAddr)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"server_endpoint_addr": "http://json.example.com", "request_timeout": "7s"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-c", path}

	c := LoadConfig()

	assert.Equal(t, "http://json.example.com", c.ServerEndpointAddr)
	assert.Equal(t, 7*time.Second, c.RequestTimeout)
}
