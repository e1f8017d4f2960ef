package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", ":9999",
		"-d", "postgres://u:p@h/db",
		"-s", "flag_secret",
		"-t", "30",
		"-l", "720",
		"-m", "root-1,root-2",
		"-u", "s3user",
		"-p", "s3pass",
		"-b", "s3bucket",
		"-g", "s3region",
		"-e", "http://s3:9000/",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddr)
	assert.Equal(t, "postgres://u:p@h/db", cfg.DatabaseDSN)
	assert.Equal(t, "flag_secret", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 720*time.Minute, cfg.LegacyAccessTokenTTL)
	assert.Equal(t, []string{"root-1", "root-2"}, cfg.AdminUserIDs)
	assert.Equal(t, "s3user", cfg.S3RootUser)
	assert.Equal(t, "s3pass", cfg.S3RootPassword)
	assert.Equal(t, "s3bucket", cfg.S3Bucket)
	assert.Equal(t, "s3region", cfg.S3Region)
	assert.Equal(t, "http://s3:9000/", cfg.S3BaseEndpoint)
}

func Test_parseFlags_KeepsDefaultsWhenAbsent(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, 1*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.LegacyAccessTokenTTL)
	assert.Empty(t, cfg.AdminUserIDs)
}

func Test_parseFlags_IgnoresForeignFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-x", "1", "-a", ":7777"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7777", cfg.EndpointAddr)
}
