package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/socialride/identity/internal/flagx"
	"github.com/socialride/identity/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON config
// files. Duration fields accept both strings ("1h") and nanosecond numbers;
// after unmarshalling the values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr         string         `json:"endpoint_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	AccessTokenTTL       timex.Duration `json:"access_token_ttl"`
	LegacyAccessTokenTTL timex.Duration `json:"legacy_access_token_ttl"`
	AdminUserIDs         []string       `json:"admin_user_ids"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by the -c/-config
// flags, if any. A missing flag means no file is loaded; an unreadable or
// invalid file panics, aborting startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenTTL = time.Duration(c.AccessTokenTTL.Duration)
	config.LegacyAccessTokenTTL = time.Duration(c.LegacyAccessTokenTTL.Duration)
	config.AdminUserIDs = c.AdminUserIDs
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
