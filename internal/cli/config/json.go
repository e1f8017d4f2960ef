package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/socialride/identity/internal/flagx"
	"github.com/socialride/identity/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON config
// files. Duration fields accept both strings ("10s") and nanosecond numbers.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays values from the JSON file named by the -c/-config
// flags, if any.
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

	config.ServerEndpointAddr = c.ServerEndpointAddr
	config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
}
