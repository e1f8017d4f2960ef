package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/socialride/identity/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      federated access-token TTL, minutes
//	-l int      legacy (local-auth) access-token TTL, minutes
//	-m string   comma-separated admin user ids
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Arguments are first filtered with flagx.FilterArgs so flags owned by other
// packages are ignored. TTL flags are minutes converted to time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-l", "-m", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTTL := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access token ttl (in minutes)")
	legacyTTL := fs.Int("l", int(config.LegacyAccessTokenTTL.Minutes()), "legacy access token ttl (in minutes)")
	admins := fs.String("m", strings.Join(config.AdminUserIDs, ","), "comma-separated admin user ids")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = time.Duration(*accessTTL) * time.Minute
	config.LegacyAccessTokenTTL = time.Duration(*legacyTTL) * time.Minute

	if *admins == "" {
		config.AdminUserIDs = nil
	} else {
		config.AdminUserIDs = strings.Split(*admins, ",")
	}
}
