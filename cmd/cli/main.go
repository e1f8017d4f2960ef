package main

import (
	"context"
	"log"
	"os"

	"github.com/socialride/identity/internal/buildinfo"
	"github.com/socialride/identity/internal/cli"
	"github.com/socialride/identity/internal/cli/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
