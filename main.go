package main

import (
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/log"
	"gopkg.in/urfave/cli.v1"
	"os"
)

const version = "0.1.0"

func main() {
	app := cli.NewApp()
	app.Name = "truthpool"
	app.Usage = "commit-reveal truth oracle"
	app.Version = version

	app.Flags = config.GlobalFlags
	app.Commands = commands

	app.Before = func(ctx *cli.Context) error {
		log.Setup(os.Stderr, ctx.GlobalInt(config.VerbosityFlag.Name), ctx.GlobalBool(config.LogJsonFlag.Name))
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
