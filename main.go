package main

import (
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := NewCLI(provision)

	if err := app.Run(os.Args); err != nil {
		panic(err)
	}
}

func provision(ctx *cli.Context, options *Options) error {
	settings, err := options.Settings(ctx)

	if err != nil {
		return err
	}

	validator := NewValidator(settings, os.Stdout)

	user := NewUser(os.Stdin, os.Stdout)

	return NewSetup(settings, validator, user, os.Stdout).Run(ctx.Context)
}
