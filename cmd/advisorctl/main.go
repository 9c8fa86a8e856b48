package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"digital-advisor/bootstrap"
	"digital-advisor/internal/cli"
	"digital-advisor/internal/config"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := &cli.Env{
		Open: func() (*bootstrap.Deps, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, fmt.Errorf("config load: %w", err)
			}
			return bootstrap.Open(cfg)
		},
	}
	for _, c := range cli.Commands(env) {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
