package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{}, "")
	commander.Register(&fetchCmd{}, "")
	commander.Register(&exportCmd{}, "")
	commander.Register(&snapshotCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
