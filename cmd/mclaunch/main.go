package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/tie/mclaunch/profile"
)

const (
	programName    = "mclaunch"
	defaultVersion = "1.12.2"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	a := &app{log: log}

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.Bool("h", false, "alias for help")
	fs.Bool("help", false, "print usage")
	fs.StringVar(&a.ProfilePath, "profile", profile.DefaultPath, "launcher profile path")
	fs.StringVar(&a.EnvPath, "env", ".env", "dotenv file path")
	fs.BoolVar(&a.Verbose, "v", false, "verbose logging")

	cdr := subcommands.NewCommander(fs, programName)
	cdr.Register(&VersionsCommand{app: a}, "")
	cdr.Register(&InstallCommand{app: a}, "")
	cdr.Register(&LaunchCommand{app: a}, "")
	cdr.Register(&InstalledCommand{app: a}, "")
	cdr.Register(&JavaCommand{app: a}, "")
	cdr.Register(&SumsCommand{app: a}, "")
	cdr.Register(&InitCommand{app: a}, "profile")
	cdr.Register(&FormatCommand{app: a}, "profile")
	cdr.Register(cdr.HelpCommand(), "help")
	cdr.Register(cdr.FlagsCommand(), "help")
	cdr.Register(cdr.CommandsCommand(), "help")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	if a.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()
	switch cdr.Execute(ctx) {
	case subcommands.ExitFailure:
		os.Exit(1)
	case subcommands.ExitUsageError:
		os.Exit(2)
	}
}
