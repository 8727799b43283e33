package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/tie/mclaunch/profile"
)

type InitCommand struct {
	*app
	OutputPath string
	Force      bool
}

func (*InitCommand) Name() string     { return "init" }
func (*InitCommand) Synopsis() string { return "write a launcher profile" }
func (*InitCommand) Usage() string {
	return `Usage: mclaunch init [-o launcher.hcl] [-f]

	Writes a launcher profile filled with defaults and MCLAUNCH_*
	environment overrides.

Flags:
`
}

func (cmd *InitCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.OutputPath, "o", profile.DefaultPath, "output profile path")
	f.BoolVar(&cmd.Force, "f", false, "overwrite an existing profile")
}

func (cmd *InitCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if !cmd.Force {
		if _, err := os.Stat(cmd.OutputPath); err == nil {
			cmd.log.Errorf("%q exists, use -f to overwrite", cmd.OutputPath)
			return subcommands.ExitFailure
		}
	}
	if err := profile.LoadDotenv(cmd.EnvPath); err != nil {
		cmd.log.Errorf("load %q: %+v", cmd.EnvPath, err)
		return subcommands.ExitFailure
	}

	p := profile.Default()
	if err := p.ApplyEnv(os.Getenv); err != nil {
		cmd.log.Errorf("environment: %+v", err)
		return subcommands.ExitFailure
	}
	if err := profile.Write(cmd.OutputPath, p); err != nil {
		cmd.log.Errorf("write %q: %+v", cmd.OutputPath, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
