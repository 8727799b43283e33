package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/subcommands"

	"github.com/tie/mclaunch/install"
	"github.com/tie/mclaunch/javart"
)

type JavaCommand struct {
	*app
}

func (*JavaCommand) Name() string     { return "java" }
func (*JavaCommand) Synopsis() string { return "locate a java executable" }
func (*JavaCommand) Usage() string {
	return `Usage: mclaunch java [version]

	Prints the java executable launch would use for a version. Without
	a version, looks for java 8.

Flags:
`
}

func (cmd *JavaCommand) SetFlags(f *flag.FlagSet) {}

func (cmd *JavaCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	p, ok := cmd.loadProfile()
	if !ok {
		return subcommands.ExitFailure
	}
	if p.JavaPath != "" {
		fmt.Println(p.JavaPath)
		return subcommands.ExitSuccess
	}

	major := 8
	if id := f.Arg(0); id != "" {
		major = install.JavaMajor(osfs.New(p.InstallRoot), id)
		if major == 0 {
			major = javart.RequiredMajor(id)
		}
	}
	loc := &javart.Locator{Log: cmd.log}
	fmt.Println(loc.Locate(ctx, major))
	return subcommands.ExitSuccess
}
