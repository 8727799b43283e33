package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/tie/mclaunch/events"
	"github.com/tie/mclaunch/install"
)

type InstalledCommand struct {
	*app
	Repair bool
}

func (*InstalledCommand) Name() string     { return "installed" }
func (*InstalledCommand) Synopsis() string { return "list installed versions" }
func (*InstalledCommand) Usage() string {
	return `Usage: mclaunch installed [-repair]

	Lists versions in the install root. Versions with a descriptor but
	no client jar are marked incomplete; -repair installs them again.

Flags:
`
}

func (cmd *InstalledCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.Repair, "repair", false, "re-install incomplete versions")
}

func (cmd *InstalledCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	p, ok := cmd.loadProfile()
	if !ok {
		return subcommands.ExitFailure
	}
	files, err := installRoot(p)
	if err != nil {
		cmd.log.Errorf("install root %q: %+v", p.InstallRoot, err)
		return subcommands.ExitFailure
	}

	installed, incomplete, err := install.ListInstalled(files)
	if err != nil {
		cmd.log.Errorf("list %q: %+v", p.InstallRoot, err)
		return subcommands.ExitFailure
	}
	for _, id := range installed {
		fmt.Println(id)
	}
	for _, id := range incomplete {
		fmt.Printf("%s (incomplete)\n", id)
	}
	if !cmd.Repair || len(incomplete) == 0 {
		return subcommands.ExitSuccess
	}

	ctx, stop := interruptible(ctx)
	defer stop()

	in := cmd.installer(p, files, 0, nil)
	status := subcommands.ExitSuccess
	for _, id := range incomplete {
		id := id
		ch := events.Go(ctx, cmd.log, func(ctx context.Context, em *events.Emitter) (string, error) {
			return "repaired " + id, in.Install(ctx, id, p.Mirror, em)
		})
		if done := cmd.printEvents(ch); !done.Success {
			status = subcommands.ExitFailure
		}
	}
	return status
}
