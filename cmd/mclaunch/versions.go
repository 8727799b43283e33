package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/tie/mclaunch/events"
	"github.com/tie/mclaunch/profile"
)

type VersionsCommand struct {
	*app
	Mirror int
}

func (*VersionsCommand) Name() string     { return "versions" }
func (*VersionsCommand) Synopsis() string { return "list supported versions" }
func (*VersionsCommand) Usage() string {
	return `Usage: mclaunch versions [-mirror n]

	Lists versions from the remote manifest that are 1.7.10 or newer,
	in manifest order.

Flags:
`
}

func (cmd *VersionsCommand) SetFlags(f *flag.FlagSet) {
	f.IntVar(&cmd.Mirror, "mirror", -1, "mirror index (default from profile)")
}

func (cmd *VersionsCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	p, ok := cmd.loadProfile()
	if !ok {
		return subcommands.ExitFailure
	}
	mirror := p.Mirror
	if cmd.Mirror >= 0 {
		mirror = cmd.Mirror
	}

	ctx, stop := interruptible(ctx)
	defer stop()

	ids, ok := cmd.listVersions(ctx, p, mirror)
	if !ok {
		return subcommands.ExitFailure
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return subcommands.ExitSuccess
}

func (a *app) listVersions(ctx context.Context, p profile.Profile, mirror int) ([]string, bool) {
	var ids []string
	r := a.resolver(p, nil)
	ch := events.Go(ctx, a.log, func(ctx context.Context, em *events.Emitter) (string, error) {
		em.Logf("fetch version manifest")
		var err error
		ids, err = r.ListSupportedVersions(ctx, mirror)
		return fmt.Sprintf("%d versions", len(ids)), err
	})
	done := a.printEvents(ch)
	return ids, done.Success
}
