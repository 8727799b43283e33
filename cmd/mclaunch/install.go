package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/subcommands"

	"github.com/tie/mclaunch/events"
)

type InstallCommand struct {
	*app
	Mirror      int
	Workers     int
	MetricsPath string
}

func (*InstallCommand) Name() string     { return "install" }
func (*InstallCommand) Synopsis() string { return "download a version" }
func (*InstallCommand) Usage() string {
	return `Usage: mclaunch install [-mirror n] [-workers n] [-metrics file] [version]

	Downloads the descriptor, client jar, asset index and libraries of
	a version into the install root. Files already present are skipped,
	so an interrupted install can be resumed by running it again.
	Without a version, asks for one interactively.

Flags:
`
}

func (cmd *InstallCommand) SetFlags(f *flag.FlagSet) {
	f.IntVar(&cmd.Mirror, "mirror", -1, "mirror index (default from profile)")
	f.IntVar(&cmd.Workers, "workers", 0, "parallel library downloads (default from profile)")
	f.StringVar(&cmd.MetricsPath, "metrics", "", "write Prometheus metrics to file")
}

func (cmd *InstallCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
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

	id := f.Arg(0)
	if id == "" {
		ids, ok := cmd.listVersions(ctx, p, mirror)
		if !ok {
			return subcommands.ExitFailure
		}
		if id, ok = askVersion(ids); !ok {
			return subcommands.ExitFailure
		}
	}

	files, err := installRoot(p)
	if err != nil {
		cmd.log.Errorf("install root %q: %+v", p.InstallRoot, err)
		return subcommands.ExitFailure
	}
	m, flush := cmd.collector(cmd.MetricsPath)
	defer flush()

	in := cmd.installer(p, files, cmd.Workers, m)
	ch := events.Go(ctx, cmd.log, func(ctx context.Context, em *events.Emitter) (string, error) {
		if err := in.Install(ctx, id, mirror, em); err != nil {
			return "", err
		}
		return fmt.Sprintf("installed %s", id), nil
	})
	if done := cmd.printEvents(ch); !done.Success {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func askVersion(ids []string) (string, bool) {
	if len(ids) == 0 {
		fmt.Println("No supported versions available.")
		return "", false
	}
	prompt := &survey.Select{
		Message: "Choose a version to install:",
		Options: ids,
	}
	for _, id := range ids {
		if id == defaultVersion {
			prompt.Default = defaultVersion
			break
		}
	}
	var id string
	if err := survey.AskOne(prompt, &id); err != nil {
		fmt.Println("Failed to retrieve your choice: " + err.Error())
		return "", false
	}
	return id, true
}
