package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/google/subcommands"

	"github.com/tie/mclaunch/builder"
	"github.com/tie/mclaunch/events"
	"github.com/tie/mclaunch/install"
	"github.com/tie/mclaunch/javart"
	"github.com/tie/mclaunch/metrics"
	"github.com/tie/mclaunch/models"
	"github.com/tie/mclaunch/supervisor"
)

type LaunchCommand struct {
	*app
	JavaPath    string
	Username    string
	MemoryMB    int
	DryRun      bool
	MetricsPath string
}

func (*LaunchCommand) Name() string     { return "launch" }
func (*LaunchCommand) Synopsis() string { return "run an installed version" }
func (*LaunchCommand) Usage() string {
	return `Usage: mclaunch launch [-java path] [-username name] [-memory mb] [-n] [-metrics file] version

	Builds the java command line of an installed version and runs it in
	the install root, relaying game output until it exits. A java
	executable matching the version is located when none is configured.

Flags:
`
}

func (cmd *LaunchCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.JavaPath, "java", "", "java executable (default from profile or located)")
	f.StringVar(&cmd.Username, "username", "", "player name (default from profile)")
	f.IntVar(&cmd.MemoryMB, "memory", -1, "heap size in MiB, 0 leaves it to java (default from profile)")
	f.BoolVar(&cmd.DryRun, "n", false, "print the command line without running it")
	f.StringVar(&cmd.MetricsPath, "metrics", "", "write Prometheus metrics to file")
}

func (cmd *LaunchCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	p, ok := cmd.loadProfile()
	if !ok {
		return subcommands.ExitFailure
	}
	cfg := builder.LaunchConfig{
		JavaPath:    p.JavaPath,
		Username:    p.Username,
		MemoryMB:    p.MemoryMB,
		InstallRoot: p.InstallRoot,
	}
	if cmd.JavaPath != "" {
		cfg.JavaPath = cmd.JavaPath
	}
	if cmd.Username != "" {
		cfg.Username = cmd.Username
	}
	if cmd.MemoryMB >= 0 {
		cfg.MemoryMB = cmd.MemoryMB
	}

	files, err := installRoot(p)
	if err != nil {
		cmd.log.Errorf("install root %q: %+v", p.InstallRoot, err)
		return subcommands.ExitFailure
	}
	m, flush := cmd.collector(cmd.MetricsPath)
	defer flush()

	ctx, stop := interruptible(ctx)
	defer stop()

	ch := events.Go(ctx, cmd.log, func(ctx context.Context, em *events.Emitter) (string, error) {
		return cmd.launch(ctx, files, id, cfg, m, em)
	})
	if done := cmd.printEvents(ch); !done.Success {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *LaunchCommand) launch(ctx context.Context, files billy.Filesystem, id string, cfg builder.LaunchConfig, m metrics.Collector, em *events.Emitter) (string, error) {
	if cfg.JavaPath == "" {
		// The descriptor knows better than the id-based table.
		major := install.JavaMajor(files, id)
		if major == 0 {
			major = javart.RequiredMajor(id)
		}
		loc := &javart.Locator{Log: cmd.log}
		cfg.JavaPath = loc.Locate(ctx, major)
		em.Logf("using java %d at %s", major, cfg.JavaPath)
	}

	b := &builder.Builder{Files: files, Log: cmd.log}
	argv, err := b.Build(id, cfg)
	if err != nil {
		return "", err
	}
	if cmd.DryRun {
		fmt.Println(strings.Join(argv, " "))
		return "", nil
	}

	em.Logf("launch: %s", strings.Join(argv, " "))
	code, err := supervisor.Run(argv, cfg.InstallRoot, func(line string) {
		em.Logf("%s", line)
	})
	if err != nil {
		return "", err
	}
	m.GameExited(code)
	if code != 0 {
		return "", &models.ExitError{Code: code}
	}
	return "game exited normally", nil
}
