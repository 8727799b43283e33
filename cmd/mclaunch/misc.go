package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/sirupsen/logrus"

	"github.com/tie/mclaunch/catalog"
	"github.com/tie/mclaunch/events"
	"github.com/tie/mclaunch/install"
	"github.com/tie/mclaunch/metrics"
	"github.com/tie/mclaunch/profile"
)

// app holds global flags shared by all commands.
type app struct {
	ProfilePath string
	EnvPath     string
	Verbose     bool

	log *logrus.Logger
}

// loadProfile merges defaults, the profile file, .env and the environment.
// A missing profile file means defaults.
func (a *app) loadProfile() (profile.Profile, bool) {
	if err := profile.LoadDotenv(a.EnvPath); err != nil {
		a.log.Errorf("load %q: %+v", a.EnvPath, err)
		return profile.Profile{}, false
	}

	parser := hclparse.NewParser()
	p, diags, err := profile.Parse(parser, a.ProfilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		a.log.Debugf("no profile at %q, using defaults", a.ProfilePath)
	case err != nil:
		a.log.Errorf("read %q: %+v", a.ProfilePath, err)
		return p, false
	case len(diags) > 0:
		diagWr, _ := a.newDiagWr(parser)
		if err := diagWr.WriteDiagnostics(diags); err != nil {
			a.log.Errorf("write diags: %+v", err)
		}
		if diags.HasErrors() {
			return p, false
		}
	}

	if err := p.ApplyEnv(os.Getenv); err != nil {
		a.log.Errorf("environment: %+v", err)
		return p, false
	}
	if err := p.Validate(); err != nil {
		a.log.Errorf("profile %q: %+v", a.ProfilePath, err)
		return p, false
	}
	return p, true
}

func (a *app) resolver(p profile.Profile, m metrics.Collector) *catalog.Resolver {
	return &catalog.Resolver{
		Mirrors:  p.Mirrors,
		Client:   http.DefaultClient,
		Attempts: p.Attempts,
		Metrics:  m,
		Log:      a.log,
	}
}

func (a *app) installer(p profile.Profile, files billy.Filesystem, workers int, m metrics.Collector) *install.Installer {
	if workers <= 0 {
		workers = p.Workers
	}
	return &install.Installer{
		Files:    files,
		Resolver: a.resolver(p, m),
		Workers:  workers,
		Metrics:  m,
		Log:      a.log,
	}
}

func installRoot(p profile.Profile) (billy.Filesystem, error) {
	if err := os.MkdirAll(p.InstallRoot, 0755); err != nil {
		return nil, err
	}
	return osfs.New(p.InstallRoot), nil
}

// collector returns a Prometheus collector when path is set and a function
// that writes it out as a textfile.
func (a *app) collector(path string) (metrics.Collector, func()) {
	if path == "" {
		return metrics.Noop(), func() {}
	}
	pc := metrics.NewPrometheusCollector("")
	return pc, func() {
		if err := pc.WriteTextfile(path); err != nil {
			a.log.Errorf("write metrics %q: %+v", path, err)
		}
	}
}

// interruptible cancels ctx on SIGINT or SIGTERM.
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// printEvents writes progress and log events to stderr and returns the
// completion event.
func (a *app) printEvents(ch <-chan events.Event) events.Event {
	last := -1
	done := events.Wait(ch, func(ev events.Event) {
		switch ev.Kind {
		case events.KindProgress:
			if ev.Percent == last {
				return
			}
			last = ev.Percent
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", ev.Percent, ev.Message)
		case events.KindLog:
			if !a.Verbose {
				fmt.Fprintln(os.Stderr, ev.Message)
			}
		}
	})
	if !done.Success {
		a.log.Errorf("%s", done.Message)
	}
	return done
}

func (a *app) newDiagWr(p *hclparse.Parser) (diagWr hcl.DiagnosticWriter, color bool) {
	files := p.Files()
	stderr := os.Stderr
	fd := int(stderr.Fd())
	istty, color := fdinfo(fd)
	if !istty {
		diagWr := hcl.NewDiagnosticTextWriter(stderr, files, 80, color)
		return diagWr, color
	}
	width := uint(80)
	if w, _, err := terminal.GetSize(fd); err != nil {
		a.log.Debugf("get term size: %+v", err)
	} else if w > 0 {
		width = uint(w)
	}
	return hcl.NewDiagnosticTextWriter(stderr, files, width, color), color
}

func fdinfo(fd int) (istty, color bool) {
	istty = terminal.IsTerminal(fd)
	if istty {
		color = true
	}
	// See https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color = false
	}
	return
}
