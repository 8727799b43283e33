package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/diff"

	"github.com/google/subcommands"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/tie/internal/renameio"
	"github.com/tie/internal/robustio"

	"github.com/tie/mclaunch/profile"
)

type FormatCommand struct {
	*app
	NoValidate  bool
	Overwrite   bool
	List        bool
	ContextSize int

	stdout io.Writer
}

func (*FormatCommand) Name() string     { return "fmt" }
func (*FormatCommand) Synopsis() string { return "normalize launcher profile files" }
func (*FormatCommand) Usage() string {
	return `Usage: mclaunch fmt [-l | -w] [-c int] [-novalidate] [profile paths]

	Rewrites profile files in canonical HCL layout. Profiles are decoded
	and validated first, so a profile that would not load is reported
	instead of formatted. Without -w or -l a unified diff of the pending
	changes is printed. With no paths the -profile file is used.

Flags:
`
}

func (cmd *FormatCommand) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.NoValidate, "novalidate", false, "format without decoding the profile")
	fs.BoolVar(&cmd.Overwrite, "w", false, "rewrite profiles in place")
	fs.BoolVar(&cmd.List, "l", false, "only list profiles that need formatting")
	fs.IntVar(&cmd.ContextSize, "c", 3, "lines of diff context")
}

func (cmd *FormatCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{cmd.ProfilePath}
	}
	sort.Strings(paths)

	parser := hclparse.NewParser()
	diagWr, color := cmd.newDiagWr(parser)

	status := subcommands.ExitSuccess
	prev := ""
	for _, fpath := range paths {
		if fpath == prev {
			continue
		}
		prev = fpath
		if err := cmd.formatProfile(ctx, parser, diagWr, fpath, color); err != nil {
			cmd.log.Errorf("%s: %+v", fpath, err)
			status = subcommands.ExitFailure
		}
	}
	return status
}

// formatProfile handles a single file. Errors in one profile do not stop
// the others from being processed.
func (cmd *FormatCommand) formatProfile(ctx context.Context, parser *hclparse.Parser, diagWr hcl.DiagnosticWriter, fpath string, color bool) error {
	src, err := robustio.ReadFile(fpath)
	if err != nil {
		return err
	}
	if !cmd.NoValidate {
		if err := validateProfile(parser, diagWr, fpath, src); err != nil {
			return err
		}
	}

	out := hclwrite.Format(src)
	if bytes.Equal(src, out) {
		return nil
	}
	switch {
	case cmd.List:
		_, err := fmt.Fprintln(cmd.output(), fpath)
		return err
	case cmd.Overwrite:
		return renameio.WriteFile(fpath, out, 0644)
	}
	return writeDiff(ctx, cmd.output(), fpath, src, out, cmd.ContextSize, color)
}

func validateProfile(parser *hclparse.Parser, diagWr hcl.DiagnosticWriter, fpath string, src []byte) error {
	p, diags := profile.Decode(parser, src, fpath)
	if len(diags) > 0 {
		if err := diagWr.WriteDiagnostics(diags); err != nil {
			return fmt.Errorf("write diags: %w", err)
		}
	}
	if diags.HasErrors() {
		return diags
	}
	return p.Validate()
}

func (cmd *FormatCommand) output() io.Writer {
	if cmd.stdout == nil {
		return os.Stdout
	}
	return cmd.stdout
}

func writeDiff(ctx context.Context, w io.Writer, fpath string, src, out []byte, contextSize int, color bool) error {
	name := filepath.ToSlash(fpath)
	opts := []diff.WriteOpt{diff.Names("a/"+name, "b/"+name)}
	if color {
		opts = append(opts, diff.TerminalColor())
	}
	pair := diff.Bytes(splitLines(src), splitLines(out))
	edit := diff.Myers(ctx, pair)
	if contextSize >= 0 {
		edit = edit.WithContextSize(contextSize)
	}
	_, err := edit.WriteUnified(w, pair, opts...)
	return err
}

func splitLines(b []byte) [][]byte {
	return bytes.Split(b, []byte("\n"))
}
