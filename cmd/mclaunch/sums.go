package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/go-git/go-billy/v5"

	"github.com/tie/internal/renameio"

	"github.com/tie/mclaunch/fetcher"
	"github.com/tie/mclaunch/install"
	"github.com/tie/mclaunch/models"
	"github.com/tie/mclaunch/profile/hclspec"
)

type SumsCommand struct {
	*app
	OutputPath string
}

func (*SumsCommand) Name() string     { return "sums" }
func (*SumsCommand) Synopsis() string { return "generate checksum report" }
func (*SumsCommand) Usage() string {
	return `Usage: mclaunch sums [-o sums.hcl] version

	Generates checksum report for an installed version. The report contains
	a "file" block for the descriptor, the client jar, the asset index and
	every library present on disk.

Flags:
`
}

func (cmd *SumsCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.OutputPath, "o", "sums.hcl", "report output path")
}

func (cmd *SumsCommand) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	p, ok := cmd.loadProfile()
	if !ok {
		return subcommands.ExitFailure
	}
	files, err := installRoot(p)
	if err != nil {
		cmd.log.Errorf("install root %q: %+v", p.InstallRoot, err)
		return subcommands.ExitFailure
	}

	report, err := sumsReport(files, id, models.Platform())
	if err != nil {
		cmd.log.Errorf("sum %q: %+v", id, err)
		return subcommands.ExitFailure
	}

	sumsFile := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(report, sumsFile.Body())

	fpath := cmd.OutputPath
	outSrc := hclwrite.Format(sumsFile.Bytes())
	if err := renameio.WriteFile(fpath, outSrc, 0644); err != nil {
		cmd.log.Errorf("write file %q: %+v", fpath, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func sumsReport(files billy.Filesystem, id, platform string) (*hclspec.Report, error) {
	detail, _, err := install.ReadDescriptor(files, id)
	if err != nil {
		return nil, err
	}
	paths := []string{
		install.DescriptorPath(id),
		install.ClientPath(id),
		install.AssetIndexPath(detail.AssetIndex.ID),
	}
	for _, lib := range detail.Libraries {
		if !lib.Included(platform) {
			continue
		}
		p, err := install.LibraryPath(lib)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}

	report := &hclspec.Report{Version: id}
	for _, p := range paths {
		ok, err := install.Exists(files, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		sums, err := fetcher.Sums(files, p)
		if err != nil {
			return nil, err
		}
		report.Files = append(report.Files, hclspec.File{Path: p, Sums: sums})
	}
	return report, nil
}
