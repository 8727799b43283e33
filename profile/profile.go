// Package profile holds launcher defaults read from an HCL file, a .env
// file and the environment.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"

	"github.com/tie/internal/renameio"
	"github.com/tie/internal/robustio"

	"github.com/tie/mclaunch/catalog"
	"github.com/tie/mclaunch/profile/hclspec"
)

const (
	DefaultPath     = "launcher.hcl"
	DefaultUsername = "Player"
	DefaultMemoryMB = 2048
)

// Environment overrides.
const (
	EnvRoot     = "MCLAUNCH_ROOT"
	EnvJava     = "MCLAUNCH_JAVA"
	EnvUsername = "MCLAUNCH_USERNAME"
	EnvMemory   = "MCLAUNCH_MEMORY"
	EnvMirror   = "MCLAUNCH_MIRROR"
)

type Profile struct {
	InstallRoot string
	// JavaPath is located per launch when empty.
	JavaPath string
	Username string
	MemoryMB int
	// Mirror indexes Mirrors.
	Mirror   int
	Mirrors  []string
	Workers  int
	Attempts int
}

func Default() Profile {
	return Profile{
		InstallRoot: DefaultInstallRoot(),
		Username:    DefaultUsername,
		MemoryMB:    DefaultMemoryMB,
		Mirrors:     append([]string(nil), catalog.DefaultMirrors...),
		Workers:     1,
	}
}

// DefaultInstallRoot is %APPDATA%\.minecraft on Windows and ~/.minecraft
// elsewhere.
func DefaultInstallRoot() string {
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, ".minecraft")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".minecraft"
	}
	return filepath.Join(home, ".minecraft")
}

// Parse reads a profile file. Attributes it sets override the defaults.
func Parse(parser *hclparse.Parser, path string) (Profile, hcl.Diagnostics, error) {
	src, err := robustio.ReadFile(path)
	if err != nil {
		return Default(), nil, err
	}
	p, diags := Decode(parser, src, path)
	return p, diags, nil
}

func Decode(parser *hclparse.Parser, src []byte, filename string) (Profile, hcl.Diagnostics) {
	p := Default()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return p, diags
	}
	var spec hclspec.Profile
	diags = append(diags, gohcl.DecodeBody(file.Body, nil, &spec)...)
	if diags.HasErrors() {
		return p, diags
	}
	p.merge(spec)
	return p, diags
}

func (p *Profile) merge(spec hclspec.Profile) {
	if spec.InstallRoot != "" {
		p.InstallRoot = spec.InstallRoot
	}
	if spec.JavaPath != "" {
		p.JavaPath = spec.JavaPath
	}
	if spec.Username != "" {
		p.Username = spec.Username
	}
	if spec.Memory != 0 {
		p.MemoryMB = spec.Memory
	}
	if spec.Mirror != 0 {
		p.Mirror = spec.Mirror
	}
	if len(spec.Mirrors) > 0 {
		p.Mirrors = spec.Mirrors
	}
	if spec.Workers != 0 {
		p.Workers = spec.Workers
	}
	if spec.Attempts != 0 {
		p.Attempts = spec.Attempts
	}
}

// Encode writes a profile as HCL. Empty optional attributes are left out.
func Encode(p Profile) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("install_root", cty.StringVal(p.InstallRoot))
	if p.JavaPath != "" {
		body.SetAttributeValue("java_path", cty.StringVal(p.JavaPath))
	}
	body.SetAttributeValue("username", cty.StringVal(p.Username))
	body.SetAttributeValue("memory", cty.NumberIntVal(int64(p.MemoryMB)))

	body.AppendNewline()
	body.SetAttributeValue("mirror", cty.NumberIntVal(int64(p.Mirror)))
	if len(p.Mirrors) > 0 {
		vals := make([]cty.Value, len(p.Mirrors))
		for i, m := range p.Mirrors {
			vals[i] = cty.StringVal(m)
		}
		body.SetAttributeValue("mirrors", cty.ListVal(vals))
	}
	body.SetAttributeValue("workers", cty.NumberIntVal(int64(p.Workers)))
	if p.Attempts > 0 {
		body.SetAttributeValue("attempts", cty.NumberIntVal(int64(p.Attempts)))
	}
	return hclwrite.Format(f.Bytes())
}

func Write(path string, p Profile) error {
	return renameio.WriteFile(path, Encode(p), 0644)
}

// LoadDotenv sets variables from a .env file without overriding the
// environment. A missing file is not an error.
func LoadDotenv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides fields with the MCLAUNCH_* variables that are set.
func (p *Profile) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvRoot); v != "" {
		p.InstallRoot = v
	}
	if v := getenv(EnvJava); v != "" {
		p.JavaPath = v
	}
	if v := getenv(EnvUsername); v != "" {
		p.Username = v
	}
	if v := getenv(EnvMemory); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMemory, err)
		}
		p.MemoryMB = n
	}
	if v := getenv(EnvMirror); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMirror, err)
		}
		p.Mirror = n
	}
	return nil
}

func (p Profile) Validate() error {
	switch {
	case p.InstallRoot == "":
		return errors.New("install root is empty")
	case len(p.Mirrors) == 0:
		return errors.New("no mirrors")
	case p.Mirror < 0 || p.Mirror >= len(p.Mirrors):
		return fmt.Errorf("mirror index %d out of range [0, %d)", p.Mirror, len(p.Mirrors))
	case p.MemoryMB < 0:
		return fmt.Errorf("negative memory %d", p.MemoryMB)
	case p.Workers < 0:
		return fmt.Errorf("negative workers %d", p.Workers)
	}
	return nil
}
