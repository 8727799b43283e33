// Package builder turns an installed version into a java command line.
package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tie/mclaunch/install"
	"github.com/tie/mclaunch/models"
)

// Session values sent to the game. Authentication is not implemented.
const (
	AccessToken    = "token"
	UserProperties = "{}"
	UserType       = "mojang"
)

type LaunchConfig struct {
	JavaPath string
	Username string
	// MemoryMB sets both -Xmx and -Xms. Zero omits them.
	MemoryMB    int
	InstallRoot string
}

type Builder struct {
	// Files is rooted at the install root. It defaults to the OS
	// filesystem at LaunchConfig.InstallRoot.
	Files billy.Filesystem
	// Platform defaults to models.Platform().
	Platform string
	// NewUUID defaults to a random UUID.
	NewUUID func() string

	Log logrus.FieldLogger
}

// Build returns argv for launching an installed version.
func (b *Builder) Build(versionID string, cfg LaunchConfig) ([]string, error) {
	fs := b.files(cfg)
	detail, _, err := install.ReadDescriptor(fs, versionID)
	if err != nil {
		return nil, err
	}
	cp, err := b.Classpath(fs, versionID, detail, cfg.InstallRoot)
	if err != nil {
		return nil, err
	}

	java := cfg.JavaPath
	if java == "" {
		java = "java"
	}
	argv := []string{java}
	if cfg.MemoryMB > 0 {
		m := strconv.Itoa(cfg.MemoryMB)
		argv = append(argv, "-Xmx"+m+"M", "-Xms"+m+"M")
	}
	argv = append(argv, "-cp", strings.Join(cp, string(os.PathListSeparator)), detail.MainClass)

	v := b.vars(versionID, detail, cfg)
	switch detail.Arguments.Kind {
	case models.ArgumentsTemplated:
		r := strings.NewReplacer(v.pairs()...)
		for _, arg := range detail.Arguments.Game {
			argv = append(argv, r.Replace(arg))
		}
	default:
		argv = append(argv,
			"--username", v.username,
			"--version", v.version,
			"--gameDir", v.gameDir,
			"--assetsDir", v.assetsDir,
			"--assetIndex", v.assetIndex,
			"--uuid", v.uuid,
			"--accessToken", AccessToken,
			"--userProperties", UserProperties,
			"--userType", UserType,
		)
	}
	return argv, nil
}

// Classpath lists the included libraries present on disk in descriptor
// order, followed by the client jar of versionID, as OS paths under root.
// The jar is looked up by the version directory name, not the id recorded
// in the descriptor, so copied version directories still resolve.
func (b *Builder) Classpath(fs billy.Basic, versionID string, detail *models.VersionDetail, root string) ([]string, error) {
	client := install.ClientPath(versionID)
	ok, err := install.Exists(fs, client)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q: missing %s", models.ErrNotInstalled, versionID, client)
	}

	platform := b.Platform
	if platform == "" {
		platform = models.Platform()
	}
	var cp []string
	for _, lib := range detail.Libraries {
		if !lib.Included(platform) {
			continue
		}
		p, err := install.LibraryPath(lib)
		if err != nil {
			return nil, err
		}
		ok, err := install.Exists(fs, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			b.log().Debugf("skip %q: missing", p)
			continue
		}
		cp = append(cp, osPath(root, p))
	}
	return append(cp, osPath(root, client)), nil
}

type vars struct {
	username   string
	version    string
	gameDir    string
	assetsDir  string
	assetIndex string
	uuid       string
}

func (b *Builder) vars(versionID string, detail *models.VersionDetail, cfg LaunchConfig) vars {
	newUUID := b.NewUUID
	if newUUID == nil {
		newUUID = uuid.NewString
	}
	return vars{
		username:   cfg.Username,
		version:    versionID,
		gameDir:    cfg.InstallRoot,
		assetsDir:  osPath(cfg.InstallRoot, install.AssetsDir),
		assetIndex: detail.AssetIndex.ID,
		uuid:       newUUID(),
	}
}

func (v vars) pairs() []string {
	return []string{
		"${auth_player_name}", v.username,
		"${version_name}", v.version,
		"${game_directory}", v.gameDir,
		"${assets_root}", v.assetsDir,
		"${assets_index_name}", v.assetIndex,
		"${auth_uuid}", v.uuid,
		"${auth_access_token}", AccessToken,
		"${user_properties}", UserProperties,
		"${user_type}", UserType,
	}
}

func osPath(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(name))
}

func (b *Builder) files(cfg LaunchConfig) billy.Filesystem {
	if b.Files != nil {
		return b.Files
	}
	return osfs.New(cfg.InstallRoot)
}

func (b *Builder) log() logrus.FieldLogger {
	if b.Log == nil {
		return logrus.StandardLogger()
	}
	return b.Log
}
