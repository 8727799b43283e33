package install

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/tie/mclaunch/models"
)

// Install tree layout. Paths are slash-separated and relative to the
// install root.
const (
	VersionsDir  = "versions"
	LibrariesDir = "libraries"
	AssetsDir    = "assets"
)

func VersionDir(id string) string {
	return path.Join(VersionsDir, id)
}

func DescriptorPath(id string) string {
	return path.Join(VersionDir(id), id+".json")
}

func ClientPath(id string) string {
	return path.Join(VersionDir(id), id+".jar")
}

func AssetIndexPath(indexID string) string {
	return path.Join(AssetsDir, "indexes", indexID+".json")
}

// LibraryPath returns where a library is stored under the install root.
func LibraryPath(lib models.Library) (string, error) {
	if lib.Kind == models.LibraryStructured {
		if lib.Artifact.Path == "" {
			return "", fmt.Errorf("%w: library %q has no artifact path", models.ErrMalformedManifest, lib.Name)
		}
		return path.Join(LibrariesDir, lib.Artifact.Path), nil
	}
	c, err := models.ParseCoordinates(lib.Name)
	if err != nil {
		return "", err
	}
	return path.Join(LibrariesDir, c.Path()), nil
}

// LibraryURL returns where a library is downloaded from. It is empty for
// legacy libraries without a base URL.
func LibraryURL(lib models.Library) (string, error) {
	if lib.Kind == models.LibraryStructured {
		return lib.Artifact.URL, nil
	}
	if lib.BaseURL == "" {
		return "", nil
	}
	c, err := models.ParseCoordinates(lib.Name)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(lib.BaseURL, "/") + "/" + c.Path(), nil
}

// Exists reports whether a slash-separated path is present.
func Exists(fs billy.Basic, name string) (bool, error) {
	_, err := fs.Stat(filepath.FromSlash(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Installed reports whether both the descriptor and the client jar of
// a version are present.
func Installed(fs billy.Basic, id string) (bool, error) {
	ok, err := Exists(fs, DescriptorPath(id))
	if err != nil || !ok {
		return false, err
	}
	return Exists(fs, ClientPath(id))
}

// Incomplete reports whether a version has a descriptor but no client jar.
func Incomplete(fs billy.Basic, id string) (bool, error) {
	ok, err := Exists(fs, DescriptorPath(id))
	if err != nil || !ok {
		return false, err
	}
	ok, err = Exists(fs, ClientPath(id))
	return !ok, err
}

// ListInstalled scans the versions folder. Versions with a descriptor but
// no client jar are returned separately as incomplete.
func ListInstalled(fs billy.Filesystem) (installed, incomplete []string, err error) {
	entries, err := fs.ReadDir(VersionsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	for _, fi := range entries {
		if !fi.IsDir() {
			continue
		}
		id := fi.Name()
		ok, err := Installed(fs, id)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			installed = append(installed, id)
			continue
		}
		ok, err = Incomplete(fs, id)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			incomplete = append(incomplete, id)
		}
	}
	sort.Strings(installed)
	sort.Strings(incomplete)
	return installed, incomplete, nil
}

// ReadDescriptor parses the persisted descriptor of a version.
func ReadDescriptor(fs billy.Basic, id string) (*models.VersionDetail, []byte, error) {
	data, err := util.ReadFile(fs, filepath.FromSlash(DescriptorPath(id)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %q", models.ErrNotInstalled, id)
	}
	if err != nil {
		return nil, nil, err
	}
	d, err := models.ParseVersionDetail(data)
	if err != nil {
		return nil, nil, fmt.Errorf("read descriptor of %q: %w", id, err)
	}
	return d, data, nil
}

// JavaMajor returns the java major version an installed descriptor
// declares, or zero.
func JavaMajor(fs billy.Basic, id string) int {
	d, _, err := ReadDescriptor(fs, id)
	if err != nil || d.JavaVersion == nil {
		return 0
	}
	return d.JavaVersion.MajorVersion
}

// writeFile replaces name with data through a temporary file and rename.
func writeFile(fs billy.Filesystem, name string, data []byte) (err error) {
	name = filepath.FromSlash(name)
	dir, base := filepath.Split(name)
	if dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := fs.TempFile(dir, base+".part-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return fs.Rename(tmp, name)
}
