package models

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// LibraryKind tells which descriptor generation a library came from.
type LibraryKind int

const (
	// LibraryLegacy libraries carry a base URL and derive their path from
	// the maven coordinates in Name.
	LibraryLegacy LibraryKind = iota
	// LibraryStructured libraries declare downloads.artifact.
	LibraryStructured
)

func (k LibraryKind) String() string {
	switch k {
	case LibraryStructured:
		return "structured"
	case LibraryLegacy:
		return "legacy"
	}
	return fmt.Sprintf("LibraryKind(%d)", int(k))
}

// Artifact is a single downloadable file.
type Artifact struct {
	// Path is relative to the libraries folder. It is empty for
	// the client jar and asset indexes.
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

type Library struct {
	Name  string
	Rules []Rule
	Kind  LibraryKind

	// Artifact is set for structured libraries.
	Artifact Artifact
	// BaseURL is set for legacy libraries. It may be empty, in which case
	// there is nothing to download but the derived path still counts.
	BaseURL string
}

type libraryJSON struct {
	Name      string `json:"name"`
	Rules     []Rule `json:"rules,omitempty"`
	URL       string `json:"url,omitempty"`
	Downloads *struct {
		Artifact *Artifact `json:"artifact,omitempty"`
	} `json:"downloads,omitempty"`
}

func (l *Library) UnmarshalJSON(data []byte) error {
	var raw libraryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Library{
		Name:  raw.Name,
		Rules: raw.Rules,
	}
	if raw.Downloads != nil && raw.Downloads.Artifact != nil {
		l.Kind = LibraryStructured
		l.Artifact = *raw.Downloads.Artifact
		return nil
	}
	l.Kind = LibraryLegacy
	l.BaseURL = raw.URL
	return nil
}

// Included reports whether the library applies to platform.
func (l *Library) Included(platform string) bool {
	return Included(l.Rules, platform)
}

// Coordinates are maven coordinates "group:artifact:version[:classifier]".
type Coordinates struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
}

func ParseCoordinates(name string) (Coordinates, error) {
	parts := strings.Split(name, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinates{}, fmt.Errorf("%w: library name %q", ErrMalformedManifest, name)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinates{}, fmt.Errorf("%w: library name %q", ErrMalformedManifest, name)
		}
	}
	c := Coordinates{
		Group:    parts[0],
		Artifact: parts[1],
		Version:  parts[2],
	}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// Path returns the repository layout path, e.g.
// org/lwjgl/lwjgl/2.9.4/lwjgl-2.9.4.jar.
func (c Coordinates) Path() string {
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	group := strings.ReplaceAll(c.Group, ".", "/")
	return path.Join(group, c.Artifact, c.Version, file+".jar")
}
