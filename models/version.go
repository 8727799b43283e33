package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Manifest is the top-level index of known versions.
type Manifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []VersionEntry `json:"versions"`
}

type VersionEntry struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	// URL points to the version descriptor.
	URL string `json:"url"`
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	if m.Versions == nil {
		return nil, malformed("versions")
	}
	return &m, nil
}

func (m *Manifest) Find(id string) (VersionEntry, bool) {
	for _, v := range m.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return VersionEntry{}, false
}

// ArgumentKind tells which argument generation a descriptor uses.
type ArgumentKind int

const (
	// ArgumentsFlat descriptors predate templated argument lists; the
	// launcher emits a fixed flag set for them.
	ArgumentsFlat ArgumentKind = iota
	// ArgumentsTemplated descriptors carry arguments.game.
	ArgumentsTemplated
)

type Arguments struct {
	Kind ArgumentKind
	// Game holds the literal tokens of a templated list. Conditional
	// tokens are dropped while parsing.
	Game []string
	// Legacy is the minecraftArguments string of flat descriptors.
	Legacy string
}

type AssetIndex struct {
	ID string `json:"id"`
	Artifact
}

type JavaVersion struct {
	Component    string `json:"component,omitempty"`
	MajorVersion int    `json:"majorVersion"`
}

// VersionDetail is a per-version descriptor.
type VersionDetail struct {
	ID         string
	Type       string
	MainClass  string
	AssetIndex AssetIndex
	Client     Artifact
	Libraries  []Library
	Arguments  Arguments
	// JavaVersion is nil for descriptors that do not declare one.
	JavaVersion *JavaVersion
}

type versionJSON struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	MainClass  string     `json:"mainClass"`
	AssetIndex AssetIndex `json:"assetIndex"`
	Downloads  struct {
		Client Artifact `json:"client"`
	} `json:"downloads"`
	Libraries []Library `json:"libraries"`
	Arguments *struct {
		Game json.RawMessage `json:"game"`
	} `json:"arguments"`
	MinecraftArguments string       `json:"minecraftArguments"`
	JavaVersion        *JavaVersion `json:"javaVersion"`
}

// ParseVersionDetail decodes a descriptor and resolves its schema
// generation once.
func ParseVersionDetail(data []byte) (*VersionDetail, error) {
	var raw versionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	switch {
	case raw.ID == "":
		return nil, malformed("id")
	case raw.MainClass == "":
		return nil, malformed("mainClass")
	case raw.AssetIndex.ID == "":
		return nil, malformed("assetIndex.id")
	case raw.AssetIndex.URL == "":
		return nil, malformed("assetIndex.url")
	case raw.Downloads.Client.URL == "":
		return nil, malformed("downloads.client.url")
	}

	d := &VersionDetail{
		ID:          raw.ID,
		Type:        raw.Type,
		MainClass:   raw.MainClass,
		AssetIndex:  raw.AssetIndex,
		Client:      raw.Downloads.Client,
		Libraries:   raw.Libraries,
		JavaVersion: raw.JavaVersion,
	}
	for i, lib := range d.Libraries {
		if lib.Kind == LibraryStructured {
			if lib.Artifact.Path == "" {
				return nil, malformed(fmt.Sprintf("libraries[%d].downloads.artifact.path", i))
			}
			continue
		}
		if _, err := ParseCoordinates(lib.Name); err != nil {
			return nil, fmt.Errorf("libraries[%d].name: %w", i, err)
		}
	}

	game, err := parseGameArguments(raw)
	if err != nil {
		return nil, err
	}
	if game != nil {
		d.Arguments = Arguments{Kind: ArgumentsTemplated, Game: game}
	} else {
		d.Arguments = Arguments{Kind: ArgumentsFlat, Legacy: raw.MinecraftArguments}
	}
	return d, nil
}

func parseGameArguments(raw versionJSON) ([]string, error) {
	if raw.Arguments == nil {
		return nil, nil
	}
	data := bytes.TrimSpace(raw.Arguments.Game)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var tokens []json.RawMessage
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("%w: arguments.game: %v", ErrMalformedManifest, err)
	}
	game := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		var s string
		if err := json.Unmarshal(tok, &s); err != nil {
			// Conditional argument objects.
			continue
		}
		game = append(game, s)
	}
	return game, nil
}
