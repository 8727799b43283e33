package javart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredMajor(t *testing.T) {
	tests := map[string]int{
		"1.7.10": 8,
		"1.12.2": 8,
		"1.16.5": 8,
		"1.17":   16,
		"1.17.1": 16,
		"1.20.4": 16,
		"2.0":    16,
		"21w03a": 8,
		"1.x":    8,
		"":       8,
	}
	for version, want := range tests {
		assert.Equal(t, want, RequiredMajor(version), "RequiredMajor(%q)", version)
	}
}

func TestReportsMajor(t *testing.T) {
	tests := []struct {
		out   string
		major int
		want  bool
	}{
		{`java version "1.8.0_292"`, 8, true},
		{`openjdk version "16.0.1" 2021-04-20`, 16, true},
		{`openjdk version "17.0.2" 2022-01-18`, 16, false},
		{`openjdk version "17.0.2" 2022-01-18`, 1, false},
		{`java version "1.8.0_292"`, 16, false},
		{`openjdk version "11.0.11"`, 8, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reportsMajor([]byte(tt.out), tt.major), "%q for %d", tt.out, tt.major)
	}
}

type fakeHost struct {
	env    map[string]string
	files  map[string]string // path -> -version output
	probed []string
}

type fakeInfo struct{ os.FileInfo }

func (fakeInfo) IsDir() bool { return false }

func (h *fakeHost) locator(goos string) *Locator {
	return &Locator{
		GOOS:   goos,
		Getenv: func(k string) string { return h.env[k] },
		Stat: func(p string) (os.FileInfo, error) {
			if _, ok := h.files[p]; ok {
				return fakeInfo{}, nil
			}
			return nil, os.ErrNotExist
		},
		Glob: func(pattern string) ([]string, error) {
			var matches []string
			for p := range h.files {
				if ok, _ := filepath.Match(pattern, p); ok {
					matches = append(matches, p)
				}
			}
			return matches, nil
		},
		Probe: func(ctx context.Context, p string) ([]byte, error) {
			h.probed = append(h.probed, p)
			out := h.files[p]
			if out == "" {
				return nil, errors.New("exec format error")
			}
			return []byte(out), nil
		},
	}
}

func TestLocateJavaHome(t *testing.T) {
	home := filepath.Join("/", "jdk16")
	h := &fakeHost{
		env: map[string]string{"JAVA_HOME": home},
		files: map[string]string{
			filepath.Join(home, "bin", "java"): `openjdk version "16.0.1"`,
			"/usr/bin/java":                     `openjdk version "16.0.2"`,
		},
	}
	assert.Equal(t, filepath.Join(home, "bin", "java"), h.locator("linux").Locate(context.Background(), 16))
}

func TestLocateSkipsWrongVersion(t *testing.T) {
	h := &fakeHost{
		env: map[string]string{"JAVA_HOME": "/jdk8"},
		files: map[string]string{
			filepath.Join("/jdk8", "bin", "java"): `java version "1.8.0_292"`,
			"/usr/bin/java":                       `openjdk version "17.0.2"`,
			"/opt/java/bin/java":                  `openjdk version "16.0.2"`,
		},
	}
	assert.Equal(t, "/opt/java/bin/java", h.locator("linux").Locate(context.Background(), 16))
	assert.Equal(t, []string{filepath.Join("/jdk8", "bin", "java"), "/usr/bin/java", "/opt/java/bin/java"}, h.probed)
}

func TestLocateFallback(t *testing.T) {
	h := &fakeHost{
		files: map[string]string{
			"/usr/bin/java":       "",
			"/usr/local/bin/java": `java version "1.8.0_292"`,
		},
	}
	assert.Equal(t, Fallback, h.locator("linux").Locate(context.Background(), 16))
}

func TestCandidatesWindows(t *testing.T) {
	h := &fakeHost{env: map[string]string{
		"ProgramFiles":      `C:\Program Files`,
		"ProgramFiles(x86)": `C:\Program Files (x86)`,
	}}
	paths := h.locator("windows").Candidates(8)
	require.Len(t, paths, 8)
	assert.Equal(t, filepath.Join(`C:\Program Files`, "Java", "jdk-8", "bin", "java.exe"), paths[0])
	assert.Equal(t, filepath.Join(`C:\Program Files`, "Java", "jre1.8.0", "bin", "java.exe"), paths[3])
	assert.Equal(t, filepath.Join(`C:\Program Files (x86)`, "Java", "jdk-8", "bin", "java.exe"), paths[4])
}

func TestCandidatesDarwin(t *testing.T) {
	jvm := "/Library/Java/JavaVirtualMachines/temurin-16.jdk/Contents/Home/bin/java"
	h := &fakeHost{files: map[string]string{jvm: `openjdk version "16.0.2"`}}
	l := h.locator("darwin")

	assert.Contains(t, l.Candidates(16), jvm)
	assert.Contains(t, l.Candidates(16), "/usr/local/bin/java")
	assert.Equal(t, jvm, l.Locate(context.Background(), 16))
}

func TestProbeTimeout(t *testing.T) {
	h := &fakeHost{files: map[string]string{"/usr/bin/java": `openjdk version "16"`}}
	l := h.locator("linux")
	l.Timeout = 10 * time.Millisecond
	l.Probe = func(ctx context.Context, p string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	assert.Equal(t, Fallback, l.Locate(context.Background(), 16))
}
