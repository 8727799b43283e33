// Package javart locates a java executable suitable for a game version.
package javart

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Fallback is returned when no candidate qualifies.
const Fallback = "java"

const defaultTimeout = 5 * time.Second

// RequiredMajor returns the java major version a game version needs:
// 16 for 1.17 and newer, 8 otherwise. Ids with a major component above 1
// count as newer, where a plain minor comparison would yield 8.
//
// This is only a fallback. Callers should prefer the javaVersion recorded
// in an installed descriptor, which names 17 for 1.18 and later.
func RequiredMajor(gameVersion string) int {
	parts := strings.Split(gameVersion, ".")
	if len(parts) < 2 {
		return 8
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 8
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 8
	}
	if major > 1 || minor >= 17 {
		return 16
	}
	return 8
}

// Probe runs "<path> -version" and returns what it printed on stderr.
type Probe func(ctx context.Context, path string) ([]byte, error)

func execProbe(ctx context.Context, path string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-version")
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// Locator searches JAVA_HOME, well-known install roots and finally the bare
// command name. Zero fields fall back to the host environment.
type Locator struct {
	GOOS    string
	Getenv  func(string) string
	Stat    func(string) (os.FileInfo, error)
	Glob    func(pattern string) ([]string, error)
	Probe   Probe
	Timeout time.Duration

	Log logrus.FieldLogger
}

// Locate returns the first candidate whose reported version matches
// requiredMajor. It never fails and falls back to "java".
func (l *Locator) Locate(ctx context.Context, requiredMajor int) string {
	for _, path := range l.Candidates(requiredMajor) {
		if !l.exists(path) {
			continue
		}
		if l.matches(ctx, path, requiredMajor) {
			return path
		}
		l.log().Debugf("skip %q: not java %d", path, requiredMajor)
	}
	return Fallback
}

// Candidates lists the paths Locate checks, in order.
func (l *Locator) Candidates(requiredMajor int) []string {
	goos := l.goos()
	var paths []string
	if home := l.getenv("JAVA_HOME"); home != "" {
		paths = append(paths, filepath.Join(home, "bin", javaBin(goos)))
	}

	switch goos {
	case "windows":
		n := strconv.Itoa(requiredMajor)
		dirs := []string{
			"jdk-" + n,
			"jre-" + n,
			"jdk1." + n + ".0",
			"jre1." + n + ".0",
		}
		for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
			root := l.getenv(env)
			if root == "" {
				continue
			}
			for _, dir := range dirs {
				paths = append(paths, filepath.Join(root, "Java", dir, "bin", "java.exe"))
			}
		}
	default:
		paths = append(paths,
			"/usr/bin/java",
			"/usr/local/bin/java",
			"/opt/java/bin/java",
		)
		if goos == "darwin" {
			matches, err := l.glob("/Library/Java/JavaVirtualMachines/*/Contents/Home/bin/java")
			if err != nil {
				l.log().Warnf("glob java homes: %+v", err)
			}
			paths = append(paths, matches...)
		}
	}
	return paths
}

// matches runs the candidate with a bounded timeout and looks for
// `version "N` or `version "1.N` in its output.
func (l *Locator) matches(ctx context.Context, path string, requiredMajor int) bool {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	probe := l.Probe
	if probe == nil {
		probe = execProbe
	}
	out, err := probe(ctx, path)
	if err != nil {
		l.log().Debugf("probe %q: %+v", path, err)
		return false
	}
	return reportsMajor(out, requiredMajor)
}

func reportsMajor(out []byte, major int) bool {
	for _, prefix := range []string{
		fmt.Sprintf(`version "%d`, major),
		fmt.Sprintf(`version "1.%d`, major),
	} {
		i := bytes.Index(out, []byte(prefix))
		if i < 0 {
			continue
		}
		// Reject "version \"17" when looking for 1.
		rest := out[i+len(prefix):]
		if len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
			continue
		}
		return true
	}
	return false
}

func javaBin(goos string) string {
	if goos == "windows" {
		return "java.exe"
	}
	return "java"
}

func (l *Locator) exists(path string) bool {
	stat := l.Stat
	if stat == nil {
		stat = os.Stat
	}
	fi, err := stat(path)
	return err == nil && !fi.IsDir()
}

func (l *Locator) goos() string {
	if l.GOOS == "" {
		return runtime.GOOS
	}
	return l.GOOS
}

func (l *Locator) getenv(key string) string {
	if l.Getenv == nil {
		return os.Getenv(key)
	}
	return l.Getenv(key)
}

func (l *Locator) glob(pattern string) ([]string, error) {
	if l.Glob == nil {
		return filepath.Glob(pattern)
	}
	return l.Glob(pattern)
}

func (l *Locator) log() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}
