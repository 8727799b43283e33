package supervisor

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/mclaunch/models"
)

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
}

func TestRunRelaysMergedOutput(t *testing.T) {
	skipOnWindows(t)

	var lines []string
	code, err := Run([]string{"/bin/sh", "-c", `echo one; echo two >&2; printf 'three\r\n'; printf partial`}, t.TempDir(), func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"one", "two", "three", "partial"}, lines)
}

func TestRunExitCode(t *testing.T) {
	skipOnWindows(t)

	code, err := Run([]string{"/bin/sh", "-c", "echo bye; exit 3"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunWorkingDir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	var lines []string
	_, err := Run([]string{"/bin/sh", "-c", "pwd -P"}, dir, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], dir[strings.LastIndex(dir, "/"):]), "%q not in %q", lines[0], dir)
}

func TestRunLongLine(t *testing.T) {
	skipOnWindows(t)

	var lines []string
	_, err := Run([]string{"/bin/sh", "-c", "head -c 200000 /dev/zero | tr '\\0' a; echo"}, "", func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], 200000)
}

func TestRunSpawnFailure(t *testing.T) {
	_, err := Run([]string{"/nonexistent/java"}, "", nil)
	assert.ErrorIs(t, err, models.ErrSpawn)

	_, err = Run(nil, "", nil)
	assert.ErrorIs(t, err, models.ErrSpawn)
}
