package builder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/mclaunch/models"
)

const legacyDescriptor = `{
	"id": "1.12.2",
	"type": "release",
	"mainClass": "net.minecraft.launchwrapper.Launch",
	"minecraftArguments": "--username ${auth_player_name} --tweakClass optifine.OptiFineTweaker",
	"assetIndex": {"id": "1.12", "url": "https://assets.example/1.12.json"},
	"downloads": {"client": {"url": "https://client.example/1.12.2.jar"}},
	"libraries": [
		{"name": "net.minecraft:launchwrapper:1.12"},
		{"name": "org.lwjgl.lwjgl:lwjgl:2.9.4", "url": "https://libs.example/"},
		{"name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.4:natives-osx",
			"rules": [{"action": "allow", "os": {"name": "osx"}}]},
		{"name": "com.mojang:realms:1.10.22", "url": "https://libs.example/"}
	]
}`

const templatedDescriptor = `{
	"id": "1.16.5",
	"type": "release",
	"mainClass": "net.minecraft.client.main.Main",
	"arguments": {
		"game": [
			"--username", "${auth_player_name}",
			"--version", "${version_name}",
			"--gameDir", "${game_directory}",
			"--assetsDir", "${assets_root}",
			"--assetIndex", "${assets_index_name}",
			"--uuid", "${auth_uuid}",
			"--accessToken", "${auth_access_token}",
			"--userProperties", "${user_properties}",
			"--userType", "${user_type}",
			{"rules": [{"action": "allow", "features": {"is_demo_user": true}}], "value": "--demo"},
			"--title=${version_name}@${auth_player_name}"
		],
		"jvm": ["-Djava.library.path=${natives_directory}"]
	},
	"assetIndex": {"id": "1.16", "url": "https://assets.example/1.16.json"},
	"downloads": {"client": {"url": "https://client.example/1.16.5.jar"}},
	"libraries": [
		{"name": "com.mojang:patchy:1.1", "downloads": {"artifact": {
			"path": "com/mojang/patchy/1.1/patchy-1.1.jar",
			"url": "https://libraries.example/com/mojang/patchy/1.1/patchy-1.1.jar"}}},
		{"name": "org.lwjgl:lwjgl:3.2.2:natives-windows",
			"rules": [{"action": "allow", "os": {"name": "windows"}}],
			"downloads": {"artifact": {
				"path": "org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2-natives-windows.jar",
				"url": "https://libraries.example/natives.jar"}}}
	]
}`

func touch(t *testing.T, fs billy.Filesystem, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, util.WriteFile(fs, filepath.FromSlash(p), []byte("x"), 0644))
	}
}

func writeDescriptor(t *testing.T, fs billy.Filesystem, id, data string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, filepath.Join("versions", id, id+".json"), []byte(data), 0644))
}

func newBuilder(fs billy.Filesystem, platform string) *Builder {
	return &Builder{
		Files:    fs,
		Platform: platform,
		NewUUID:  func() string { return "00000000-0000-4000-8000-000000000000" },
	}
}

func TestBuildTemplated(t *testing.T) {
	fs := memfs.New()
	writeDescriptor(t, fs, "1.16.5", templatedDescriptor)
	touch(t, fs,
		"versions/1.16.5/1.16.5.jar",
		"libraries/com/mojang/patchy/1.1/patchy-1.1.jar",
		"libraries/org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2-natives-windows.jar",
	)
	root := filepath.FromSlash("/data/mc")

	argv, err := newBuilder(fs, "linux").Build("1.16.5", LaunchConfig{
		JavaPath:    "/usr/bin/java",
		Username:    "Steve",
		MemoryMB:    2048,
		InstallRoot: root,
	})
	require.NoError(t, err)

	cp := strings.Join([]string{
		filepath.Join(root, "libraries", "com", "mojang", "patchy", "1.1", "patchy-1.1.jar"),
		filepath.Join(root, "versions", "1.16.5", "1.16.5.jar"),
	}, string(os.PathListSeparator))

	assert.Equal(t, []string{
		"/usr/bin/java",
		"-Xmx2048M", "-Xms2048M",
		"-cp", cp,
		"net.minecraft.client.main.Main",
		"--username", "Steve",
		"--version", "1.16.5",
		"--gameDir", root,
		"--assetsDir", filepath.Join(root, "assets"),
		"--assetIndex", "1.16",
		"--uuid", "00000000-0000-4000-8000-000000000000",
		"--accessToken", AccessToken,
		"--userProperties", "{}",
		"--userType", "mojang",
		"--title=1.16.5@Steve",
	}, argv)
}

func TestBuildLegacy(t *testing.T) {
	fs := memfs.New()
	writeDescriptor(t, fs, "1.12.2", legacyDescriptor)
	touch(t, fs,
		"versions/1.12.2/1.12.2.jar",
		"libraries/net/minecraft/launchwrapper/1.12/launchwrapper-1.12.jar",
		"libraries/org/lwjgl/lwjgl/lwjgl/2.9.4/lwjgl-2.9.4.jar",
		"libraries/org/lwjgl/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-osx.jar",
	)
	root := filepath.FromSlash("/data/mc")

	argv, err := newBuilder(fs, "darwin").Build("1.12.2", LaunchConfig{
		JavaPath:    "java",
		Username:    "Steve",
		InstallRoot: root,
	})
	require.NoError(t, err)

	require.Equal(t, "-cp", argv[1], "no memory flags when MemoryMB is zero")
	cp := strings.Split(argv[2], string(os.PathListSeparator))
	assert.Equal(t, []string{
		filepath.Join(root, "libraries", "net", "minecraft", "launchwrapper", "1.12", "launchwrapper-1.12.jar"),
		filepath.Join(root, "libraries", "org", "lwjgl", "lwjgl", "lwjgl", "2.9.4", "lwjgl-2.9.4.jar"),
		filepath.Join(root, "libraries", "org", "lwjgl", "lwjgl", "lwjgl-platform", "2.9.4", "lwjgl-platform-2.9.4-natives-osx.jar"),
		filepath.Join(root, "versions", "1.12.2", "1.12.2.jar"),
	}, cp, "missing realms jar is left out")

	assert.Equal(t, "net.minecraft.launchwrapper.Launch", argv[3])
	assert.Equal(t, []string{
		"--username", "Steve",
		"--version", "1.12.2",
		"--gameDir", root,
		"--assetsDir", filepath.Join(root, "assets"),
		"--assetIndex", "1.12",
		"--uuid", "00000000-0000-4000-8000-000000000000",
		"--accessToken", "token",
		"--userProperties", "{}",
		"--userType", "mojang",
	}, argv[4:])
}

func TestClasspathIdempotent(t *testing.T) {
	fs := memfs.New()
	writeDescriptor(t, fs, "1.12.2", legacyDescriptor)
	touch(t, fs,
		"versions/1.12.2/1.12.2.jar",
		"libraries/net/minecraft/launchwrapper/1.12/launchwrapper-1.12.jar",
	)
	d, err := models.ParseVersionDetail([]byte(legacyDescriptor))
	require.NoError(t, err)

	b := newBuilder(fs, "linux")
	first, err := b.Classpath(fs, "1.12.2", d, "/data/mc")
	require.NoError(t, err)
	second, err := b.Classpath(fs, "1.12.2", d, "/data/mc")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestBuildRenamedVersionDir(t *testing.T) {
	fs := memfs.New()
	writeDescriptor(t, fs, "1.16.5-custom", templatedDescriptor)
	touch(t, fs, "versions/1.16.5-custom/1.16.5-custom.jar")
	root := filepath.FromSlash("/data/mc")

	argv, err := newBuilder(fs, "linux").Build("1.16.5-custom", LaunchConfig{
		Username:    "Steve",
		InstallRoot: root,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "versions", "1.16.5-custom", "1.16.5-custom.jar"), argv[2])
	assert.Contains(t, argv, "1.16.5-custom", "version_name comes from the directory")

	// A jar named after the descriptor id does not count.
	fs = memfs.New()
	writeDescriptor(t, fs, "1.16.5-custom", templatedDescriptor)
	touch(t, fs, "versions/1.16.5/1.16.5.jar")
	_, err = newBuilder(fs, "linux").Build("1.16.5-custom", LaunchConfig{InstallRoot: root})
	assert.ErrorIs(t, err, models.ErrNotInstalled)
}

func TestFreshUUID(t *testing.T) {
	fs := memfs.New()
	writeDescriptor(t, fs, "1.12.2", legacyDescriptor)
	touch(t, fs, "versions/1.12.2/1.12.2.jar")

	b := &Builder{Files: fs, Platform: "linux"}
	cfg := LaunchConfig{Username: "Alex", InstallRoot: "/data/mc"}
	first, err := b.Build("1.12.2", cfg)
	require.NoError(t, err)
	second, err := b.Build("1.12.2", cfg)
	require.NoError(t, err)

	uuidOf := func(argv []string) string {
		for i, arg := range argv {
			if arg == "--uuid" {
				return argv[i+1]
			}
		}
		return ""
	}
	assert.Len(t, uuidOf(first), 36)
	assert.NotEqual(t, uuidOf(first), uuidOf(second))
	assert.Equal(t, "java", first[0])
}

func TestNotInstalled(t *testing.T) {
	fs := memfs.New()
	b := newBuilder(fs, "linux")

	_, err := b.Build("1.12.2", LaunchConfig{InstallRoot: "/data/mc"})
	assert.ErrorIs(t, err, models.ErrNotInstalled)

	writeDescriptor(t, fs, "1.12.2", legacyDescriptor)
	_, err = b.Build("1.12.2", LaunchConfig{InstallRoot: "/data/mc"})
	assert.ErrorIs(t, err, models.ErrNotInstalled)
	assert.Contains(t, err.Error(), "1.12.2.jar")
}
