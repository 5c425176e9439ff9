package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/crate/internal/catalog"
)

type testEnv struct {
	dir   string
	music string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	music := filepath.Join(dir, "music")
	writeMP3(t, filepath.Join(music, "a", "one.mp3"), map[string]string{
		"TIT2": "One More Time",
		"TPE1": "Daft Punk",
		"TALB": "Discovery",
		"TRCK": "1",
	})
	writeMP3(t, filepath.Join(music, "a", "two.mp3"), map[string]string{
		"TIT2": "Aerodynamic",
		"TPE1": "Daft Punk",
		"TALB": "Discovery",
		"TRCK": "2",
	})
	writeMP3(t, filepath.Join(music, "b", "three.mp3"), map[string]string{
		"TIT2": "Paranoid Android",
		"TPE1": "The Radiohead",
		"TALB": "OK Computer",
	})
	require.NoError(t, os.WriteFile(filepath.Join(music, "notes.txt"), []byte("x"), 0o600))
	return &testEnv{dir: dir, music: music}
}

func writeMP3(t *testing.T, path string, frames map[string]string) {
	t.Helper()
	frame := make([]byte, 417)
	copy(frame, []byte{0xff, 0xfb, 0x90, 0x00})
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, frame, 0o600))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	for id, value := range frames {
		tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
	}
	require.NoError(t, tag.Save())
}

func (te *testEnv) catalogPath() string {
	return filepath.Join(te.dir, catalog.FileName)
}

func (te *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	full := append([]string{
		"crate",
		"--config", filepath.Join(te.dir, "missing.toml"),
		"--catalog", te.catalogPath(),
		"--history", filepath.Join(te.dir, "history.db"),
		"--log-file", filepath.Join(te.dir, "crate.log"),
	}, args...)
	err := app.Run(full)
	return out.String(), err
}

func (te *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := te.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestImportAndList(t *testing.T) {
	te := newTestEnv(t)

	out := te.mustRun(t, "import", "--plain", te.music)
	assert.Contains(t, out, "Imported 3 songs from "+te.music)

	songs := te.mustRun(t, "songs")
	assert.Contains(t, songs, "One More Time")
	assert.Contains(t, songs, "Paranoid Android")
	assert.NotContains(t, songs, "notes")

	albums := te.mustRun(t, "albums")
	assert.Contains(t, albums, "Discovery")
	assert.Contains(t, albums, "2 songs")

	artists := strings.Split(strings.TrimSpace(te.mustRun(t, "artists")), "\n")
	require.Len(t, artists, 2)
	assert.True(t, strings.HasPrefix(artists[0], "Daft Punk"), artists[0])
	assert.True(t, strings.HasPrefix(artists[1], "The Radiohead"), "articles are ignored when sorting")
}

func TestImport_MissingDirectory(t *testing.T) {
	te := newTestEnv(t)
	missing := filepath.Join(te.dir, "nope")

	_, err := te.run(t, "import", "--plain", missing)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to import music: "), err.Error())
	assert.Contains(t, err.Error(), missing)

	_, statErr := os.Stat(te.catalogPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestRescan(t *testing.T) {
	te := newTestEnv(t)

	_, err := te.run(t, "rescan", "--plain")
	require.Error(t, err, "rescan before any import")

	te.mustRun(t, "import", "--plain", te.music)
	writeMP3(t, filepath.Join(te.music, "c", "four.mp3"), map[string]string{"TIT2": "Digital Love"})

	out := te.mustRun(t, "rescan", "--plain")
	assert.Contains(t, out, "Added 1 song from")
	assert.Contains(t, te.mustRun(t, "songs"), "Digital Love")
}

func TestSearch(t *testing.T) {
	te := newTestEnv(t)
	te.mustRun(t, "import", "--plain", te.music)

	out := te.mustRun(t, "search", "one")
	assert.Contains(t, out, "Songs")
	assert.Contains(t, out, "One More Time")

	out = te.mustRun(t, "search", "zzzz")
	assert.Contains(t, out, "No results.")
}

func TestPlayAndHistory(t *testing.T) {
	te := newTestEnv(t)
	te.mustRun(t, "import", "--plain", te.music)

	out := te.mustRun(t, "play", "0")
	assert.Contains(t, out, "One More Time (1 play)")
	out = te.mustRun(t, "play", "0")
	assert.Contains(t, out, "(2 plays)")

	history := te.mustRun(t, "history")
	assert.Equal(t, 2, strings.Count(history, "One More Time"))
	assert.Contains(t, history, "last import: 3 songs")

	_, err := te.run(t, "play", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such song")

	most := te.mustRun(t, "playlist", "show", "--", "-2")
	assert.Contains(t, most, "Most Played")
	assert.Contains(t, most, "One More Time")
}

func TestPlaylists(t *testing.T) {
	te := newTestEnv(t)
	te.mustRun(t, "import", "--plain", te.music)

	out := te.mustRun(t, "playlist", "create", "Road", "Trip")
	assert.Contains(t, out, `Created playlist 0 "Road Trip"`)

	out = te.mustRun(t, "playlist", "add", "0", "2", "1", "2")
	assert.Contains(t, out, "Added 2 songs")

	show := te.mustRun(t, "playlist", "show", "0")
	assert.Contains(t, show, "Paranoid Android")
	assert.Contains(t, show, "Aerodynamic")

	list := te.mustRun(t, "playlists")
	assert.Contains(t, list, "Road Trip")
	assert.Contains(t, list, "Most Played")
	assert.Contains(t, list, "Recently Played")

	user := te.mustRun(t, "playlists", "--user")
	assert.Contains(t, user, "Road Trip")
	assert.NotContains(t, user, "Most Played")

	te.mustRun(t, "playlist", "drop", "0", "2")
	assert.NotContains(t, te.mustRun(t, "playlist", "show", "0"), "Paranoid Android")

	te.mustRun(t, "playlist", "remove", "0")
	assert.NotContains(t, te.mustRun(t, "playlists"), "Road Trip")

	_, err := te.run(t, "playlist", "show", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to find playlist '7'")
}

func TestPlaylistsSurviveReimport(t *testing.T) {
	te := newTestEnv(t)
	te.mustRun(t, "import", "--plain", te.music)
	te.mustRun(t, "playlist", "create", "Keep")
	te.mustRun(t, "playlist", "add", "0", "1")

	te.mustRun(t, "import", "--plain", te.music)

	assert.Contains(t, te.mustRun(t, "playlist", "show", "0"), "Aerodynamic")
}

func TestNowPlaying(t *testing.T) {
	te := newTestEnv(t)
	te.mustRun(t, "import", "--plain", te.music)

	assert.Contains(t, te.mustRun(t, "nowplaying"), "Nothing queued.")

	out := te.mustRun(t, "nowplaying", "set", "2", "0", "42")
	assert.Contains(t, out, "2 songs")

	lines := strings.Split(strings.TrimSpace(te.mustRun(t, "nowplaying")), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Paranoid Android")
	assert.Contains(t, lines[1], "One More Time")
}

func TestCancelledMessage(t *testing.T) {
	assert.Equal(t, "Import cancelled, catalog unchanged.", cancelledMessage("import"))
	assert.Equal(t, "Rescan cancelled, catalog unchanged.", cancelledMessage("rescan"))
}
