package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/library"
	"github.com/llehouerou/crate/internal/tags"
)

// fakeExtractor derives tags from the file name; names containing "bad"
// fail to extract.
type fakeExtractor struct {
	mu    sync.Mutex
	calls []string
	hook  func(path string)
}

func (f *fakeExtractor) Extract(path string) (*tags.FileInfo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.Contains(name, "bad") {
		return nil, errors.New("corrupt file")
	}
	return &tags.FileInfo{
		Tag: tags.Tag{
			Path:        path,
			Title:       strings.ToUpper(name),
			Artist:      "Artist",
			AlbumArtist: "Album Artist",
			Album:       "Album",
			TrackNumber: 1,
		},
		AudioInfo: tags.AudioInfo{Duration: 90 * time.Second},
	}, nil
}

type recordingSink struct {
	mu      sync.Mutex
	updates [][2]int
}

func (r *recordingSink) UpdateProgress(done, total int) {
	r.mu.Lock()
	r.updates = append(r.updates, [2]int{done, total})
	r.mu.Unlock()
}

func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
}

func musicTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	touch(t,
		filepath.Join(root, "song1.mp3"),
		filepath.Join(root, "song2.wav"),
		filepath.Join(root, "song3.m4a"),
		filepath.Join(root, "doc.txt"),
		filepath.Join(root, "img.jpg"),
		filepath.Join(root, "sub", "nested.mp3"),
	)
	return root
}

type harness struct {
	store    *catalog.Store
	index    *library.Index
	importer *Importer
	ext      *fakeExtractor
	path     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	path := filepath.Join(t.TempDir(), catalog.FileName)
	store := catalog.NewStore(catalog.NewFile(path))
	index := library.NewIndex(store)
	ext := &fakeExtractor{}
	im := New(Config{
		Store:      store,
		Extractor:  ext,
		Workers:    2,
		Invalidate: []Invalidator{index},
	})
	return &harness{store: store, index: index, importer: im, ext: ext, path: path}
}

func TestFindSupported(t *testing.T) {
	root := musicTree(t)

	files, err := FindSupported(root)
	require.NoError(t, err)
	assert.Len(t, files, 4)
	for _, f := range files {
		assert.True(t, tags.IsMusicFile(f), f)
	}

	n, err := CountSupported(root)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestFindSupported_BadRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := FindSupported(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)

	file := filepath.Join(t.TempDir(), "file.mp3")
	touch(t, file)
	_, err = CountSupported(file)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestImport_BuildsCatalog(t *testing.T) {
	h := newHarness(t)
	root := musicTree(t)
	sink := &recordingSink{}

	res, err := h.importer.Import(context.Background(), root, sink)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 4, res.Imported)
	assert.Equal(t, 4, res.Added)
	assert.Zero(t, res.Skipped)

	songs := h.store.All()
	require.Len(t, songs, 4)
	for i, s := range songs {
		assert.Equal(t, i, s.ID)
		assert.Equal(t, "Album Artist", s.Artist, "album artist is stored as the artist")
		assert.Equal(t, 90*time.Second, s.Length)
	}

	header, err := h.store.Header()
	require.NoError(t, err)
	assert.Equal(t, catalog.Header{Path: root, FileNum: 4, LastID: 3}, header)

	require.Len(t, sink.updates, 4)
	for i, u := range sink.updates {
		assert.Equal(t, [2]int{i + 1, 4}, u)
	}
}

func TestImport_SkipsBadFiles(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	touch(t,
		filepath.Join(root, "a.mp3"),
		filepath.Join(root, "bad.mp3"),
		filepath.Join(root, "c.wav"),
	)
	sink := &recordingSink{}

	res, err := h.importer.Import(context.Background(), root, sink)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, h.store.All(), 2)
	require.Len(t, sink.updates, 3, "failed files still count toward progress")
	assert.Equal(t, [2]int{3, 3}, sink.updates[2])
}

func TestImport_EmptyDirectory(t *testing.T) {
	h := newHarness(t)
	sink := &recordingSink{}

	res, err := h.importer.Import(context.Background(), t.TempDir(), sink)
	require.NoError(t, err)

	assert.Zero(t, res.Imported)
	assert.Equal(t, [][2]int{{0, 0}}, sink.updates)
	assert.Empty(t, h.store.All())
}

func TestImport_BadRootIsPropagated(t *testing.T) {
	h := newHarness(t)
	missing := filepath.Join(t.TempDir(), "gone")

	_, err := h.importer.Import(context.Background(), missing, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)

	_, statErr := os.Stat(h.path)
	assert.True(t, os.IsNotExist(statErr), "catalog must not be written")
}

func TestImport_KeepsIDsAndPlaysForKnownFiles(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp3"), filepath.Join(root, "b.mp3"))

	_, err := h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)

	b, ok := h.store.ByTitle("B")
	require.True(t, ok)
	h.store.RecordPlay(b)

	require.NoError(t, os.Remove(filepath.Join(root, "a.mp3")))
	touch(t, filepath.Join(root, "c.mp3"))

	res, err := h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	b, ok = h.store.ByTitle("B")
	require.True(t, ok)
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, 1, b.PlayCount)

	c, ok := h.store.ByTitle("C")
	require.True(t, ok)
	assert.Equal(t, 2, c.ID)

	_, ok = h.store.ByTitle("A")
	assert.False(t, ok)
}

func TestImport_NeverReusesRemovedIDs(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp3"), filepath.Join(root, "b.mp3"))

	_, err := h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)
	b, ok := h.store.ByTitle("B")
	require.True(t, ok)
	removedID := b.ID

	require.NoError(t, os.Remove(filepath.Join(root, "b.mp3")))
	_, err = h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)

	touch(t, filepath.Join(root, "c.mp3"))
	_, err = h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)

	c, ok := h.store.ByTitle("C")
	require.True(t, ok)
	assert.Greater(t, c.ID, removedID, "id of a removed song must not be handed out again")

	header, err := h.store.Header()
	require.NoError(t, err)
	assert.Equal(t, c.ID, header.LastID)
}

func TestRescan_NeverReusesRemovedIDs(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp3"), filepath.Join(root, "b.mp3"))

	_, err := h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "b.mp3")))
	_, err = h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)

	touch(t, filepath.Join(root, "c.mp3"))
	_, err = h.importer.Rescan(context.Background(), nil)
	require.NoError(t, err)

	c, ok := h.store.ByTitle("C")
	require.True(t, ok)
	assert.Equal(t, 2, c.ID)
}

func TestImport_KeepsPlaysRecordedWhileRunning(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp3"), filepath.Join(root, "b.mp3"))

	_, err := h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)

	var once sync.Once
	h.ext.hook = func(string) {
		once.Do(func() {
			// runs on a worker goroutine, so no require here
			if a, ok := h.store.ByTitle("A"); assert.True(t, ok) {
				h.store.RecordPlay(a)
			}
		})
	}

	_, err = h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)

	a, ok := h.store.ByTitle("A")
	require.True(t, ok)
	assert.Equal(t, 1, a.PlayCount)
	assert.NotNil(t, a.PlayDate)

	doc, err := catalog.NewFile(h.path).Read()
	require.NoError(t, err)
	node := doc.Song(a.ID)
	require.NotNil(t, node)
	assert.Equal(t, "1", node.PlayCount)
}

func TestImport_InvalidatesIndex(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp3"))

	assert.Empty(t, h.index.Albums())

	_, err := h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Len(t, h.index.Albums(), 1)
}

func TestImport_CancelLeavesCatalogUntouched(t *testing.T) {
	h := newHarness(t)
	root := musicTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	h.ext.hook = func(string) { cancel() }

	_, err := h.importer.Import(ctx, root, nil)
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(h.path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Less(t, len(h.ext.calls), 4)
}

func TestRescan_AddsOnlyNewFiles(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp3"))

	_, err := h.importer.Import(context.Background(), root, nil)
	require.NoError(t, err)

	touch(t, filepath.Join(root, "z", "b.m4a"), filepath.Join(root, "bad.wav"))
	h.ext.calls = nil
	sink := &recordingSink{}

	res, err := h.importer.Rescan(context.Background(), sink)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, h.ext.calls, 2, "known files are not re-read")
	assert.Len(t, sink.updates, 2)

	songs := h.store.All()
	require.Len(t, songs, 2)
	assert.Equal(t, 1, songs[1].ID)
	assert.Equal(t, "B", songs[1].Title)
}

func TestRescan_WithoutImport(t *testing.T) {
	h := newHarness(t)

	_, err := h.importer.Rescan(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoLibraryPath)
}

func TestTask(t *testing.T) {
	h := newHarness(t)
	root := musicTree(t)

	task := Start(context.Background(), func(ctx context.Context) (*Result, error) {
		return h.importer.Import(ctx, root, nil)
	})
	ok, res, err := task.Wait()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, res.Imported)
	<-task.Done()
}

func TestTask_Cancel(t *testing.T) {
	release := make(chan struct{})
	task := Start(context.Background(), func(ctx context.Context) (*Result, error) {
		close(release)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-release
	task.Cancel()

	ok, res, err := task.Wait()
	assert.False(t, ok)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSinkFunc(t *testing.T) {
	var got [2]int
	var sink ProgressSink = SinkFunc(func(done, total int) { got = [2]int{done, total} })
	sink.UpdateProgress(2, 5)
	assert.Equal(t, [2]int{2, 5}, got)
}

// createTaggedMP3 writes a minimal MPEG frame with ID3v2 frames on top.
func createTaggedMP3(t *testing.T, path string, frames map[string]string) {
	t.Helper()
	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, mp3Frame, 0o600))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	for id, value := range frames {
		tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
	}
	require.NoError(t, tag.Save())
}

func TestImport_RealTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), catalog.FileName)
	store := catalog.NewStore(catalog.NewFile(path))
	im := New(Config{Store: store})

	root := t.TempDir()
	createTaggedMP3(t, filepath.Join(root, "one.mp3"), map[string]string{
		"TIT2": "One",
		"TPE1": "Band",
		"TALB": "Record",
		"TRCK": "2/10",
	})
	createTaggedMP3(t, filepath.Join(root, "untitled.mp3"), map[string]string{
		"TPE1": "Band",
	})

	res, err := im.Import(context.Background(), root, nil)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)

	doc, err := catalog.NewFile(path).Read()
	require.NoError(t, err)
	require.Len(t, doc.Songs.Items, 2)
	raw := doc.Songs.Items[1]
	assert.Empty(t, raw.Title, "missing title serializes as empty")
	assert.Empty(t, raw.Album)
	assert.Equal(t, "0", raw.TrackNumber)

	one, ok := store.ByTitle("One")
	require.True(t, ok)
	assert.Equal(t, "Band", one.Artist)
	assert.Equal(t, 2, one.TrackNumber)

	untitled, ok := store.ByTitle("untitled")
	require.True(t, ok, "title falls back to the file name when loaded")
	assert.Equal(t, catalog.UnknownAlbum, untitled.Album)
}
