package services

import (
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvd/internal/models"
	"tvd/internal/structures"
	"tvd/internal/testutil"
)

func newTestVideoService(fm *testutil.MockFileManager) VideoServiceInterface {
	conf := &structures.Config{
		Persistence: structures.Persistence{FilePath: "videos.json"},
	}
	return NewVideoService(conf, fm, &testutil.MockLogger{})
}

func sampleRecord(id string, createdAt int64) *models.VideoRecord {
	return &models.VideoRecord{
		Id:        id,
		NickName:  "movie",
		Caption:   "caption",
		ChatId:    100,
		MessageId: 7,
		CreatedAt: createdAt,
	}
}

func TestVideoService_SetThenGet(t *testing.T) {
	vs := newTestVideoService(testutil.NewMockFileManager())

	rec := sampleRecord("100/7", 1000)
	require.NoError(t, vs.Set(rec.Id, rec))

	got, ok := vs.Get("100/7")
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestVideoService_GetMissing(t *testing.T) {
	vs := newTestVideoService(testutil.NewMockFileManager())

	_, ok := vs.Get("1/1")
	assert.False(t, ok)
}

func TestVideoService_SetWritesThrough(t *testing.T) {
	fm := testutil.NewMockFileManager()
	vs := newTestVideoService(fm)

	require.NoError(t, vs.Set("100/7", sampleRecord("100/7", 1000)))

	blob, ok := fm.Files["videos.json"]
	require.True(t, ok)
	var stored models.VideoStorage
	require.NoError(t, json.Unmarshal(blob, &stored))
	require.Contains(t, stored, "100/7")
	assert.Equal(t, int64(1000), stored["100/7"].CreatedAt)
}

func TestVideoService_SetKeepsMemoryOnPersistFailure(t *testing.T) {
	fm := testutil.NewMockFileManager()
	fm.SaveErr = errors.New("disk full")
	vs := newTestVideoService(fm)

	err := vs.Set("100/7", sampleRecord("100/7", 1000))
	require.Error(t, err)

	got, ok := vs.Get("100/7")
	require.True(t, ok)
	assert.Equal(t, "movie", got.NickName)
}

func TestVideoService_RenamePreservesCreatedAt(t *testing.T) {
	vs := newTestVideoService(testutil.NewMockFileManager())
	require.NoError(t, vs.Set("100/7", sampleRecord("100/7", 1234)))

	for _, name := range []string{"first", "second", "third"} {
		updated, err := vs.Rename("100/7", name)
		require.NoError(t, err)
		assert.Equal(t, name, updated.NickName)
		assert.Equal(t, int64(1234), updated.CreatedAt)
	}

	got, ok := vs.Get("100/7")
	require.True(t, ok)
	assert.Equal(t, "third", got.NickName)
	assert.Equal(t, "caption", got.Caption)
	assert.Equal(t, int64(1234), got.CreatedAt)
}

func TestVideoService_RenameMissing(t *testing.T) {
	vs := newTestVideoService(testutil.NewMockFileManager())

	_, err := vs.Rename("1/1", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVideoService_DeleteAbsentIsNoop(t *testing.T) {
	fm := testutil.NewMockFileManager()
	vs := newTestVideoService(fm)

	removed, err := vs.Delete("1/1")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, fm.Saves)
}

func TestVideoService_DeleteRemovesAndPersists(t *testing.T) {
	fm := testutil.NewMockFileManager()
	vs := newTestVideoService(fm)
	require.NoError(t, vs.Set("100/7", sampleRecord("100/7", 1000)))

	removed, err := vs.Delete("100/7")
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok := vs.Get("100/7")
	assert.False(t, ok)

	var stored models.VideoStorage
	require.NoError(t, json.Unmarshal(fm.Files["videos.json"], &stored))
	assert.Empty(t, stored)
}

func TestVideoService_GetDoesNotWaitForPersist(t *testing.T) {
	fm := testutil.NewMockFileManager()
	vs := newTestVideoService(fm)
	require.NoError(t, vs.Set("1/1", sampleRecord("1/1", 100)))
	fm.SaveDelay = 300 * time.Millisecond

	done := make(chan struct{})
	go func() {
		_ = vs.Set("100/7", sampleRecord("100/7", 1000))
		close(done)
	}()
	// Let the writer reach the file write before probing the read path.
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	_, ok := vs.Get("1/1")
	elapsed := time.Since(start)
	<-done

	assert.True(t, ok)
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestVideoService_LoadReturnsStoredMap(t *testing.T) {
	fm := testutil.NewMockFileManager()
	vs := newTestVideoService(fm)
	require.NoError(t, vs.Set("100/7", sampleRecord("100/7", 1000)))

	stored, err := vs.Load()
	require.NoError(t, err)
	require.Contains(t, stored, "100/7")
	assert.Equal(t, int64(1000), stored["100/7"].CreatedAt)

	// Load never touches the in-memory map.
	vs.PutSnapshot(models.VideoStorage{})
	stored, err = vs.Load()
	require.NoError(t, err)
	assert.Contains(t, stored, "100/7")
}

func TestVideoService_ListSortedNewestFirst(t *testing.T) {
	vs := newTestVideoService(testutil.NewMockFileManager())
	require.NoError(t, vs.Set("1/1", sampleRecord("1/1", 100)))
	require.NoError(t, vs.Set("1/2", sampleRecord("1/2", 300)))
	require.NoError(t, vs.Set("1/3", sampleRecord("1/3", 200)))

	list := vs.List()
	require.Len(t, list, 3)
	assert.Equal(t, "1/2", list[0].Id)
	assert.Equal(t, "1/3", list[1].Id)
	assert.Equal(t, "1/1", list[2].Id)
}

func TestVideoService_SnapshotIsDetached(t *testing.T) {
	vs := newTestVideoService(testutil.NewMockFileManager())
	require.NoError(t, vs.Set("100/7", sampleRecord("100/7", 1000)))

	snapshot := vs.Snapshot()
	snapshot["100/7"].NickName = "mutated"

	got, _ := vs.Get("100/7")
	assert.Equal(t, "movie", got.NickName)
}

func TestVideoService_PutSnapshotReplaces(t *testing.T) {
	vs := newTestVideoService(testutil.NewMockFileManager())
	require.NoError(t, vs.Set("1/1", sampleRecord("1/1", 100)))

	vs.PutSnapshot(models.VideoStorage{"2/2": sampleRecord("2/2", 200)})

	_, ok := vs.Get("1/1")
	assert.False(t, ok)
	_, ok = vs.Get("2/2")
	assert.True(t, ok)
	assert.Equal(t, 1, vs.Count())
}
