package video

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvd/internal/models"
	"tvd/internal/services"
	"tvd/internal/structures"
	"tvd/internal/testutil"
)

func schedulerConf() *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{FilePath: "videos.json"},
		Video: structures.VideoConfig{
			TTL:           24 * time.Hour,
			SweepInterval: time.Hour,
		},
	}
}

type schedulerFixture struct {
	scheduler *Scheduler
	videos    services.VideoServiceInterface
	fm        *testutil.MockFileManager
	clock     *testutil.FakeClock
	metrics   *testutil.MockMetrics
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	conf := schedulerConf()
	fm := testutil.NewMockFileManager()
	videos := services.NewVideoService(conf, fm, &testutil.MockLogger{})
	clock := testutil.NewFakeClock(time.UnixMilli(1_700_000_000_000))
	metrics := testutil.NewMockMetrics()
	s := NewSchedulerWithClock(conf, &testutil.MockLogger{}, videos, metrics, clock).(*Scheduler)
	return &schedulerFixture{scheduler: s, videos: videos, fm: fm, clock: clock, metrics: metrics}
}

func record(id string, createdAt time.Time) *models.VideoRecord {
	return &models.VideoRecord{
		Id:        id,
		NickName:  "movie",
		ChatId:    100,
		MessageId: 7,
		CreatedAt: createdAt.UnixMilli(),
	}
}

func TestScheduler_ExpiresRecordAtDeadline(t *testing.T) {
	f := newSchedulerFixture(t)
	now := f.clock.Now()
	require.NoError(t, f.videos.Set("100/7", record("100/7", now)))

	go f.scheduler.run()
	defer f.scheduler.Stop()

	f.scheduler.Schedule("100/7", now.Add(24*time.Hour))

	require.Eventually(t, func() bool {
		f.clock.Advance(time.Hour)
		_, ok := f.videos.Get("100/7")
		return !ok
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, f.metrics.Expiries)
}

func TestScheduler_ExpiryOfDeletedRecordIsNoop(t *testing.T) {
	f := newSchedulerFixture(t)

	// No record exists; an expire for its id must neither persist nor
	// count as a real expiry.
	f.scheduler.expire("1/1")

	assert.Zero(t, f.fm.Saves)
	assert.Zero(t, f.metrics.Expiries)
}

func TestScheduler_RestoreSchedulesLiveAndDropsExpired(t *testing.T) {
	f := newSchedulerFixture(t)
	now := f.clock.Now()

	stored := models.VideoStorage{
		"1/1": record("1/1", now.Add(-48*time.Hour)), // long past TTL
		"2/2": record("2/2", now.Add(-time.Hour)),    // 23h of life left
	}
	blob, _ := json.Marshal(stored)
	f.fm.Files["videos.json"] = blob

	require.NoError(t, f.scheduler.Restore())

	_, ok := f.videos.Get("1/1")
	assert.False(t, ok)
	_, ok = f.videos.Get("2/2")
	assert.True(t, ok)

	// The dropped record must be gone from disk too.
	var persisted models.VideoStorage
	require.NoError(t, json.Unmarshal(f.fm.Files["videos.json"], &persisted))
	assert.NotContains(t, persisted, "1/1")
	assert.Contains(t, persisted, "2/2")

	f.scheduler.mu.Lock()
	defer f.scheduler.mu.Unlock()
	require.Len(t, f.scheduler.jobs, 1)
	assert.Equal(t, "2/2", f.scheduler.jobs[0].id)
	assert.Equal(t, time.UnixMilli(stored["2/2"].CreatedAt).Add(24*time.Hour), f.scheduler.jobs[0].fireAt)
}

func TestScheduler_RestoreMalformedFileStartsEmpty(t *testing.T) {
	f := newSchedulerFixture(t)
	f.fm.Files["videos.json"] = []byte("{broken")

	require.NoError(t, f.scheduler.Restore())
	assert.Equal(t, 0, f.videos.Count())
}

func TestScheduler_RestoreMissingFileStartsEmpty(t *testing.T) {
	f := newSchedulerFixture(t)

	require.NoError(t, f.scheduler.Restore())
	assert.Equal(t, 0, f.videos.Count())
}

func TestScheduler_SweepDeletesOverdue(t *testing.T) {
	f := newSchedulerFixture(t)
	now := f.clock.Now()
	require.NoError(t, f.videos.Set("1/1", record("1/1", now.Add(-25*time.Hour))))
	require.NoError(t, f.videos.Set("2/2", record("2/2", now)))

	f.scheduler.Sweep()

	_, ok := f.videos.Get("1/1")
	assert.False(t, ok)
	_, ok = f.videos.Get("2/2")
	assert.True(t, ok)
}

func TestScheduler_PersistWritesSnapshot(t *testing.T) {
	f := newSchedulerFixture(t)
	require.NoError(t, f.videos.Set("1/1", record("1/1", f.clock.Now())))

	require.NoError(t, f.scheduler.Persist())

	var persisted models.VideoStorage
	require.NoError(t, json.Unmarshal(f.fm.Files["videos.json"], &persisted))
	assert.Contains(t, persisted, "1/1")
}
