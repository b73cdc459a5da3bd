package testutil

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"tvd/internal/providers"
	"tvd/internal/upstream"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockFileManager implements interfaces.FileManagerInterface in memory with
// injectable failures.
type MockFileManager struct {
	mu        sync.Mutex
	Files     map[string][]byte
	SaveErr   error
	SaveDelay time.Duration
	Saves     int
}

func NewMockFileManager() *MockFileManager {
	return &MockFileManager{Files: make(map[string][]byte)}
}

func (m *MockFileManager) SaveToFile(fileName string, data any) error {
	if m.SaveDelay > 0 {
		time.Sleep(m.SaveDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	blob, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.Files[fileName] = blob
	return nil
}

func (m *MockFileManager) LoadFromFile(fileName string, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.Files[fileName]
	if !ok {
		return nil
	}
	return json.Unmarshal(blob, out)
}

// MockUpstreamClient implements upstream.ClientInterface and records calls.
type MockUpstreamClient struct {
	mu sync.Mutex

	Info    *upstream.MessageInfo
	InfoErr error

	Chunks      []byte
	DownloadErr error

	ReplyErr error

	GetMessageCalls int
	DownloadCalls   []DownloadCall
	Replies         []string
	ReadMarks       int
	Token           string
}

type DownloadCall struct {
	ChatId    int64
	MessageId int
	Offset    int64
	Length    int64
}

func (m *MockUpstreamClient) GetMessage(_ context.Context, _ int64, _ int) (*upstream.MessageInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetMessageCalls++
	if m.InfoErr != nil {
		return nil, m.InfoErr
	}
	return m.Info, nil
}

func (m *MockUpstreamClient) Download(_ context.Context, chatId int64, messageId int, offset, length int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DownloadCalls = append(m.DownloadCalls, DownloadCall{ChatId: chatId, MessageId: messageId, Offset: offset, Length: length})
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	if int64(len(m.Chunks)) >= offset+length {
		return m.Chunks[offset : offset+length], nil
	}
	return make([]byte, length), nil
}

func (m *MockUpstreamClient) SendReply(_ context.Context, _ int64, _ int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplyErr != nil {
		return m.ReplyErr
	}
	m.Replies = append(m.Replies, text)
	return nil
}

func (m *MockUpstreamClient) MarkRead(_ context.Context, _ int64, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadMarks++
	return nil
}

func (m *MockUpstreamClient) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Token = token
}

// MockScheduler records Schedule calls.
type MockScheduler struct {
	mu        sync.Mutex
	Scheduled []ScheduledJob
}

type ScheduledJob struct {
	Id     string
	FireAt time.Time
}

func (m *MockScheduler) Init()          {}
func (m *MockScheduler) Stop()          {}
func (m *MockScheduler) Restore() error { return nil }
func (m *MockScheduler) Persist() error { return nil }
func (m *MockScheduler) Schedule(id string, fireAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Scheduled = append(m.Scheduled, ScheduledJob{Id: id, FireAt: fireAt})
}

func (m *MockScheduler) Jobs() []ScheduledJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ScheduledJob, len(m.Scheduled))
	copy(out, m.Scheduled)
	return out
}

// MockMetrics implements providers.MetricsProviderInterface and counts.
type MockMetrics struct {
	mu           sync.Mutex
	Requests     int
	IngestEvents map[string]int
	Expiries     int
	StreamBytes  int
	CacheHits    int
	CacheMisses  int
	Records      int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{IngestEvents: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncIngestEvents(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IngestEvents[action]++
}
func (m *MockMetrics) IncExpiries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expiries++
}
func (m *MockMetrics) AddStreamBytes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamBytes += n
}
func (m *MockMetrics) IncActiveStreams() {}
func (m *MockMetrics) DecActiveStreams() {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) SetRecordsTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// FakeClock implements interfaces.Clock with manual advancement.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter
}

type waiter struct {
	at time.Time
	ch chan time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, waiter{at: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves the clock forward and fires every timer that came due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	remaining := c.waiters[:0]
	var due []chan time.Time
	for _, w := range c.waiters {
		if !w.at.After(now) {
			due = append(due, w.ch)
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
	c.mu.Unlock()

	for _, ch := range due {
		ch <- now
	}
}
