package services

import (
	"errors"
	"sort"
	"sync"

	"tvd/internal/models"
	"tvd/internal/providers"
	"tvd/internal/structures"
	"tvd/internal/video/interfaces"
)

var ErrNotFound = errors.New("video not found")

type VideoServiceInterface interface {
	Get(id string) (*models.VideoRecord, bool)
	Set(id string, record *models.VideoRecord) error
	Rename(id string, nickName string) (*models.VideoRecord, error)
	Delete(id string) (bool, error)
	List() []*models.VideoRecord
	Count() int
	Snapshot() models.VideoStorage
	PutSnapshot(data models.VideoStorage)
	Load() (models.VideoStorage, error)
	Persist() error
}

// VideoService is the process-wide id → record map and the sole owner of
// the backing file. Every mutation is written through before returning.
// Two locks keep the paths apart: mu guards the map and is only ever held
// for in-memory work, persistMu serializes file writes (single-writer
// discipline), so lookups never wait behind a disk write.
type VideoService struct {
	mu          sync.RWMutex
	persistMu   sync.Mutex
	data        models.VideoStorage
	fileManager interfaces.FileManagerInterface
	filePath    string
	logger      providers.Logger
}

func NewVideoService(conf *structures.Config, fileManager interfaces.FileManagerInterface, logger providers.Logger) VideoServiceInterface {
	return &VideoService{
		data:        make(models.VideoStorage),
		fileManager: fileManager,
		filePath:    conf.Persistence.FilePath,
		logger:      logger,
	}
}

func (vs *VideoService) Get(id string) (*models.VideoRecord, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	rec, ok := vs.data[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Set upserts and persists. On a persistence failure the in-memory value
// stays updated and the error is returned for the caller to log; memory is
// the source of truth until the next successful write.
func (vs *VideoService) Set(id string, record *models.VideoRecord) error {
	vs.mu.Lock()
	vs.data[id] = record.Clone()
	vs.mu.Unlock()
	return vs.Persist()
}

// Rename replaces nickName only, preserving every other field including
// the original CreatedAt.
func (vs *VideoService) Rename(id string, nickName string) (*models.VideoRecord, error) {
	vs.mu.Lock()
	rec, ok := vs.data[id]
	if !ok {
		vs.mu.Unlock()
		return nil, ErrNotFound
	}
	updated := rec.Clone()
	updated.NickName = nickName
	vs.data[id] = updated
	result := updated.Clone()
	vs.mu.Unlock()
	return result, vs.Persist()
}

// Delete removes if present and persists, reporting whether a record was
// actually removed. Deleting an absent id is a no-op, not an error.
func (vs *VideoService) Delete(id string) (bool, error) {
	vs.mu.Lock()
	if _, ok := vs.data[id]; !ok {
		vs.mu.Unlock()
		return false, nil
	}
	delete(vs.data, id)
	vs.mu.Unlock()
	return true, vs.Persist()
}

func (vs *VideoService) List() []*models.VideoRecord {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	list := make([]*models.VideoRecord, 0, len(vs.data))
	for _, rec := range vs.data {
		list = append(list, rec.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt > list[j].CreatedAt
	})
	return list
}

func (vs *VideoService) Count() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.data)
}

func (vs *VideoService) Snapshot() models.VideoStorage {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	snapshot := make(models.VideoStorage, len(vs.data))
	for id, rec := range vs.data {
		snapshot[id] = rec.Clone()
	}
	return snapshot
}

func (vs *VideoService) PutSnapshot(data models.VideoStorage) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.data = make(models.VideoStorage, len(data))
	for id, rec := range data {
		vs.data[id] = rec.Clone()
	}
}

// Load reads the backing file without touching the in-memory map. A
// missing file yields an empty storage.
func (vs *VideoService) Load() (models.VideoStorage, error) {
	stored := make(models.VideoStorage)
	err := vs.fileManager.LoadFromFile(vs.filePath, &stored)
	return stored, err
}

// Persist writes the current map to the backing file. The snapshot is
// taken under persistMu so writes land on disk in mutation order; the map
// lock is held only for the copy, never across the file write.
func (vs *VideoService) Persist() error {
	vs.persistMu.Lock()
	defer vs.persistMu.Unlock()

	vs.mu.RLock()
	snapshot := make(models.VideoStorage, len(vs.data))
	for id, rec := range vs.data {
		snapshot[id] = rec
	}
	vs.mu.RUnlock()

	return vs.fileManager.SaveToFile(vs.filePath, snapshot)
}
