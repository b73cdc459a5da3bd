package services

import (
	"sync"

	"tvd/internal/providers"
	"tvd/internal/structures"
	"tvd/internal/video/interfaces"
)

type Link struct {
	Url     string `json:"url"`
	ChatId  int64  `json:"chatId"`
	AddedAt int64  `json:"addedAt"` // unix milliseconds
}

type LinkServiceInterface interface {
	Add(link Link) error
	List() []Link
}

// LinkService keeps the shared link list collected by the /link command,
// persisted with the same write-through discipline as the video store.
type LinkService struct {
	mu          sync.Mutex
	links       []Link
	fileManager interfaces.FileManagerInterface
	filePath    string
	logger      providers.Logger
}

func NewLinkService(conf *structures.Config, fileManager interfaces.FileManagerInterface, logger providers.Logger) LinkServiceInterface {
	ls := &LinkService{
		fileManager: fileManager,
		filePath:    conf.Persistence.LinksFilePath,
		logger:      logger,
	}
	if err := fileManager.LoadFromFile(ls.filePath, &ls.links); err != nil {
		logger.Warnf(providers.TypeApp, "Links file unreadable, starting empty: %s", err)
		ls.links = nil
	}
	return ls
}

func (ls *LinkService) Add(link Link) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.links = append(ls.links, link)
	return ls.fileManager.SaveToFile(ls.filePath, ls.links)
}

func (ls *LinkService) List() []Link {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	out := make([]Link, len(ls.links))
	copy(out, ls.links)
	return out
}
