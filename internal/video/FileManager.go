package video

import (
	"os"

	json "github.com/goccy/go-json"

	"tvd/internal/providers"
	"tvd/internal/video/interfaces"
)

// FileManager rewrites the whole store file on every save. The tmp + fsync
// + rename sequence keeps the on-disk file whole even if the process dies
// mid-write.
type FileManager struct {
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, logger providers.Logger) interfaces.FileManagerInterface {
	return &FileManager{
		compressor: compressor,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	blob, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(blob)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// LoadFromFile fills out from fileName. A missing file leaves out untouched
// and returns nil; a malformed file returns the unmarshal error so the
// caller can decide to start empty.
func (f *FileManager) LoadFromFile(fileName string, out any) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	return json.Unmarshal(decompressed, out)
}
