package interfaces

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
}

type FileManagerInterface interface {
	SaveToFile(fileName string, data any) error
	LoadFromFile(fileName string, out any) error
}
