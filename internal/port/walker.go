package port

// FileWalker lists the sample files under a source directory.
type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

// FileInfo describes a sample file. Rel is relative to the walked root.
type FileInfo struct {
	Path string
	Rel  string
	Size int64
}

// FileReader loads the text of a sample file.
type FileReader interface {
	ReadFile(path string) (string, error)
}
