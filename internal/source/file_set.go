package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// FileSet manages the Move sources loaded during one run. It is safe for
// concurrent use.
type FileSet struct {
	mu    sync.RWMutex
	files []*File
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores a file from normalized bytes and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	normalizedPath := normalizePath(path)
	f := &File{
		Path:    normalizedPath,
		Content: content,
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	f.ID = FileID(lenFiles)
	fileSet.files = append(fileSet.files, f)
	// Всегда обновляем индекс на последнюю версию файла
	fileSet.index[normalizedPath] = f.ID
	return f.ID
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return fileSet.files[id]
}

// Len returns the number of file versions held.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// GetByPath возвращает *File по пути, если был загружен в этот FileSet.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return fileSet.files[id], true
	}
	return nil, false
}

// Text returns the normalized content as a string.
func (f *File) Text() string {
	return string(f.Content)
}

// Restore converts normalized content back to the file's on-disk
// conventions: CRLF line endings and the BOM come back if the file had them.
func (f *File) Restore(content []byte) []byte {
	if f.Flags&FileNormalizedCRLF != 0 {
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	if f.Flags&FileHadBOM != 0 {
		out := make([]byte, 0, len(bom)+len(content))
		out = append(out, bom...)
		content = append(out, content...)
	}
	return content
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
// baseDir: базовая директория для относительных путей (игнорируется для других режимов)
func (f *File) FormatPath(mode, baseDir string) string {
	return FormatPath(f.Path, mode, baseDir)
}

// FormatPath is File.FormatPath for a bare path.
func FormatPath(path, mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(path); err == nil {
			return abs
		}
		return path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(path, baseDir); err == nil {
			return rel
		}
		return path

	case "basename":
		return BaseName(path)

	case "auto":
		// короткие и относительные пути как есть, иначе basename
		if len(path) < 40 || !filepath.IsAbs(path) {
			return path
		}
		return BaseName(path)

	default:
		return path
	}
}
