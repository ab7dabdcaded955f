package restyutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Output receives dumped http exchanges.
type Output interface {
	Write(name string, contents string)
}

// FilesystemOutput writes every dumped exchange as a file in one directory.
type FilesystemOutput struct {
	directory string
}

var ErrDirNotEmpty = errors.New("dump directory is not empty")

// NewFilesystemOutput creates dir if needed. An existing dir must be empty,
// nothing already in it is touched.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	if len(entries) > 0 {
		return FilesystemOutput{}, fmt.Errorf("%w: %s", ErrDirNotEmpty, dir)
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(name string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write dump file", "name", name, "err", err)
	}
}
