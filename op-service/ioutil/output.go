package ioutil

import (
	"io"
	"os"
	"path/filepath"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OutputTarget opens the destination of a command's output.
type OutputTarget func() (io.WriteCloser, error)

// ToStdOutOrFile writes to stdout when path is empty or "-", and to the
// file at path otherwise. Parent directories are created as needed.
func ToStdOutOrFile(stdout io.Writer, path string) OutputTarget {
	return func() (io.WriteCloser, error) {
		if path == "" || path == "-" {
			return nopCloser{stdout}, nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		return os.Create(path)
	}
}
