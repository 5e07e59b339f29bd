package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnknownFormat     = errors.New("unknown log format")
	ErrUnsupportedOutput = errors.New("unsupported log output")
)

// CreateWriter opens the log output:
//   - "stdout" or "" writes to os.Stdout
//   - "stderr" writes to os.Stderr
//   - "file:///path/to/file" or "/path/to/file" appends to the file, creating directories
func CreateWriter(output string) (io.Writer, error) {
	switch {
	case output == "" || output == "stdout":
		return os.Stdout, nil
	case output == "stderr":
		return os.Stderr, nil
	case strings.HasPrefix(output, "file://"):
		return createFileWriter(strings.TrimPrefix(output, "file://"))
	case isFilePath(output):
		return createFileWriter(output)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOutput, output)
	}
}

// CheckOutput reports whether CreateWriter would accept output, without opening anything.
func CheckOutput(output string) error {
	switch {
	case output == "" || output == "stdout" || output == "stderr":
		return nil
	case strings.HasPrefix(output, "file://") && len(output) > len("file://"):
		return nil
	case isFilePath(output):
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, output)
	}
}

func isFilePath(path string) bool {
	if strings.Contains(path, "://") {
		return false
	}
	return strings.Contains(path, "/") || strings.Contains(path, "\\")
}

func createFileWriter(filePath string) (io.Writer, error) {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	return file, nil
}
