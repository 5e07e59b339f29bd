package polyscript

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/robbyt/go-polyscript/platform/script/loader"
)

// newLoader creates a go-polyscript loader for inline code or a location.
// Locations may be plain paths, file:// paths or http/https URLs.
func newLoader(code, uri string) (loader.Loader, error) {
	if code != "" {
		return loader.NewFromString(code)
	}
	if uri == "" {
		return nil, ErrNoSource
	}

	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return loader.NewFromHTTP(uri)
	}

	path := strings.TrimPrefix(uri, "file://")
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve relative path %q: %w", path, err)
		}
		path = absPath
	}
	return loader.NewFromDisk(path)
}
