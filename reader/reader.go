// Package reader turns office documents into single HTML string suitable for
// segmentation.
package reader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"doc2scorm/config"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

type format int

const (
	formatUnknown format = iota
	formatDOCX
	formatODT
	formatHTML
)

func detect(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx", ".dotx":
		return formatDOCX
	case ".odt":
		return formatODT
	case ".html", ".htm", ".xhtml":
		return formatHTML
	}
	return formatUnknown
}

// Supported reports whether Read knows how to handle file by its extension.
func Supported(path string) bool {
	return detect(path) != formatUnknown
}

// Read returns HTML representation of the document at path. When images
// configuration is provided and enabled embedded data URI pictures are
// re-encoded.
func Read(path string, images *config.ImagesConfig, log *zap.Logger) (string, error) {
	var (
		markup string
		err    error
	)
	switch detect(path) {
	case formatDOCX:
		markup, err = readDOCX(path, log)
	case formatODT:
		markup, err = readODT(path)
	case formatHTML:
		markup, err = readHTML(path)
	default:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	if err != nil {
		return "", fmt.Errorf("unable to read %s: %w", path, err)
	}
	log.Debug("Document read", zap.String("file", path), zap.Int("size", len(markup)))

	if images == nil || !images.Optimize {
		return markup, nil
	}
	return NormalizeImages(markup, images, log)
}
