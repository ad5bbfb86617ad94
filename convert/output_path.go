package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"doc2scorm/config"
)

const packageExt = ".zip"

// buildOutputPath returns package file path. Destination with ".zip"
// extension which is not an existing directory is used as is. Otherwise
// destination is a directory and file name is built either from source base
// name or from user-defined template (which may introduce subdirectories),
// cleaned up and transliterated when requested.
func buildOutputPath(src, dst string, cfg *config.DocumentConfig, log *zap.Logger) string {
	if strings.EqualFold(filepath.Ext(dst), packageExt) {
		if fi, err := os.Stat(dst); err != nil || !fi.IsDir() {
			return dst
		}
	}

	defaultFile := buildDefaultFileName(src, cfg)
	if cfg.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}

	expanded, err := expandTemplate(config.OutputNameTemplateFieldName, cfg.OutputNameTemplate, cfg.CourseTitle, src, time.Now())
	if err != nil {
		log.Warn("Unable to prepare output filename", zap.Error(err))
		return filepath.Join(dst, defaultFile)
	}
	expanded = strings.TrimSpace(filepath.FromSlash(expanded))
	if expanded == "" {
		return filepath.Join(dst, defaultFile)
	}
	return assemblePathWithSubdirs(dst, expanded, cfg)
}

func buildDefaultFileName(src string, cfg *config.DocumentConfig) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return cleanPathSegment(baseName, cfg) + packageExt
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, cfg *config.DocumentConfig) string {
	pathSegments := splitPath(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	last := strings.TrimSuffix(pathSegments[len(pathSegments)-1], packageExt)
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)
	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, cfg))
	}
	dirParts = append(dirParts, cleanPathSegment(last, cfg)+packageExt)
	return filepath.Join(dirParts...)
}

// splitPath breaks relative path into its segments dropping empty ones and
// navigation to parent.
func splitPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); ; head, tail = filepath.Split(head) {
		if tail != "" && tail != "." && tail != ".." {
			segments = slices.Insert(segments, 0, tail)
		}
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" || head == path {
			break
		}
		path = head
	}
	return segments
}

func cleanPathSegment(segment string, cfg *config.DocumentConfig) string {
	if cfg.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	if strings.TrimSpace(segment) == "" {
		segment = "course"
	}
	return config.CleanFileName(segment)
}
