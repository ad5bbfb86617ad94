package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"doc2scorm/config"
	"doc2scorm/content"
	"doc2scorm/reader"
	"doc2scorm/render"
	"doc2scorm/scorm"
	"doc2scorm/state"
)

var ErrNoInput = errors.New("no readable input documents")

// ConvertToTree reads document (or every supported document under directory
// in natural order), separates global assets and segments markup into
// retitled forest. Unreadable documents are skipped when input is a
// directory, for single document any failure is returned.
func ConvertToTree(input string, splitTags []string, images *config.ImagesConfig, log *zap.Logger) ([]*content.Node, content.ResourceBundle, error) {
	tags, err := content.ParseSplitTags(splitTags)
	if err != nil {
		return nil, content.ResourceBundle{}, err
	}

	paths, multi, err := gatherInputs(input, log)
	if err != nil {
		return nil, content.ResourceBundle{}, err
	}

	var (
		body  strings.Builder
		total content.ResourceBundle
		read  int
	)
	for _, path := range paths {
		markup, err := reader.Read(path, images, log)
		if err == nil {
			var (
				part string
				res  content.ResourceBundle
			)
			if part, res, err = content.ExtractAssets(markup); err == nil {
				body.WriteString(part)
				total.Merge(res)
				read++
				continue
			}
		}
		if !multi {
			return nil, content.ResourceBundle{}, err
		}
		log.Warn("Skipping input document", zap.String("file", path), zap.Error(err))
	}
	if read == 0 {
		return nil, content.ResourceBundle{}, fmt.Errorf("%s: %w", input, ErrNoInput)
	}

	forest, err := content.Segment(body.String(), tags, log)
	if err != nil {
		return nil, content.ResourceBundle{}, err
	}
	return content.Retitle(forest), total, nil
}

// gatherInputs returns list of documents to read and whether input was a
// directory.
func gatherInputs(input string, log *zap.Logger) ([]string, bool, error) {
	fi, err := os.Stat(input)
	if err != nil {
		return nil, false, fmt.Errorf("input source was not found: %w", err)
	}
	if !fi.IsDir() {
		return []string{input}, false, nil
	}

	var rel []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !reader.Supported(path) {
			log.Debug("Skipping file, not recognized as document", zap.String("file", path))
			return nil
		}
		r, err := filepath.Rel(input, path)
		if err != nil {
			return err
		}
		rel = append(rel, r)
		return nil
	})
	if err != nil {
		return nil, true, err
	}
	if len(rel) == 0 {
		return nil, true, fmt.Errorf("%s: %w", input, ErrNoInput)
	}

	sort.Sort(natural.StringSlice(rel))
	paths := make([]string, 0, len(rel))
	for _, r := range rel {
		paths = append(paths, filepath.Join(input, r))
	}
	return paths, true, nil
}

// BuildPackage renders forest into SCORM package at outputPath.
func BuildPackage(ctx context.Context, forest []*content.Node, res content.ResourceBundle, outputPath, courseTitle string, assetPaths []string, cfg *config.DocumentConfig, log *zap.Logger) error {
	env, hasEnv := state.LookupEnv(ctx)

	var (
		tmpl *render.Template
		err  error
	)
	if hasEnv && len(env.PageTemplate) > 0 && cfg.TemplatePath == "" {
		tmpl, err = render.New("page", env.PageTemplate)
	} else {
		tmpl, err = render.FromFile(cfg.TemplatePath)
	}
	if err != nil {
		return err
	}

	opts := scorm.Options{
		Renderer:           tmpl,
		ManifestIdentifier: cfg.Manifest.Identifier,
		PrettyManifest:     cfg.Manifest.Pretty,
		FixZip:             cfg.FixZip,
	}
	if hasEnv && env.Rpt != nil {
		opts.Inspect = func(ws string) {
			if err := env.Rpt.StoreCopy("workspace", ws); err != nil {
				log.Warn("Unable to store workspace in report", zap.Error(err))
			}
		}
	}
	return scorm.Assemble(ctx, forest, res, courseTitle, assetPaths, outputPath, opts, log)
}

// DocumentToPackage is complete conversion of input into package at
// outputPath. It never fails loudly: errors and panics are logged and false
// is returned.
func DocumentToPackage(ctx context.Context, input, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) (ok bool) {
	log.Info("Conversion starting", zap.String("from", input))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputPath), zap.ByteString("stack", debug.Stack()))
			ok = false
			return
		}
		if ok {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputPath))
		}
	}(time.Now())

	forest, res, err := ConvertToTree(input, cfg.SplitTags, &cfg.Images, log)
	if err != nil {
		log.Error("Unable to convert document", zap.String("from", input), zap.Error(err))
		return false
	}

	if env, hasEnv := state.LookupEnv(ctx); hasEnv && env.Rpt != nil {
		content.Link(forest)
		env.Rpt.StoreData("forest.txt", []byte(content.Dump(forest, res)))
	}

	if err := BuildPackage(ctx, forest, res, outputPath, cfg.CourseTitle, cfg.Assets, cfg, log); err != nil {
		log.Error("Unable to build package", zap.String("to", outputPath), zap.Error(err))
		return false
	}
	return true
}
