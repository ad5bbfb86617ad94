package scorm

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"doc2scorm/archive"
	"doc2scorm/content"
	"doc2scorm/misc"
	"doc2scorm/render"
)

var ErrEmptyCourse = errors.New("nothing to package")

// Options controls package assembly.
type Options struct {
	// Renderer produces pages, built-in template is used when nil
	Renderer render.Renderer
	// ManifestIdentifier is random when empty
	ManifestIdentifier string
	PrettyManifest     bool
	// FixZip rewrites result without data descriptors
	FixZip bool
	// Inspect, when set, is called with staged workspace right before it is
	// archived
	Inspect func(workspace string)
}

// Assemble links forest, stages assets, pages and manifest in private
// temporary workspace and packs it into outputPath. Workspace is removed on
// every exit path. Missing assets are reported and skipped.
func Assemble(ctx context.Context, forest []*content.Node, res content.ResourceBundle, courseTitle string, assetPaths []string, outputPath string, opts Options, log *zap.Logger) error {
	if content.Count(forest) == 0 {
		return ErrEmptyCourse
	}

	r := opts.Renderer
	if r == nil {
		tmpl, err := render.FromFile("")
		if err != nil {
			return err
		}
		r = tmpl
	}

	ws, err := os.MkdirTemp("", misc.GetAppName()+"-ws-")
	if err != nil {
		return fmt.Errorf("unable to create workspace: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(ws); err != nil {
			log.Warn("Unable to remove workspace", zap.String("dir", ws), zap.Error(err))
		}
	}()
	log.Debug("Workspace created", zap.String("dir", ws))

	flat := content.Link(forest)

	reserved := make(map[string]bool, len(flat)+1)
	reserved[ManifestName] = true
	for _, n := range flat {
		reserved[n.Filename] = true
	}
	assets, assetFiles := stageAssets(ws, assetPaths, reserved, log)
	checkReferences(ws, res, log)

	for i, n := range flat {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := r.Render(render.Page{
			Title:       n.Title,
			CourseTitle: courseTitle,
			Content:     template.HTML(n.Content),
			CSS:         template.HTML(res.CSS),
			JS:          template.HTML(res.JS),
			Prev:        n.Prev,
			Next:        n.Next,
			Index:       i + 1,
			Total:       len(flat),
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(ws, n.Filename), []byte(page), 0o644); err != nil {
			return fmt.Errorf("unable to write page %s: %w", n.Filename, err)
		}
	}

	m := BuildManifest(courseTitle, forest, assets, WithIdentifier(opts.ManifestIdentifier), WithAssetFiles(assetFiles))
	if err := m.Document(opts.PrettyManifest).WriteToFile(filepath.Join(ws, ManifestName)); err != nil {
		return fmt.Errorf("unable to write manifest: %w", err)
	}

	if opts.Inspect != nil {
		opts.Inspect(ws)
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create output directory: %w", err)
		}
	}
	if err := archive.Pack(ws, outputPath); err != nil {
		return err
	}
	if opts.FixZip {
		if err := archive.StripDataDescriptors(outputPath); err != nil {
			return err
		}
	}

	log.Info("Package assembled", zap.String("file", outputPath),
		zap.Int("pages", len(flat)), zap.Int("items", m.ItemCount()), zap.Int("assets", len(assets)))
	return nil
}

// checkReferences warns about local files global assets refer to which
// are not going to be in the package.
func checkReferences(ws string, res content.ResourceBundle, log *zap.Logger) {
	refs, err := res.References(log)
	if err != nil {
		log.Warn("Unable to inspect asset references", zap.Error(err))
		return
	}
	for _, ref := range refs {
		if _, err := os.Stat(filepath.Join(ws, filepath.FromSlash(ref))); err != nil {
			log.Warn("Referenced file is not in package, add it as asset", zap.String("ref", ref))
		}
	}
}

// stageAssets copies files and directories into workspace root under their
// base names. It returns staged hrefs in order and file lists for directories.
func stageAssets(ws string, paths []string, reserved map[string]bool, log *zap.Logger) ([]string, map[string][]string) {
	var (
		hrefs []string
		files = make(map[string][]string)
		seen  = make(map[string]bool)
	)
	for _, src := range paths {
		name := filepath.Base(filepath.Clean(src))
		if name == "." || name == string(filepath.Separator) || reserved[name] {
			log.Warn("Asset name clashes with package content, skipping", zap.String("asset", src))
			continue
		}
		info, err := os.Stat(src)
		if err != nil {
			log.Warn("Asset not found, skipping", zap.String("asset", src), zap.Error(err))
			continue
		}

		dst := filepath.Join(ws, name)
		if info.IsDir() {
			err = copyDir(src, dst)
		} else {
			err = copyFile(src, dst)
		}
		if err != nil {
			log.Warn("Unable to copy asset, skipping", zap.String("asset", src), zap.Error(err))
			// partial copy must not end up in package
			if err := os.RemoveAll(dst); err != nil {
				log.Warn("Unable to remove partially copied asset", zap.String("asset", src), zap.Error(err))
			}
			if seen[name] {
				// copy already replaced previously staged asset
				hrefs = slices.DeleteFunc(hrefs, func(h string) bool { return h == name })
				delete(files, name)
				delete(seen, name)
			}
			continue
		}

		if info.IsDir() {
			if files[name], err = listFiles(ws, dst); err != nil {
				log.Warn("Unable to list asset directory", zap.String("asset", src), zap.Error(err))
			}
		} else {
			delete(files, name)
		}
		if !seen[name] {
			seen[name] = true
			hrefs = append(hrefs, name)
		} else {
			log.Warn("Asset replaces previously staged one", zap.String("asset", src))
		}
		log.Debug("Asset staged", zap.String("asset", src), zap.String("name", name))
	}
	return hrefs, files
}

// copyDir replaces whatever is at dst with copy of src tree.
func copyDir(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	return os.CopyFS(dst, os.DirFS(src))
}

func copyFile(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}

// listFiles returns slash separated paths of regular files under dir relative
// to root.
func listFiles(root, dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("directory %s is empty", strings.TrimPrefix(dir, root))
	}
	return out, nil
}
