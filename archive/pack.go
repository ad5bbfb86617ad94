package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	fixzip "github.com/hidez8891/zip"
)

// Pack writes every regular file under dir into zip archive at dst using
// slash separated paths relative to dir. Files are visited in lexical order so
// archive layout depends only on directory content. Archive is assembled in a
// temporary file next to dst and renamed in place when complete.
func Pack(dir, dst string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*")
	if err != nil {
		return fmt.Errorf("unable to create archive: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addFile(zw, filepath.ToSlash(rel), path)
	})
	if err != nil {
		return fmt.Errorf("unable to pack %s: %w", dir, err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("unable to finalize archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to close archive: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("unable to move archive in place: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// StripDataDescriptors rewrites archive in place clearing data descriptor
// flag of every entry. Some LMS importers cannot stream such archives.
func StripDataDescriptors(path string) (err error) {
	tmp := path + ".fix"
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err = copyWithoutDataDescriptors(path, tmp); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func copyWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finalize target file (%s): %w", to, err)
	}
	return out.Close()
}
