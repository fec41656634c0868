package pipeline

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const copyPrefix = "redact-"

// formatOf picks the output encoding from the source extension. Anything
// that is not JPEG is written as PNG.
func formatOf(path string) imaging.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return imaging.JPEG
	default:
		return imaging.PNG
	}
}

func formatName(f imaging.Format) string {
	if f == imaging.JPEG {
		return "jpeg"
	}
	return "png"
}

func extensionFor(path string, format imaging.Format) string {
	if format == imaging.JPEG {
		return strings.ToLower(filepath.Ext(path))
	}
	return ".png"
}

// CopyName returns the n-th candidate output name for a source path.
func CopyName(path string, n int) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := extensionFor(path, formatOf(path))
	name := copyPrefix + stem
	if n > 0 {
		name = fmt.Sprintf("%s-%d", name, n)
	}
	return filepath.Join(filepath.Dir(path), name+ext)
}

// checkWritable probes the directory containing path with a temp file.
func checkWritable(path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".scrub-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// writeTemp encodes img into a new temp file next to path and returns its
// name. The file is synced before returning.
func writeTemp(path string, img image.Image, format imaging.Format, quality int) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".scrub-*"+extensionFor(path, format))
	if err != nil {
		return "", err
	}
	name := f.Name()
	fail := func(err error) (string, error) {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(quality)); err != nil {
		return fail(fmt.Errorf("encoding: %w", err))
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// writeAtomic replaces path with img via temp file and rename, keeping the
// original permissions.
func writeAtomic(path string, img image.Image, format imaging.Format, quality int) error {
	tmp, err := writeTemp(path, img, format, quality)
	if err != nil {
		return err
	}
	keepMode(tmp, path)
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// keepMode gives tmp the permission bits of path, when path exists.
func keepMode(tmp, path string) {
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmp, info.Mode().Perm())
	}
}

// saveCopy writes img to the first free redact-<name>[-<n>] candidate.
// The encoded file is reloaded before it is linked into place, and existing
// files are never overwritten.
func saveCopy(img image.Image, path string, format imaging.Format, quality, attempts int) (string, error) {
	tmp, err := writeTemp(path, img, format, quality)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	if _, err := imaging.Open(tmp); err != nil {
		return "", fmt.Errorf("validating encoded image: %w", err)
	}
	keepMode(tmp, path)

	for n := 0; n < attempts; n++ {
		dst := CopyName(path, n)
		err := os.Link(tmp, dst)
		if err == nil {
			return dst, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		// Filesystems without hard links: fall back to a checked rename.
		if _, statErr := os.Lstat(dst); statErr == nil {
			continue
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return "", statErr
		}
		if err := os.Rename(tmp, dst); err != nil {
			return "", err
		}
		return dst, nil
	}
	return "", fmt.Errorf("no free output name after %d attempts", attempts)
}
