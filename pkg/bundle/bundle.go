// Package bundle builds the archive users unpack into the game directory.
package bundle

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// FontsDir is where the client loads font files from, relative to the game root.
const FontsDir = "Engine/Content/Fonts"

const (
	NormalFontFile = "normal.ttf"
	TitleFontFile  = "title.ttf"
	ArtFontFile    = "art.ttf"
	ManifestFile   = "Fonts.xml"
)

// Bundle is the content of one distributable archive.
type Bundle struct {
	// PackageExt is the extension of the resource package, without dot.
	PackageExt string
	// Package is the patched resource package.
	Package []byte
	// Font is the replacement font, stored as normal.ttf.
	Font []byte
	// AssetsDir holds optional title.ttf, art.ttf and Fonts.xml. May be empty.
	AssetsDir string
	// Modified is stamped on every entry. Zero means now.
	Modified time.Time
}

type entry struct {
	name string
	data []byte
}

// PackageEntryName returns the archive path of the resource package.
func (b *Bundle) PackageEntryName() string {
	ext := b.PackageExt
	if ext == "" {
		ext = "mpk"
	}
	return "Resources." + ext
}

func (b *Bundle) entries() ([]entry, error) {
	title, err := readAsset(b.AssetsDir, TitleFontFile, b.Font)
	if err != nil {
		return nil, err
	}
	art, err := readAsset(b.AssetsDir, ArtFontFile, b.Font)
	if err != nil {
		return nil, err
	}
	manifest, err := readAsset(b.AssetsDir, ManifestFile, nil)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		manifest, err = Manifest()
		if err != nil {
			return nil, err
		}
	}

	return []entry{
		{b.PackageEntryName(), b.Package},
		{FontsDir + "/" + NormalFontFile, b.Font},
		{FontsDir + "/" + TitleFontFile, title},
		{FontsDir + "/" + ArtFontFile, art},
		{FontsDir + "/" + ManifestFile, manifest},
	}, nil
}

// readAsset returns the named file from dir, or def when dir is empty or
// the file does not exist.
func readAsset(dir, name string, def []byte) ([]byte, error) {
	if dir == "" {
		return def, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return def, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read asset %s", name)
	}
	return data, nil
}

// Write validates the font and writes the archive to w.
func Write(w io.Writer, b *Bundle) error {
	if _, err := ValidateFont(b.Font); err != nil {
		return err
	}
	entries, err := b.entries()
	if err != nil {
		return err
	}

	modified := b.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	zw := zip.NewWriter(w)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", e.name)
		}
		if _, err := io.Copy(fw, bytes.NewReader(e.data)); err != nil {
			return errors.Wrapf(err, "failed to write %s", e.name)
		}
	}
	return errors.Wrap(zw.Close(), "failed to finish archive")
}

// WriteFile writes the archive to path. Nothing is left at path on failure.
func WriteFile(path string, b *Bundle) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".bundle-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = Write(f, b); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return errors.Wrap(err, "failed to rename temp file")
	}
	return nil
}
