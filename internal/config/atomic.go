package config

import (
	"os"
	"path/filepath"

	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// writeAtomic replaces path with data so readers see either the old file or
// the new one, never a partial write. The temp file lives next to path so the
// final rename stays on one filesystem.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return presaleerr.WithMessage(presaleerr.ErrInvalidInput, "config path is empty")
	}
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return presaleerr.Wrap(err, "creating temp config")
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := writeAndSync(tmp, data, perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return presaleerr.Wrap(err, "closing temp config")
	}
	if err := os.Rename(tmpPath, path); err != nil { //nolint:gosec // G703: path comes from the presale home
		return presaleerr.Wrap(err, "replacing config")
	}

	// Persist the rename itself; failure here only weakens durability.
	if d, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is derived from path
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

func writeAndSync(f *os.File, data []byte, perm os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		return presaleerr.Wrap(err, "writing temp config")
	}
	if err := f.Chmod(perm); err != nil {
		return presaleerr.Wrap(err, "setting config permissions")
	}
	if err := f.Sync(); err != nil {
		return presaleerr.Wrap(err, "syncing temp config")
	}
	return nil
}
