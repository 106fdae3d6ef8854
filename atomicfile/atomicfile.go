// Package atomicfile replaces files so readers see either the old or the new
// contents, never a partial write.
package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const tmpSuffix = ".tmp"

// Write replaces filename with data. The data goes to a temp file in the same
// directory first, which is synced and then renamed over filename.
func Write(filename string, data []byte, perm os.FileMode) error {
	if fi, err := os.Stat(filename); err == nil && !fi.Mode().IsRegular() {
		return fmt.Errorf("%s already exists and is not a regular file", filename)
	}

	f, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+"*"+tmpSuffix)
	if err != nil {
		return err
	}
	tmpName := f.Name()

	err = writeAndSync(f, data, perm)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpName, filename)
	}
	if err != nil {
		return errors.Join(err, removeIfExists(tmpName))
	}
	return nil
}

func writeAndSync(f *os.File, data []byte, perm os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		return err
	}
	if runtime.GOOS != "windows" {
		if err := f.Chmod(perm); err != nil {
			return err
		}
	}
	// Without a sync the rename can land before the data does.
	return f.Sync()
}

func removeIfExists(name string) error {
	err := os.Remove(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RemoveStale deletes temp files left in dir by a Write that never finished.
func RemoveStale(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), tmpSuffix) {
			continue
		}
		if err := removeIfExists(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
