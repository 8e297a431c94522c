package persistence

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// SaveToFile writes an artifact atomically: the payload is written to a
// temporary file in the same directory, fsynced, and renamed over the target.
// A crash mid-write leaves the previous artifact intact (complete-or-absent).
func SaveToFile(filename string, write func(w *bufio.Writer) error) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Best-effort cleanup on the error paths; after a successful rename
		// the file no longer exists under its temp name.
		_ = os.Remove(tmpName)
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("rename %s: %w", filename, err)
	}
	return nil
}

// LoadFromFile opens an artifact for buffered reading.
func LoadFromFile(filename string, read func(r *bufio.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return read(bufio.NewReader(f))
}
