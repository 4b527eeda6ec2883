// Package zip bundles multiple report artifacts into a single download.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Entry is one report PDF inside a bundle.
type Entry struct {
	Filename string
	Data     []byte
}

// Bundle writes the entries into a zip archive. Entries with empty
// filenames are skipped.
func Bundle(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		if entry.Filename == "" {
			continue
		}
		w, err := zw.Create(entry.Filename)
		if err != nil {
			return nil, fmt.Errorf("zip: create entry %s: %w", entry.Filename, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("zip: write entry %s: %w", entry.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
