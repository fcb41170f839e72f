// Package zipkit bundles a job's thumbnails into a zip archive.
package zipkit

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

// Entry is one file in the archive.
type Entry struct {
	Filename string
	Data     []byte
}

// Archive writes the entries into an in-memory zip.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Filename)
		if err != nil {
			return nil, fmt.Errorf("zipkit: create %s: %w", entry.Filename, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("zipkit: write %s: %w", entry.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zipkit: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailEntries converts thumbnail locators into archive entries. Inline
// data URIs are decoded into image files; remote URLs become small .url link
// files since the archive endpoint does not proxy external hosts.
func ThumbnailEntries(jobID string, thumbnails []string) []Entry {
	entries := make([]Entry, 0, len(thumbnails))
	for i, thumb := range thumbnails {
		name := fmt.Sprintf("%s-thumbnail-%02d", jobID, i+1)
		if data, ext, ok := decodeDataURI(thumb); ok {
			entries = append(entries, Entry{Filename: name + ext, Data: data})
			continue
		}
		entries = append(entries, Entry{Filename: name + ".url", Data: []byte(thumb)})
	}
	return entries
}

func decodeDataURI(s string) ([]byte, string, bool) {
	if !strings.HasPrefix(s, "data:") {
		return nil, "", false
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	ext := ".png"
	switch strings.TrimSuffix(meta, ";base64") {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return data, ext, true
}
