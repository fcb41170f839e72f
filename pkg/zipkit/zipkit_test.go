package zipkit

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestThumbnailEntries(t *testing.T) {
	entries := ThumbnailEntries("abc123", []string{
		"data:image/png;base64,aGVsbG8=",
		"https://example.com/b.png",
	})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Filename != "abc123-thumbnail-01.png" {
		t.Fatalf("unexpected filename: %s", entries[0].Filename)
	}
	if string(entries[0].Data) != "hello" {
		t.Fatalf("data URI not decoded: %q", entries[0].Data)
	}
	if entries[1].Filename != "abc123-thumbnail-02.url" {
		t.Fatalf("unexpected filename: %s", entries[1].Filename)
	}
	if string(entries[1].Data) != "https://example.com/b.png" {
		t.Fatalf("unexpected link data: %q", entries[1].Data)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	data, err := Archive([]Entry{
		{Filename: "a.txt", Data: []byte("alpha")},
		{Filename: "b.txt", Data: []byte("beta")},
	})
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 2 {
		t.Fatalf("expected 2 files, got %d", len(reader.File))
	}
	rc, err := reader.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if string(content) != "alpha" {
		t.Fatalf("unexpected content: %q", content)
	}
}
