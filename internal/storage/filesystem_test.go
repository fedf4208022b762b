package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreWriteAndPublicURL(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	key, err := store.Write(context.Background(), "generated/topic-1/narrative.md", []byte("# hello"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if key != "generated/topic-1/narrative.md" {
		t.Fatalf("key = %q", key)
	}

	data, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "# hello" {
		t.Fatalf("content = %q", data)
	}

	if got := store.PublicURL(key); got != "http://localhost:8080/static/generated/topic-1/narrative.md" {
		t.Fatalf("public url = %q", got)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.txt", []byte("x")); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
	if _, err := store.Write(context.Background(), "   ", []byte("x")); err == nil {
		t.Fatalf("expected empty key to be rejected")
	}
}
