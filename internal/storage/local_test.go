package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	key := ReceiptKey(7, ".jpg")
	if !strings.HasPrefix(key, "receipts/7/") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected key %s", key)
	}

	url, err := store.Put(context.Background(), key, []byte("jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/uploads/"+key {
		t.Errorf("expected url /uploads/%s, got %s", key, url)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil || string(data) != "jpeg" {
		t.Errorf("expected file content to be stored, got %q %v", data, err)
	}
}

func TestLocalStore_PutStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewLocalStore(dir, "/uploads")

	url, err := store.Put(context.Background(), "../../escape.txt", []byte("x"), "text/plain")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/uploads/escape.txt" {
		t.Errorf("expected traversal to be cleaned, got %s", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); err != nil {
		t.Errorf("expected file inside storage dir: %v", err)
	}
}
