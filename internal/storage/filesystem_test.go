package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndReadBack(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	content := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	key, err := store.Write(context.Background(), "products/abc123.png", content)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if key != "products/abc123.png" {
		t.Fatalf("key = %q", key)
	}

	got, err := os.ReadFile(filepath.Join(store.BasePath(), "products", "abc123.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("stored bytes differ: %v vs %v", got, content)
	}
}

func TestWriteCreatesNestedDirectories(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "public")
	store, err := NewFileStore(base)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Write(context.Background(), "products/deep/file.png", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "products", "deep", "file.png")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "plain", key: "products/a.png", want: "products/a.png"},
		{name: "leading slash", key: "/products/a.png", want: "products/a.png"},
		{name: "dot slash", key: "./products/a.png", want: "products/a.png"},
		{name: "backslashes", key: "products\\a.png", want: "products/a.png"},
		{name: "traversal", key: "../etc/passwd", wantErr: true},
		{name: "hidden traversal", key: "products/../../etc/passwd", wantErr: true},
		{name: "empty", key: "  ", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitizeKey(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeKey: %v", err)
			}
			if got != tc.want {
				t.Fatalf("sanitizeKey = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPublicPath(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := store.PublicPath("products/a.png"); got != "/products/a.png" {
		t.Fatalf("PublicPath = %q", got)
	}
	if got := store.PublicPath("../escape.png"); got != "" {
		t.Fatalf("PublicPath for invalid key = %q, want empty", got)
	}
}
