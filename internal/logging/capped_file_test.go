package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCappedFileStartsOverPastLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.log")
	w, err := newCappedFile(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer w.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() > 1<<20 {
		t.Fatalf("expected log <= 1MB, got %d", info.Size())
	}
	if w.resets != 1 {
		t.Fatalf("expected 1 reset, got %d", w.resets)
	}
}

func TestCappedFileAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.log")
	if err := os.WriteFile(path, []byte("previous\n"), 0o644); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	w, err := newCappedFile(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	if _, err := w.Write([]byte("next\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = w.Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(b) != "previous\nnext\n" {
		t.Fatalf("unexpected log content %q", b)
	}
}
