package atomicfile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "GiftCardTable.cbor")

	for _, content := range []string{"first", "second, longer"} {
		err := Write(path, []byte(content), 0600)
		if err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != content {
			t.Fatalf("got %q, want %q", data, content)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, got %d entries", len(entries))
	}
}

func TestWrite_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := Write(dir, []byte("x"), 0600); err == nil {
		t.Fatal("expected error writing over a directory")
	}
}

func TestWrite_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GiftCardTable.cbor")
	if err := Write(path, []byte("x"), 0640); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && fi.Mode().Perm() != 0640 {
		t.Fatalf("wrong mode %v", fi.Mode().Perm())
	}
}

func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "GiftCardTable.cbor")
	if err := Write(path, []byte("x"), 0600); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "PromoCodeTable.cbor")
	stale := filepath.Join(dir, "PromoCodeTable.cbor123.tmp")
	for _, p := range []string{keep, stale} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	if err := RemoveStale(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatal("snapshot was removed")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale temp file survived")
	}
}
