package fsutil

import (
	"io"
	"testing"
)

func TestOS_Exists(t *testing.T) {
	fs := OS{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}
	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOS_ReadFile(t *testing.T) {
	fs := OS{}

	data, err := fs.ReadFile("filesystem.go")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty file content")
	}
}

func TestMemory_WriteAndRead(t *testing.T) {
	mfs := NewMemory()

	if err := mfs.WriteFile("/test.txt", []byte("hello, world"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello, world" {
		t.Errorf("expected %q, got %q", "hello, world", data)
	}
}

func TestMemory_CreateAndOpen(t *testing.T) {
	mfs := NewMemory()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("created content")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := mfs.Open("/created.txt")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "created content" {
		t.Errorf("expected 'created content', got %q", data)
	}
}

func TestMemory_OpenMissing(t *testing.T) {
	mfs := NewMemory()
	if _, err := mfs.Open("/missing.txt"); err == nil {
		t.Error("expected error opening missing file")
	}
}

func TestMemory_Rename(t *testing.T) {
	mfs := NewMemory()

	if err := mfs.WriteFile("/mesh.e.1.0", []byte("exodus"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := mfs.Rename("/mesh.e.1.0", "/mesh.e"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if mfs.Exists("/mesh.e.1.0") {
		t.Error("expected old path to be gone")
	}
	data, err := mfs.ReadFile("/mesh.e")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "exodus" {
		t.Errorf("expected 'exodus', got %q", data)
	}

	if err := mfs.Rename("/missing", "/anywhere"); err == nil {
		t.Error("expected error renaming missing file")
	}
}

func TestMemory_MkdirAllMarksParents(t *testing.T) {
	mfs := NewMemory()
	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mfs.Exists(dir) {
			t.Errorf("expected %s to exist", dir)
		}
	}
}
