package fsops_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/patcher/internal/fsops"
)

type renameRefusingFS struct {
	fsops.Mem
}

func (renameRefusingFS) Rename(string, string) error { return errors.New("cross-device link") }

func TestOps_InMemory(t *testing.T) {
	mem := fsops.NewMem()
	fs := fsops.NewOps(mem)

	if err := mem.WriteFile("/src.txt", []byte("hi"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	dst := "/nested/dir/dst.txt"
	if err := fs.EnsureDir(dst); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if !fs.DirExists("/nested/dir") {
		t.Fatalf("EnsureDir should create parent directory")
	}
	if err := fs.MoveFile("/src.txt", dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if fs.FileExists("/src.txt") {
		t.Fatalf("src should not exist after move")
	}
	if !fs.FileExists(dst) {
		t.Fatalf("dst should exist after move")
	}
	if fs.DirExists(dst) {
		t.Fatalf("a regular file is not a directory")
	}

	if err := mem.WriteFile("/replacement.txt", []byte("new"), 0o644); err != nil {
		t.Fatalf("write replacement: %v", err)
	}
	if err := fs.MoveFile("/replacement.txt", dst); err != nil {
		t.Fatalf("MoveFile replace: %v", err)
	}
	content, err := mem.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(content) != "new" {
		t.Fatalf("expected replaced content, got %q", content)
	}

	if err := fs.RemoveFile("/does/not/exist"); err != nil {
		t.Fatalf("RemoveFile on missing path should succeed: %v", err)
	}
	if err := fs.RemoveFile(dst); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if fs.FileExists(dst) {
		t.Fatalf("dst should be gone after RemoveFile")
	}
}

func TestOps_MoveFileFallsBackToCopy(t *testing.T) {
	mem := fsops.NewMem()
	refusing := renameRefusingFS{Mem: mem}
	fs := fsops.NewOps(refusing)

	if err := mem.WriteFile("/a/payload.bin", []byte("payload"), 0o600); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if err := mem.MkdirAll("/b", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := fs.MoveFile("/a/payload.bin", "/b/payload.bin"); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if fs.FileExists("/a/payload.bin") {
		t.Fatalf("source should be removed after copy")
	}
	content, err := mem.ReadFile("/b/payload.bin")
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(content) != "payload" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestOps_MoveFileMissingSource(t *testing.T) {
	fs := fsops.NewOps(renameRefusingFS{Mem: fsops.NewMem()})
	if err := fs.MoveFile("/missing", "/elsewhere"); err == nil {
		t.Fatalf("expected error moving a missing file")
	}
}

func TestSameFile(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		mem := fsops.NewMem()
		if err := mem.WriteFile("/dir/a.txt", []byte("a"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := mem.WriteFile("/dir/b.txt", []byte("a"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		same, err := mem.SameFile("/dir/a.txt", "/dir/../dir/a.txt")
		if err != nil || !same {
			t.Fatalf("expected same file, got %v %v", same, err)
		}
		same, err = mem.SameFile("/dir/a.txt", "/dir/b.txt")
		if err != nil || same {
			t.Fatalf("expected different files, got %v %v", same, err)
		}
		if _, err := mem.SameFile("/dir/a.txt", "/dir/missing.txt"); err == nil {
			t.Fatalf("expected error for missing path")
		}
	})

	t.Run("on disk", func(t *testing.T) {
		root := t.TempDir()
		first := filepath.Join(root, "first.txt")
		if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		linked := filepath.Join(root, "linked.txt")
		if err := os.Link(first, linked); err != nil {
			t.Skipf("hard links unavailable: %v", err)
		}
		other := filepath.Join(root, "other.txt")
		if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}

		disk := fsops.NewOS()
		same, err := disk.SameFile(first, linked)
		if err != nil || !same {
			t.Fatalf("expected hard link to be the same file, got %v %v", same, err)
		}
		same, err = disk.SameFile(first, other)
		if err != nil || same {
			t.Fatalf("expected distinct files, got %v %v", same, err)
		}
	})
}
