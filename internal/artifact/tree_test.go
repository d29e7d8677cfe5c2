// internal/artifact/tree_test.go
//
// Unit-tests for artifact-tree path guarding and atomic writes.
//
// Run: go test ./internal/artifact -v

package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndReadFile(t *testing.T) {
	tree := NewTree(t.TempDir())

	if err := tree.WriteFile("acme-site", "assets/css/variables.css", []byte(":root {}\n")); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	got, err := tree.ReadFile("acme-site", "assets/css/variables.css")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(got) != ":root {}\n" {
		t.Errorf("unexpected content: %q", got)
	}

	// No temp files may survive a completed write.
	entries, err := os.ReadDir(filepath.Join(tree.Dir("acme-site"), "assets", "css"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in target dir: %v", entries)
	}
}

func TestPathTraversalGuard(t *testing.T) {
	tree := NewTree(t.TempDir())

	err := tree.WriteFile("acme-site", "../escape.txt", []byte("x"))
	if !errors.Is(err, ErrPathOutsideTree) {
		t.Fatalf("expected ErrPathOutsideTree, got %v", err)
	}

	_, err = tree.ReadFile("acme-site", "../../etc/passwd")
	if !errors.Is(err, ErrPathOutsideTree) {
		t.Fatalf("expected ErrPathOutsideTree, got %v", err)
	}
}

func TestReplaceInFile(t *testing.T) {
	tree := NewTree(t.TempDir())
	if err := tree.WriteFile("acme-site", "index.html", []byte("v1.2.2 and v1.2.2")); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	n, err := tree.ReplaceInFile("acme-site", "index.html", "v1.2.2", "v1.2.3")
	if err != nil {
		t.Fatalf("ReplaceInFile error: %v", err)
	}
	if n != 2 {
		t.Errorf("replacement count = %d, want 2", n)
	}

	got, _ := tree.ReadFile("acme-site", "index.html")
	if string(got) != "v1.2.3 and v1.2.3" {
		t.Errorf("unexpected content: %q", got)
	}

	// Zero matches is reported, not an error.
	n, err = tree.ReplaceInFile("acme-site", "index.html", "absent", "x")
	if err != nil || n != 0 {
		t.Errorf("expected n=0, nil error; got n=%d, err=%v", n, err)
	}
}

func TestExists(t *testing.T) {
	tree := NewTree(t.TempDir())
	if tree.Exists("acme-site") {
		t.Error("Exists true for missing directory")
	}
	if err := os.MkdirAll(tree.Dir("acme-site"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !tree.Exists("acme-site") {
		t.Error("Exists false for present directory")
	}
}
