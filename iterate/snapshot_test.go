package iterate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotBasic(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "main.go", []byte("package main\n"))
	writeTestFile(t, root, "docs/readme.md", []byte("# readme\n"))

	files, err := Snapshot(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := files["main.go"]; got != "package main\n" {
		t.Errorf("main.go = %q", got)
	}
	if got := files["docs/readme.md"]; got != "# readme\n" {
		t.Errorf("docs/readme.md = %q", got)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %d: %v", len(files), keys(files))
	}
}

func TestSnapshotExcludesGitAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "kept.txt", []byte("kept"))
	writeTestFile(t, root, ".git/config", []byte("secret"))
	writeTestFile(t, root, ".git/objects/ab/cdef", []byte("blob"))
	writeTestFile(t, root, "vendor/dep/.git/HEAD", []byte("ref"))

	files, err := Snapshot(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for path := range files {
		for _, part := range strings.Split(path, "/") {
			if part == ".git" {
				t.Errorf("snapshot leaked version-control path %q", path)
			}
		}
	}
	if _, ok := files["kept.txt"]; !ok {
		t.Error("kept.txt missing from snapshot")
	}
	if len(files) != 1 {
		t.Errorf("expected only kept.txt, got %v", keys(files))
	}
}

func TestSnapshotExtraExcludes(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "src/a.go", []byte("a"))
	writeTestFile(t, root, "node_modules/pkg/index.js", []byte("js"))

	files, err := Snapshot(root, []string{"node_modules"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := files["node_modules/pkg/index.js"]; ok {
		t.Error("excluded directory leaked into snapshot")
	}
	if _, ok := files["src/a.go"]; !ok {
		t.Error("src/a.go missing from snapshot")
	}
}

func TestSnapshotLossyUTF8(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "mixed.bin", []byte("ok\xff\xfe1"))

	files, err := Snapshot(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := files["mixed.bin"]
	if !ok {
		t.Fatal("file with invalid bytes should still be snapshotted")
	}
	if got != "ok1" {
		t.Errorf("invalid bytes should be dropped, got %q", got)
	}
}

func TestSnapshotSkipsUnreadableFiles(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}
	root := t.TempDir()
	writeTestFile(t, root, "readable.txt", []byte("yes"))
	writeTestFile(t, root, "hidden.txt", []byte("no"))
	if err := os.Chmod(filepath.Join(root, "hidden.txt"), 0000); err != nil {
		t.Fatal(err)
	}

	files, err := Snapshot(root, nil)
	if err != nil {
		t.Fatalf("one unreadable file must not abort the snapshot: %v", err)
	}
	if _, ok := files["hidden.txt"]; ok {
		t.Error("unreadable file should be skipped")
	}
	if _, ok := files["readable.txt"]; !ok {
		t.Error("readable.txt missing from snapshot")
	}
}

func keys(files FileSet) []string {
	out := make([]string, 0, len(files))
	for k := range files {
		out = append(out, k)
	}
	return out
}
