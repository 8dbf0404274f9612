package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func paths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, filepath.ToSlash(f.Path))
	}
	return out
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestScanCollectsPythonFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py")
	writeFile(t, root, "pkg/util.py")
	writeFile(t, root, "pkg/README.md")
	writeFile(t, root, "main.go")

	files, err := New(Options{SkipHidden: true}).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := paths(files)
	if len(got) != 2 {
		t.Fatalf("expected 2 files, got %v", got)
	}
	if !contains(got, "app.py") || !contains(got, "pkg/util.py") {
		t.Errorf("unexpected files: %v", got)
	}
}

func TestScanSkipsExcludedAndHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py")
	writeFile(t, root, "__pycache__/app.cpython-312.py")
	writeFile(t, root, ".venv/lib/site.py")
	writeFile(t, root, ".hidden/secret.py")
	writeFile(t, root, "vendor/dep.py")

	files, err := New(Options{SkipHidden: true}).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := paths(files)
	if len(got) != 1 || got[0] != "app.py" {
		t.Errorf("expected only app.py, got %v", got)
	}
}

func TestScanCustomExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py")
	writeFile(t, root, "generated/models.py")

	files, err := New(Options{
		SkipHidden:  true,
		ExcludeDirs: []string{"generated"},
	}).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := paths(files)
	if contains(got, "generated/models.py") {
		t.Errorf("generated dir should be excluded, got %v", got)
	}
	if !contains(got, "app.py") {
		t.Errorf("app.py missing from %v", got)
	}
}

func TestScanIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py")
	writeFile(t, root, "scratch.py")
	writeFile(t, root, "experiments/try1.py")

	ignore := "# scratch work\nscratch.py\nexperiments/\n"
	if err := os.WriteFile(filepath.Join(root, ".gfgignore"), []byte(ignore), 0644); err != nil {
		t.Fatalf("writing ignore file: %v", err)
	}

	files, err := New(Options{SkipHidden: true}).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := paths(files)
	if len(got) != 1 || got[0] != "app.py" {
		t.Errorf("expected only app.py, got %v", got)
	}
}

func TestScanFileInfoFields(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py")

	files, err := New(Options{SkipHidden: true}).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}

	f := files[0]
	if !filepath.IsAbs(f.FullPath) {
		t.Errorf("FullPath should be absolute: %q", f.FullPath)
	}
	if f.Size == 0 {
		t.Error("Size should be populated")
	}
}

func TestScanMissingRoot(t *testing.T) {
	files, err := New(Options{}).Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil && len(files) != 0 {
		t.Errorf("expected error or empty result, got %v", paths(files))
	}
}
