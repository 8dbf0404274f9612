// Package scanner discovers Python source files under a directory tree,
// skipping hidden entries, common build/VCS directories, and anything
// matched by .gfgignore glob patterns.
package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo represents one discovered Python file.
type FileInfo struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden     bool     // Skip hidden files and directories (starting with .)
	ExcludeDirs    []string // Directory names to exclude
	IgnoreFileName string   // Name of the ignore file (default: .gfgignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".gfgignore",
		ExcludeDirs: []string{
			"node_modules",
			"__pycache__",
			".venv",
			"venv",
			"dist",
			"build",
			"vendor",
			".tox",
			".nox",
			"site-packages",
		},
	}
}

// Scanner walks a directory tree collecting Python files.
type Scanner struct {
	opts Options
}

// New creates a Scanner with the given options. Zero-value fields fall
// back to defaults.
func New(opts Options) *Scanner {
	def := DefaultOptions()
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = def.IgnoreFileName
	}
	if len(opts.ExcludeDirs) == 0 {
		opts.ExcludeDirs = def.ExcludeDirs
	}
	return &Scanner{opts: opts}
}

// Scan recursively scans root and returns every .py file found, in
// deterministic walk order.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	patterns, err := s.loadIgnorePatterns(absRoot)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if s.isExcludedDir(info.Name()) || matchesAny(patterns, relSlash, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(info.Name(), ".py") {
			return nil
		}
		if matchesAny(patterns, relSlash, info.Name()) {
			return nil
		}

		files = append(files, FileInfo{
			Path:     relPath,
			FullPath: path,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, err)
	}

	return files, nil
}

func (s *Scanner) isExcludedDir(name string) bool {
	for _, d := range s.opts.ExcludeDirs {
		if name == d {
			return true
		}
	}
	return false
}

// loadIgnorePatterns reads glob patterns from the root's ignore file.
// A missing file means no extra patterns.
func (s *Scanner) loadIgnorePatterns(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", s.opts.IgnoreFileName, err)
	}
	defer f.Close()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, strings.TrimSuffix(line, "/"))
	}
	return patterns, sc.Err()
}

// matchesAny matches a relative path or base name against the patterns.
func matchesAny(patterns []string, relSlash, base string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, relSlash); ok {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}
