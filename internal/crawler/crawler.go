package crawler

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vbridge/internal/lang"
)

// Crawler scans a directory tree for source files of one language.
type Crawler struct {
	exts    map[string]bool
	ignored []string
}

// New creates a crawler for the given source language.
func New(language lang.Language) *Crawler {
	exts := map[string]bool{}
	switch language {
	case lang.VB6:
		exts[".bas"] = true
		exts[".cls"] = true
		exts[".frm"] = true
	case lang.VBNet:
		exts[".vb"] = true
	case lang.CSharp:
		exts[".cs"] = true
	}
	return &Crawler{
		exts:    exts,
		ignored: []string{".git", "vendor", "node_modules", "bin", "obj", "testdata"},
	}
}

// Scan walks the root directory and streams matching files through the
// callback, so a large tree never has to fit in memory at once.
func (c *Crawler) Scan(root string, onFile func(path string, code string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.exts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		code, err := os.ReadFile(path)
		if err != nil {
			// Skip unreadable files instead of failing the whole scan.
			return nil
		}
		onFile(path, string(code))
		return nil
	})
}
