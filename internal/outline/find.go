package outline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Expand resolves file patterns relative to baseDir. A pattern naming a
// directory selects every .org file below it. Results are sorted and unique.
func Expand(baseDir string, patterns []string) ([]string, error) {
	var files []string
	for _, pat := range patterns {
		if !filepath.IsAbs(pat) {
			pat = filepath.Join(baseDir, pat)
		}
		if info, err := os.Stat(pat); err == nil && info.IsDir() {
			found, walkErr := orgFilesUnder(pat)
			if walkErr != nil {
				return nil, walkErr
			}
			files = append(files, found...)
			continue
		}
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, fmt.Errorf("bad file pattern %q: %w", pat, err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func orgFilesUnder(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".org" {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return out, nil
}

// ReadWarning describes a file that could not be read during lenient loading.
type ReadWarning struct {
	File string // base filename
	Err  error
}

// ReadAllLenient reads every file, skipping unreadable ones instead of
// aborting. Parsed documents are returned along with warnings for the rest.
func ReadAllLenient(files []string, kw Keywords) ([]*Document, []ReadWarning) {
	var docs []*Document
	var warnings []ReadWarning
	for _, path := range files {
		doc, err := ReadFile(path, kw)
		if err != nil {
			warnings = append(warnings, ReadWarning{File: filepath.Base(path), Err: err})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, warnings
}

// AllHeadings flattens the headings of several documents in order.
func AllHeadings(docs []*Document) []*Heading {
	var out []*Heading
	for _, d := range docs {
		out = append(out, d.Headings()...)
	}
	return out
}
