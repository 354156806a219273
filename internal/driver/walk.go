package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScriptExtension is the file extension considered when walking directories.
const ScriptExtension = ".nu"

// CollectFiles expands the path arguments into a sorted list of script
// files. Files are taken as given regardless of extension; directories are
// walked recursively and contribute only *.nu files. Unreadable paths are
// reported but do not stop the rest of the walk.
func CollectFiles(paths []string) ([]string, []error) {
	var files []string
	var errs []error
	seen := make(map[string]struct{})

	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot access %s: %w", path, err))
			continue
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() && strings.HasSuffix(p, ScriptExtension) {
				add(p)
			}
			return nil
		})
		if walkErr != nil {
			errs = append(errs, walkErr)
		}
	}

	sort.Strings(files)
	return files, errs
}
