package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// DiscoverFiles expands the given paths (files, directories, or globs)
// into a sorted, deduplicated list of floor-plan image files.
func DiscoverFiles(args []string, cfg *Config) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			found, err := discoverInDirectory(arg, cfg)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		case err == nil:
			if includeFile(arg, cfg) {
				add(arg)
			}
		default:
			// Not a plain path; try it as a glob.
			matches, globErr := filepath.Glob(arg)
			if globErr != nil || len(matches) == 0 {
				return nil, fmt.Errorf("cannot access %s: %w", arg, err)
			}
			for _, m := range matches {
				if includeFile(m, cfg) {
					add(m)
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func discoverInDirectory(dir string, cfg *Config) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !cfg.Recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if includeFile(path, cfg) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}

// includeFile applies the extension whitelist and the include/exclude
// patterns to one candidate path.
func includeFile(path string, cfg *Config) bool {
	if !supportedExtension(path) {
		return false
	}
	base := filepath.Base(path)
	for _, pattern := range cfg.ExcludePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return false
		}
	}
	if len(cfg.IncludePatterns) == 0 {
		return true
	}
	for _, pattern := range cfg.IncludePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func supportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range utils.SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
