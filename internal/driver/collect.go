package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MoveExt is the extension of Move source files.
const MoveExt = ".move"

// CollectFiles expands patterns into a sorted list of regular files.
// A pattern is a file, a directory (walked recursively for files ending in
// ext) or a glob with `**` support. Files reachable through several patterns
// are returned once.
func CollectFiles(ctx context.Context, patterns []string, ext string) ([]string, error) {
	var (
		files []string
		seen  = make(map[string]struct{})
	)
	add := func(path string) {
		key := resolvedPath(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		files = append(files, filepath.Clean(path))
	}

	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches, err := expandPattern(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				continue
			}
			switch {
			case info.IsDir():
				found, err := listFiles(ctx, m, ext)
				if err != nil {
					return nil, err
				}
				for _, f := range found {
					add(f)
				}
			case info.Mode().IsRegular():
				add(m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// expandPattern returns pattern itself when it names an existing path and
// the glob matches otherwise.
func expandPattern(pattern string) ([]string, error) {
	if _, err := os.Stat(pattern); err == nil {
		return []string{pattern}, nil
	}
	matches, err := doublestar.FilepathGlob(filepath.Clean(pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	return matches, nil
}

// listFiles возвращает все файлы с расширением ext в директории dir
func listFiles(ctx context.Context, dir, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(path, ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}

func resolvedPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
