// Local filesystem Repository, sandboxed under a root directory.
//
// Information Hiding:
// - Path resolution and escape rejection
// - Filesystem error wrapping

package project

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local is a Repository over a directory on disk. Every path is resolved
// against the root and rejected if it escapes it.
type Local struct {
	root string
}

// NewLocal creates a repository rooted at dir. The directory must exist.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", abs)
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute root directory.
func (l *Local) Root() string {
	return l.root
}

// resolve maps a relative project path to an absolute path, rejecting
// escapes. An empty path means the root itself.
func (l *Local) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", path)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes project root: %s", path)
	}
	return filepath.Join(l.root, cleaned), nil
}

func (l *Local) ReadFile(path string) (string, error) {
	abs, err := l.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func (l *Local) WriteFile(path, content string) error {
	abs, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (l *Local) CreateFile(path, content string) error {
	abs, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (l *Local) DeleteFile(path string) error {
	abs, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func (l *Local) RenameFile(oldPath, newPath string) error {
	src, err := l.resolve(oldPath)
	if err != nil {
		return err
	}
	dst, err := l.resolve(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", newPath, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

func (l *Local) CopyFile(srcPath, dstPath string) error {
	src, err := l.resolve(srcPath)
	if err != nil {
		return err
	}
	dst, err := l.resolve(dstPath)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", dstPath, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dstPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s to %s: %w", srcPath, dstPath, err)
	}
	return out.Close()
}

func (l *Local) MoveFile(src, dst string) error {
	return l.RenameFile(src, dst)
}

func (l *Local) CreateFolder(path string) error {
	abs, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmt.Errorf("creating folder %s: %w", path, err)
	}
	return nil
}

// FileTree walks the root and returns all file paths, sorted, with forward
// slashes. Hidden directories (".git" and friends) are skipped.
func (l *Local) FileTree() ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != l.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking project tree: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (l *Local) Stat(path string) (FileInfo, error) {
	abs, err := l.resolve(path)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return FileInfo{
		Path:    filepath.ToSlash(filepath.Clean(path)),
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

func (l *Local) SearchAndReplace(path, old, new string) (int, error) {
	content, err := l.ReadFile(path)
	if err != nil {
		return 0, err
	}
	count := strings.Count(content, old)
	if count == 0 {
		return 0, nil
	}
	if err := l.WriteFile(path, strings.ReplaceAll(content, old, new)); err != nil {
		return 0, err
	}
	return count, nil
}

func (l *Local) PatchFile(path, old, new string) error {
	content, err := l.ReadFile(path)
	if err != nil {
		return err
	}
	if !strings.Contains(content, old) {
		return fmt.Errorf("old content not found in %s", path)
	}
	return l.WriteFile(path, strings.Replace(content, old, new, 1))
}

// Verify Local implements Repository
var _ Repository = (*Local)(nil)
