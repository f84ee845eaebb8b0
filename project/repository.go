// Package project abstracts access to a project's file tree.
//
// Tools never touch the filesystem directly; they go through a Repository so
// the same tool set can run over a local sandbox, a test double, or a remote
// workspace.
package project

import (
	"io/fs"
	"time"
)

// FileInfo describes one entry in the project tree. Path is always relative
// to the project root with forward slashes.
type FileInfo struct {
	Path    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// Repository is the file access contract the tool layer is written against.
// All paths are relative to the project root; implementations must reject
// paths that escape it.
type Repository interface {
	// ReadFile returns the full content of a file.
	ReadFile(path string) (string, error)

	// WriteFile replaces the content of a file, creating it if needed.
	WriteFile(path, content string) error

	// CreateFile creates a new file with the given content. Fails if the
	// file already exists.
	CreateFile(path, content string) error

	// DeleteFile removes a file.
	DeleteFile(path string) error

	// RenameFile renames a file within its directory or across directories.
	RenameFile(oldPath, newPath string) error

	// CopyFile copies a file to a new path.
	CopyFile(src, dst string) error

	// MoveFile moves a file to a new path.
	MoveFile(src, dst string) error

	// CreateFolder creates a directory, including missing parents.
	CreateFolder(path string) error

	// FileTree returns every file under the root as relative paths, sorted.
	FileTree() ([]string, error)

	// Stat returns metadata for a file or directory.
	Stat(path string) (FileInfo, error)

	// SearchAndReplace replaces every occurrence of old with new in one file
	// and returns the number of replacements. Zero replacements is not an
	// error.
	SearchAndReplace(path, old, new string) (int, error)

	// PatchFile replaces one exact occurrence of old content with new
	// content. Fails when old is absent.
	PatchFile(path, old, new string) error
}
