package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirStore stages files into sub-directories of a local root, one directory
// per container. Objects are written to a temp file and renamed into place.
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at root.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Root returns the store's root directory.
func (s *DirStore) Root() string { return s.root }

func (s *DirStore) ContainerExists(ctx context.Context, container string) (bool, error) {
	info, err := os.Stat(filepath.Join(s.root, container))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("container %s is not a directory", container)
	}
	return true, nil
}

func (s *DirStore) CreateContainer(ctx context.Context, container string) error {
	return os.MkdirAll(filepath.Join(s.root, container), 0o755)
}

func (s *DirStore) Put(ctx context.Context, container, localPath, objectName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	dir := filepath.Join(s.root, container)
	tmp, err := os.CreateTemp(dir, "."+objectName+".*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s: %w", objectName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp object: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, objectName)); err != nil {
		return fmt.Errorf("rename %s: %w", objectName, err)
	}
	return nil
}
