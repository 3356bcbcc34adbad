package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// Tree 基于 afero 实现 FS；内存模式用 MemMapFs，磁盘模式用 BasePathFs 把 / 映射到 root。
type Tree struct {
	fs   afero.Fs
	root string

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemory 构建纯内存的虚拟文件系统。
func NewMemory() *Tree {
	return newTree(afero.NewMemMapFs(), "")
}

// NewDisk 以 root 为宿主目录构建虚拟文件系统，虚拟路径 /a/b 对应 root/a/b。
func NewDisk(root string) (*Tree, error) {
	if root == "" {
		return nil, errors.New("storage path required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}
	return newTree(afero.NewBasePathFs(afero.NewOsFs(), abs), abs), nil
}

// New 根据 StoragePath 选择后端：为空时使用内存。
func New(storagePath string) (*Tree, error) {
	if storagePath == "" {
		return NewMemory(), nil
	}
	return NewDisk(storagePath)
}

func newTree(base afero.Fs, root string) *Tree {
	return &Tree{
		fs:    base,
		root:  root,
		locks: make(map[string]*entryLock),
	}
}


func (t *Tree) Mkdir(name string) error {
	clean, err := Clean(name)
	if err != nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: err}
	}
	unlock := t.lockEntry(clean)
	defer unlock()

	if ok, _ := afero.Exists(t.fs, clean); ok {
		return &fs.PathError{Op: "mkdir", Path: clean, Err: fs.ErrExist}
	}
	if err := t.fs.Mkdir(clean, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &fs.PathError{Op: "mkdir", Path: clean, Err: fs.ErrExist}
		}
		return err
	}
	return nil
}

func (t *Tree) WriteFile(name string, data []byte) error {
	clean, err := Clean(name)
	if err != nil {
		return &fs.PathError{Op: "write", Path: name, Err: err}
	}
	if clean == "/" {
		return &fs.PathError{Op: "write", Path: name, Err: ErrInvalidPath}
	}
	unlock := t.lockEntry(clean)
	defer unlock()

	dir := path.Dir(clean)
	if isDir, _ := afero.IsDir(t.fs, dir); !isDir {
		return &fs.PathError{Op: "write", Path: clean, Err: fs.ErrNotExist}
	}
	if isDir, _ := afero.IsDir(t.fs, clean); isDir {
		return &fs.PathError{Op: "write", Path: clean, Err: errors.New("is a directory")}
	}

	tempFile, err := afero.TempFile(t.fs, dir, ".flare-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(data)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = t.fs.Remove(tempName)
		return err
	}

	if err := t.fs.Rename(tempName, clean); err != nil {
		_ = t.fs.Remove(tempName)
		return err
	}
	return nil
}

func (t *Tree) ReadFile(name string) ([]byte, error) {
	clean, err := Clean(name)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return afero.ReadFile(t.fs, clean)
}

func (t *Tree) Exists(name string) bool {
	clean, err := Clean(name)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(t.fs, clean)
	return ok
}

func (t *Tree) IsDir(name string) bool {
	clean, err := Clean(name)
	if err != nil {
		return false
	}
	ok, _ := afero.IsDir(t.fs, clean)
	return ok
}

func (t *Tree) HostPath(name string) string {
	if t.root == "" {
		return ""
	}
	clean, err := Clean(name)
	if err != nil {
		return ""
	}
	return filepath.Join(t.root, filepath.FromSlash(clean))
}

// Files 返回 dir 之下所有普通文件的虚拟路径（排序后），目录不存在时返回空。
func (t *Tree) Files(dir string) ([]string, error) {
	clean, err := Clean(dir)
	if err != nil {
		return nil, err
	}
	if ok, _ := afero.DirExists(t.fs, clean); !ok {
		return nil, nil
	}
	var files []string
	err = afero.Walk(t.fs, clean, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.Mode().IsRegular() {
			files = append(files, filepath.ToSlash(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (t *Tree) lockEntry(key string) func() {
	t.mu.Lock()
	lock := t.locks[key]
	if lock == nil {
		lock = &entryLock{}
		t.locks[key] = lock
	}
	lock.refs++
	t.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		t.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(t.locks, key)
		}
		t.mu.Unlock()
	}
}
