package fetch

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/viur-framework/flare/internal/vfs"
)

// Materializer 在虚拟文件系统中逐级补齐目录并写入文件。
type Materializer struct {
	fs vfs.FS
}

// NewMaterializer 绑定目标文件系统。
func NewMaterializer(fsys vfs.FS) *Materializer {
	return &Materializer{fs: fsys}
}

// Materialize 把 content 写到 root/relativePath。缺失的中间目录会被创建，
// 并发创建同一目录导致的“已存在”不视为错误；重复写入同一文件会覆盖。
func (m *Materializer) Materialize(root, relativePath string, content []byte) error {
	target := path.Join(root, relativePath)
	if err := ValidateRelativePath(relativePath); err != nil {
		return &WriteError{Path: target, Err: err}
	}
	if !strings.HasPrefix(root, "/") {
		return &WriteError{Path: target, Err: fmt.Errorf("root %q is not absolute", root)}
	}

	segments := strings.Split(strings.Trim(target, "/"), "/")
	current := ""
	for _, segment := range segments[:len(segments)-1] {
		current += "/" + segment
		if m.fs.Exists(current) {
			if !m.fs.IsDir(current) {
				return &WriteError{Path: target, Err: fmt.Errorf("%s is not a directory", current)}
			}
			continue
		}
		if err := m.fs.Mkdir(current); err != nil && !errors.Is(err, fs.ErrExist) {
			return &WriteError{Path: current, Err: err}
		}
	}

	if err := m.fs.WriteFile(target, content); err != nil {
		return &WriteError{Path: target, Err: err}
	}
	return nil
}

// ValidateRelativePath 拒绝空路径、绝对路径以及包含 . / .. / 空段的路径。
func ValidateRelativePath(p string) error {
	if p == "" {
		return errors.New("empty path")
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("path %q must be relative", p)
	}
	for _, segment := range strings.Split(p, "/") {
		switch segment {
		case "", ".", "..":
			return fmt.Errorf("path %q contains an invalid segment", p)
		}
	}
	return nil
}
