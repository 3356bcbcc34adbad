package vfs

import (
	"errors"
	"path"
	"strings"
)

// FS 是物化器依赖的最小文件系统能力集合，所有路径均为以 / 开头的虚拟路径。
type FS interface {
	// Mkdir 创建单级目录；目录已存在时返回包装了 fs.ErrExist 的错误。
	Mkdir(name string) error
	// WriteFile 覆盖写入文件，父目录必须已经存在。
	WriteFile(name string, data []byte) error
	ReadFile(name string) ([]byte, error)
	Exists(name string) bool
	IsDir(name string) bool
	// HostPath 返回虚拟路径在宿主机上的真实位置；纯内存实现返回空串。
	HostPath(name string) string
}

// ErrInvalidPath 表示路径不是规范化的绝对虚拟路径。
var ErrInvalidPath = errors.New("invalid virtual path")

// Clean 校验并规范化虚拟路径，拒绝相对路径与 .. 逃逸。
func Clean(name string) (string, error) {
	if name == "" || !strings.HasPrefix(name, "/") {
		return "", ErrInvalidPath
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return "", ErrInvalidPath
		}
	}
	return path.Clean(name), nil
}
