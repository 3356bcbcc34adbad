package manifest

import (
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// DefaultArchiveName 是归档文件名。
const DefaultArchiveName = "files.zip"

// Pack 把 files 写入 zip；prefix 非空时所有条目位于 prefix/ 之下，
// 使得归档挂上搜索路径后 import prefix 可以解析。共享根模块传空 prefix。
func Pack(fsys afero.Fs, root string, files []string, prefix string, w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, rel := range files {
		name := rel
		if prefix != "" {
			name = path.Join(prefix, rel)
		}
		if err := addFile(fsys, zw, filepath.Join(root, filepath.FromSlash(rel)), name); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFile(fsys afero.Fs, zw *zip.Writer, src, name string) error {
	f, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}

// PackDir 按清单规则收集 root 下的文件并写入 out，返回打包的文件列表。
func PackDir(fsys afero.Fs, root, prefix, out string, opts Options) ([]string, error) {
	files, err := Generate(fsys, root, opts)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Create(out)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	if err := Pack(fsys, root, files, prefix, f); err != nil {
		_ = f.Close()
		_ = fsys.Remove(out)
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return files, nil
}
