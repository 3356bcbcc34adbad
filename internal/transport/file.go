package transport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/spf13/afero"
)

// FileFetcher 读取 file:// 资源；缺失文件与目录都映射为 404，与远端语义保持一致。
type FileFetcher struct {
	fs afero.Fs
}

// NewFileFetcher 使用给定 afero.Fs 读取文件；fsys 为空时读宿主文件系统。
func NewFileFetcher(fsys afero.Fs) *FileFetcher {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileFetcher{fs: fsys}
}

func (f *FileFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	if parsed.Scheme != "file" {
		return nil, fmt.Errorf("file fetcher cannot serve %s", rawURL)
	}

	name := parsed.Path
	if isDir, _ := afero.IsDir(f.fs, name); isDir {
		return &Response{URL: rawURL, StatusCode: http.StatusNotFound}, nil
	}
	body, err := afero.ReadFile(f.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Response{URL: rawURL, StatusCode: http.StatusNotFound}, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return &Response{URL: rawURL, StatusCode: http.StatusForbidden}, nil
		}
		return nil, err
	}
	return &Response{URL: rawURL, StatusCode: http.StatusOK, Body: body}, nil
}
