package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedManifest 标记清单内容不是相对路径字符串数组。
var ErrMalformedManifest = errors.New("manifest is not a list of relative paths")

// FetchError 表示资源返回非 2xx 或传输失败。
type FetchError struct {
	Module     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("module %s: fetch %s: %v", e.Module, e.URL, e.Err)
	}
	return fmt.Sprintf("module %s: fetch %s: unexpected status %d", e.Module, e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ManifestParseError 表示清单可以取回但无法解析。
type ManifestParseError struct {
	Module string
	URL    string
	Err    error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("module %s: parse manifest %s: %v", e.Module, e.URL, e.Err)
}

func (e *ManifestParseError) Unwrap() error { return e.Err }

// WriteError 表示虚拟文件系统写入失败。
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// AggregateFetchError 汇总所有必需模块的失败。
type AggregateFetchError struct {
	Failures []Outcome
}

func (e *AggregateFetchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Err.Error())
	}
	return fmt.Sprintf("required module(s) failed [%s]: %s", strings.Join(e.Modules(), ", "), strings.Join(parts, "; "))
}

func (e *AggregateFetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Modules 返回失败模块名，保持配置顺序。
func (e *AggregateFetchError) Modules() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Module
	}
	return names
}
