package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ResolveModuleSource 计算模块的基础地址：
// 含 scheme 的路径原样使用；否则基于 BaseURL 解析；两者都没有时视为本地目录。
func (c *Config) ResolveModuleSource(m ModuleConfig) (string, error) {
	raw := strings.TrimSpace(m.Path)
	if raw == "" {
		return "", fmt.Errorf("module %s: path is empty", m.Name)
	}
	if strings.Contains(raw, "://") {
		return strings.TrimRight(raw, "/"), nil
	}

	if c != nil && c.Global.BaseURL != "" {
		base, err := url.Parse(ensureTrailingSlash(c.Global.BaseURL))
		if err != nil {
			return "", fmt.Errorf("parse base url: %w", err)
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse module path: %w", err)
		}
		return strings.TrimRight(base.ResolveReference(ref).String(), "/"), nil
	}

	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("resolve module path: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func ensureTrailingSlash(raw string) string {
	if strings.HasSuffix(raw, "/") {
		return raw
	}
	return raw + "/"
}
