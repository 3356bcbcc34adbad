package config

import (
	"os"
	"path/filepath"
	"testing"
)

// testConfigPath 返回 testdata 下的配置样例，文件不存在时直接失败。
func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("配置样例 %s 不存在: %v", name, err)
	}
	return path
}

// writeTempConfig 把内容写入新临时目录下的 flare.toml。
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	return writeConfigInDir(t, t.TempDir(), "flare.toml", content)
}

// writeConfigInDir 在 dir 中写入 name，用于需要 .env 等相邻文件的场景。
func writeConfigInDir(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入 %s 失败: %v", name, err)
	}
	return path
}
