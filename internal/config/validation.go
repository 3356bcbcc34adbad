package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/viur-framework/flare/internal/engine"
)

// 模块名同时作为目录名与 import 语句目标，必须是合法标识符。
var moduleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var supportedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"s3":    {},
	"file":  {},
}

// Validate 针对语义级别做进一步校验，防止非法配置进入引导流程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if err := validateVirtualRoot(g.InstallRoot); err != nil {
		return newFieldError("Global.InstallRoot", err.Error())
	}
	if err := validateVirtualRoot(g.ArchiveRoot); err != nil {
		return newFieldError("Global.ArchiveRoot", err.Error())
	}
	if err := validateResourceName(g.ArchiveName); err != nil {
		return newFieldError("Global.ArchiveName", err.Error())
	}
	if err := validateResourceName(g.ManifestName); err != nil {
		return newFieldError("Global.ManifestName", err.Error())
	}
	if g.SharedRootModule != "" && !moduleNamePattern.MatchString(g.SharedRootModule) {
		return newFieldError("Global.SharedRootModule", "必须是合法的模块名")
	}
	switch g.MarkLoaded {
	case MarkLoadedAll, MarkLoadedRetrieved:
	default:
		return newFieldError("Global.MarkLoaded", "仅支持 all/retrieved")
	}
	switch g.GuardStyle {
	case GuardStyleTry, GuardStyleFindSpec:
	default:
		return newFieldError("Global.GuardStyle", "仅支持 try/find_spec")
	}
	if g.MaxConcurrentFetches < 0 {
		return newFieldError("Global.MaxConcurrentFetches", "不能为负数")
	}
	if g.FetchTimeout.DurationValue() < 0 {
		return newFieldError("Global.FetchTimeout", "不能为负数")
	}
	driver, ok := engine.Resolve(g.Runtime)
	if !ok {
		return newFieldError("Global.Runtime", fmt.Sprintf("未注册运行时: %s（可选 %s）", g.Runtime, strings.Join(engine.Keys(), "/")))
	}
	if driver.RequiresDisk && strings.TrimSpace(g.StoragePath) == "" {
		return newFieldError("Global.StoragePath", fmt.Sprintf("运行时 %s 需要磁盘存储目录", driver.Key))
	}
	if g.BaseURL != "" {
		if err := validateSource(g.BaseURL); err != nil {
			return fmt.Errorf("Global.BaseURL: %w", err)
		}
	}

	seenNames := map[string]struct{}{}
	usesS3 := false
	for i := range c.Modules {
		m := &c.Modules[i]
		if m.Name == "" {
			return newFieldError("Module[].Name", "不能为空")
		}
		if !moduleNamePattern.MatchString(m.Name) {
			return newFieldError(moduleField(m.Name, "Name"), "必须是合法的模块名")
		}
		if _, exists := seenNames[m.Name]; exists {
			return newFieldError(moduleField(m.Name, "Name"), "重复")
		}
		seenNames[m.Name] = struct{}{}

		if m.Path == "" {
			return newFieldError(moduleField(m.Name, "Path"), "不能为空")
		}
		if strings.Contains(m.Path, "://") {
			if err := validateSource(m.Path); err != nil {
				return fmt.Errorf("%s: %w", moduleField(m.Name, "Path"), err)
			}
		}
		source, err := c.ResolveModuleSource(*m)
		if err != nil {
			return fmt.Errorf("%s: %w", moduleField(m.Name, "Path"), err)
		}
		if strings.HasPrefix(source, "s3://") {
			usesS3 = true
		}
	}

	if usesS3 && strings.TrimSpace(c.S3.Endpoint) == "" {
		return newFieldError("S3.Endpoint", "存在 s3:// 模块时不能为空")
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return newFieldError("S3.AccessKey/SecretKey", "必须同时提供或同时留空")
	}

	return nil
}

func validateVirtualRoot(root string) error {
	if root == "" {
		return errors.New("不能为空")
	}
	if !strings.HasPrefix(root, "/") {
		return errors.New("必须是以 / 开头的绝对路径")
	}
	if path.Clean(root) != root {
		return errors.New("必须是规范化路径")
	}
	return nil
}

func validateResourceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("不能为空")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.New("只能是单个文件名")
	}
	return nil
}

func validateSource(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if _, ok := supportedSchemes[parsed.Scheme]; !ok {
		return fmt.Errorf("仅支持 http/https/s3/file，地址: %s", raw)
	}
	if parsed.Scheme != "file" && parsed.Host == "" {
		return fmt.Errorf("地址缺少 Host: %s", raw)
	}
	return nil
}
