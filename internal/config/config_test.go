package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.InstallRoot != DefaultInstallRoot {
		t.Fatalf("InstallRoot 应该自动填充默认值，得到 %s", cfg.Global.InstallRoot)
	}
	if !cfg.Global.ArchiveFirst {
		t.Fatalf("ArchiveFirst 默认应为 true")
	}
	if cfg.Global.MarkLoaded != MarkLoadedAll || cfg.Global.GuardStyle != GuardStyleTry {
		t.Fatalf("策略默认值错误: %+v", cfg.Global)
	}
	if cfg.Global.FetchTimeout.DurationValue() != 20*time.Second {
		t.Fatalf("FetchTimeout 解析错误: %s", cfg.Global.FetchTimeout.DurationValue())
	}
	if !strings.HasPrefix(cfg.Global.StoragePath, "/") {
		t.Fatalf("StoragePath 应转换为绝对路径: %s", cfg.Global.StoragePath)
	}
	if got := cfg.ModuleNames(); len(got) != 2 || got[0] != "core" || got[1] != "extra" {
		t.Fatalf("模块顺序应与配置一致: %v", got)
	}
	if !cfg.Modules[1].Optional {
		t.Fatalf("extra 应为可选模块")
	}
	if len(cfg.Bootstrap.Packages) != 1 || cfg.Bootstrap.Packages[0] != "setuptools" {
		t.Fatalf("Packages 解析错误: %v", cfg.Bootstrap.Packages)
	}
}

func TestLoadHCLMatchesTOMLModel(t *testing.T) {
	cfg, err := Load(testConfigPath(t, "valid.hcl"))
	if err != nil {
		t.Fatalf("Load HCL 返回错误: %v", err)
	}
	if cfg.Global.ArchiveFirst {
		t.Fatalf("archive_first=false 应被保留")
	}
	if cfg.Global.GuardStyle != GuardStyleFindSpec {
		t.Fatalf("guard_style 解析错误: %s", cfg.Global.GuardStyle)
	}
	if cfg.Global.FetchTimeout.DurationValue() != 5*time.Second {
		t.Fatalf("fetch_timeout 解析错误: %s", cfg.Global.FetchTimeout.DurationValue())
	}
	if len(cfg.Modules) != 2 || cfg.Modules[0].Name != "core" || !cfg.Modules[1].Optional {
		t.Fatalf("module 块解析错误: %+v", cfg.Modules)
	}
	if cfg.S3.Endpoint != "localhost:9000" {
		t.Fatalf("s3 块解析错误: %+v", cfg.S3)
	}
	if cfg.Global.ManifestName != DefaultManifestName {
		t.Fatalf("HCL 配置同样需要默认值: %s", cfg.Global.ManifestName)
	}
}

func TestValidateRejectsBadModule(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
}

func TestValidateModuleNames(t *testing.T) {
	testCases := []struct {
		name      string
		module    string
		shouldErr bool
	}{
		{"identifier ok", "core", false},
		{"underscore ok", "_private2", false},
		{"empty", "", true},
		{"dash", "my-module", true},
		{"dotted", "a.b", true},
		{"path", "../core", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Modules[0].Name = tc.module
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error for module %q", tc.module)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error for module %q: %v", tc.module, err)
			}
		})
	}
}

func TestValidateRejectsDuplicateModules(t *testing.T) {
	cfg := validConfig()
	cfg.Modules = append(cfg.Modules, cfg.Modules[0])
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("重复模块名应报错")
	}
	fieldErr, ok := err.(FieldError)
	if !ok || fieldErr.Field != "Module[core].Name" {
		t.Fatalf("错误应定位到重复字段，得到 %v", err)
	}
}

func TestValidatePolicies(t *testing.T) {
	cfg := validConfig()
	cfg.Global.MarkLoaded = "some"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("未知 MarkLoaded 应报错")
	}

	cfg = validConfig()
	cfg.Global.GuardStyle = "if"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("未知 GuardStyle 应报错")
	}

	cfg = validConfig()
	cfg.Global.Runtime = "pyodide"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("未注册运行时应报错")
	}

	cfg = validConfig()
	cfg.Global.InstallRoot = "lib/site-packages"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("相对 InstallRoot 应报错")
	}
}

func TestValidateProcessRuntimeNeedsStorage(t *testing.T) {
	cfg := validConfig()
	cfg.Global.Runtime = "process"
	cfg.Global.StoragePath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("process 运行时缺少 StoragePath 应报错")
	}
}

func TestValidateS3ModulesNeedEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Modules[0].Path = "s3://bucket/core"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("s3 模块缺少 Endpoint 应报错")
	}
	cfg.S3.Endpoint = "localhost:9000"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("配置 Endpoint 后应通过: %v", err)
	}
}

func TestResolveModuleSource(t *testing.T) {
	cfg := validConfig()
	cfg.Global.BaseURL = "https://cdn.example.org/app"

	got, err := cfg.ResolveModuleSource(ModuleConfig{Name: "core", Path: "core/"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if got != "https://cdn.example.org/app/core" {
		t.Fatalf("BaseURL 相对解析错误: %s", got)
	}

	got, err = cfg.ResolveModuleSource(ModuleConfig{Name: "x", Path: "s3://bucket/x/"})
	if err != nil || got != "s3://bucket/x" {
		t.Fatalf("带 scheme 的路径应原样使用: %s %v", got, err)
	}

	cfg.Global.BaseURL = ""
	got, err = cfg.ResolveModuleSource(ModuleConfig{Name: "local", Path: "/srv/modules/local"})
	if err != nil || got != "file:///srv/modules/local" {
		t.Fatalf("本地路径应转换为 file:// 地址: %s %v", got, err)
	}
}

func TestModuleModes(t *testing.T) {
	modes := ModuleModes([]ModuleConfig{{Name: "core"}, {Name: "extra", Optional: true}})
	if len(modes) != 2 || modes[0] != "core:required" || modes[1] != "extra:optional" {
		t.Fatalf("模块模式摘要错误: %v", modes)
	}
}

func validConfig() *Config {
	cfg := &Config{
		Global: GlobalConfig{
			Runtime: "recorder",
		},
		Modules: []ModuleConfig{
			{Name: "core", Path: "https://cdn.example.org/core"},
		},
	}
	applyGlobalDefaults(&cfg.Global)
	return cfg
}
