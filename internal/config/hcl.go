package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclFile 描述 .hcl 配置的顶层结构，字段语义与 TOML 键一一对应。
type hclFile struct {
	LogLevel      string `hcl:"log_level,optional"`
	LogFilePath   string `hcl:"log_file_path,optional"`
	LogMaxSize    int    `hcl:"log_max_size,optional"`
	LogMaxBackups int    `hcl:"log_max_backups,optional"`
	LogCompress   *bool  `hcl:"log_compress,optional"`

	BaseURL     string `hcl:"base_url,optional"`
	StoragePath string `hcl:"storage_path,optional"`

	InstallRoot      string `hcl:"install_root,optional"`
	ArchiveRoot      string `hcl:"archive_root,optional"`
	SharedRootModule string `hcl:"shared_root_module,optional"`
	ArchiveFirst     *bool  `hcl:"archive_first,optional"`
	ArchiveName      string `hcl:"archive_name,optional"`
	ManifestName     string `hcl:"manifest_name,optional"`
	MarkLoaded       string `hcl:"mark_loaded,optional"`
	GuardStyle       string `hcl:"guard_style,optional"`

	MaxConcurrentFetches int    `hcl:"max_concurrent_fetches,optional"`
	FetchTimeout         string `hcl:"fetch_timeout,optional"`

	Runtime     string `hcl:"runtime,optional"`
	Interpreter string `hcl:"interpreter,optional"`

	S3        *hclS3        `hcl:"s3,block"`
	Bootstrap *hclBootstrap `hcl:"bootstrap,block"`
	Modules   []*hclModule  `hcl:"module,block"`
}

type hclS3 struct {
	Endpoint  string `hcl:"endpoint"`
	Region    string `hcl:"region,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
	UseSSL    bool   `hcl:"use_ssl,optional"`
}

type hclBootstrap struct {
	Prelude  string   `hcl:"prelude,optional"`
	Packages []string `hcl:"packages,optional"`
	Kickoff  string   `hcl:"kickoff,optional"`
}

type hclModule struct {
	Name     string `hcl:"name,label"`
	Path     string `hcl:"path"`
	Optional bool   `hcl:"optional,optional"`
}

// loadHCL 解析 block 风格的 HCL 配置，例如：
//
//	module "core" {
//	  path = "https://example.org/core"
//	}
func loadHCL(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("读取配置失败: %w", diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("解析配置失败: %w", diags)
	}

	var timeout Duration
	if err := timeout.UnmarshalText([]byte(parsed.FetchTimeout)); err != nil {
		return nil, fmt.Errorf("解析配置失败: fetch_timeout: %w", err)
	}

	cfg := &Config{
		Global: GlobalConfig{
			LogLevel:             parsed.LogLevel,
			LogFilePath:          parsed.LogFilePath,
			LogMaxSize:           parsed.LogMaxSize,
			LogMaxBackups:        parsed.LogMaxBackups,
			LogCompress:          boolOr(parsed.LogCompress, true),
			BaseURL:              parsed.BaseURL,
			StoragePath:          parsed.StoragePath,
			InstallRoot:          parsed.InstallRoot,
			ArchiveRoot:          parsed.ArchiveRoot,
			SharedRootModule:     parsed.SharedRootModule,
			ArchiveFirst:         boolOr(parsed.ArchiveFirst, true),
			ArchiveName:          parsed.ArchiveName,
			ManifestName:         parsed.ManifestName,
			MarkLoaded:           parsed.MarkLoaded,
			GuardStyle:           parsed.GuardStyle,
			MaxConcurrentFetches: parsed.MaxConcurrentFetches,
			FetchTimeout:         timeout,
			Runtime:              parsed.Runtime,
			Interpreter:          parsed.Interpreter,
		},
	}
	if parsed.S3 != nil {
		cfg.S3 = S3Config{
			Endpoint:  parsed.S3.Endpoint,
			Region:    parsed.S3.Region,
			AccessKey: parsed.S3.AccessKey,
			SecretKey: parsed.S3.SecretKey,
			UseSSL:    parsed.S3.UseSSL,
		}
	}
	if parsed.Bootstrap != nil {
		cfg.Bootstrap = BootstrapConfig{
			Prelude:  parsed.Bootstrap.Prelude,
			Packages: parsed.Bootstrap.Packages,
			Kickoff:  parsed.Bootstrap.Kickoff,
		}
	}
	for _, m := range parsed.Modules {
		cfg.Modules = append(cfg.Modules, ModuleConfig{
			Name:     m.Name,
			Path:     m.Path,
			Optional: m.Optional,
		})
	}
	return cfg, nil
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
