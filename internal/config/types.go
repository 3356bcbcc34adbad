package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// MarshalYAML 以 Go Duration 字符串输出，供 check-config 打印。
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// 标记已加载模块的策略。
const (
	MarkLoadedAll       = "all"
	MarkLoadedRetrieved = "retrieved"
)

// 可选模块的导入守卫写法。
const (
	GuardStyleTry      = "try"
	GuardStyleFindSpec = "find_spec"
)

// GlobalConfig 描述一次引导运行共享的全局参数。
type GlobalConfig struct {
	LogLevel      string `mapstructure:"LogLevel" yaml:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath" yaml:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize" yaml:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups" yaml:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress" yaml:"LogCompress"`

	// BaseURL 用于解析未携带 scheme 的模块路径。
	BaseURL string `mapstructure:"BaseURL" yaml:"BaseURL"`
	// StoragePath 为空时虚拟文件系统只驻留内存。
	StoragePath string `mapstructure:"StoragePath" yaml:"StoragePath"`

	InstallRoot      string `mapstructure:"InstallRoot" yaml:"InstallRoot"`
	ArchiveRoot      string `mapstructure:"ArchiveRoot" yaml:"ArchiveRoot"`
	SharedRootModule string `mapstructure:"SharedRootModule" yaml:"SharedRootModule"`
	ArchiveFirst     bool   `mapstructure:"ArchiveFirst" yaml:"ArchiveFirst"`
	ArchiveName      string `mapstructure:"ArchiveName" yaml:"ArchiveName"`
	ManifestName     string `mapstructure:"ManifestName" yaml:"ManifestName"`
	MarkLoaded       string `mapstructure:"MarkLoaded" yaml:"MarkLoaded"`
	GuardStyle       string `mapstructure:"GuardStyle" yaml:"GuardStyle"`

	MaxConcurrentFetches int      `mapstructure:"MaxConcurrentFetches" yaml:"MaxConcurrentFetches"`
	FetchTimeout         Duration `mapstructure:"FetchTimeout" yaml:"FetchTimeout"`

	Runtime     string `mapstructure:"Runtime" yaml:"Runtime"`
	Interpreter string `mapstructure:"Interpreter" yaml:"Interpreter"`
}

// S3Config 描述 s3:// 模块源所需的对象存储连接信息。
type S3Config struct {
	Endpoint  string `mapstructure:"Endpoint" yaml:"Endpoint"`
	Region    string `mapstructure:"Region" yaml:"Region"`
	AccessKey string `mapstructure:"AccessKey" yaml:"AccessKey"`
	SecretKey string `mapstructure:"SecretKey" yaml:"-"`
	UseSSL    bool   `mapstructure:"UseSSL" yaml:"UseSSL"`
}

// BootstrapConfig 描述运行时启动阶段的附加代码与依赖包。
type BootstrapConfig struct {
	// Prelude 已废弃，仅为兼容旧配置保留。
	Prelude  string   `mapstructure:"Prelude" yaml:"Prelude,omitempty"`
	Packages []string `mapstructure:"Packages" yaml:"Packages"`
	Kickoff  string   `mapstructure:"Kickoff" yaml:"Kickoff"`
}

// ModuleConfig 对应配置中的一个 [[Module]] 条目，列表顺序即导入顺序。
type ModuleConfig struct {
	Name     string `mapstructure:"Name" yaml:"Name"`
	Path     string `mapstructure:"Path" yaml:"Path"`
	Optional bool   `mapstructure:"Optional" yaml:"Optional"`
}

// Config 是配置文件映射的整体结构。
type Config struct {
	Global    GlobalConfig    `mapstructure:",squash" yaml:",inline"`
	S3        S3Config        `mapstructure:"S3" yaml:"S3"`
	Bootstrap BootstrapConfig `mapstructure:"Bootstrap" yaml:"Bootstrap"`
	Modules   []ModuleConfig  `mapstructure:"Module" yaml:"Module"`
}

// ModuleNames 按配置顺序返回模块名。
func (c *Config) ModuleNames() []string {
	if c == nil || len(c.Modules) == 0 {
		return nil
	}
	names := make([]string, len(c.Modules))
	for i, m := range c.Modules {
		names[i] = m.Name
	}
	return names
}

// ModuleModes 返回形如 core:required / extra:optional 的摘要，供日志字段使用。
func ModuleModes(modules []ModuleConfig) []string {
	if len(modules) == 0 {
		return nil
	}
	result := make([]string, len(modules))
	for i, m := range modules {
		mode := "required"
		if m.Optional {
			mode = "optional"
		}
		result[i] = fmt.Sprintf("%s:%s", m.Name, mode)
	}
	return result
}
