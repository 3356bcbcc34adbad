package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// 默认值与浏览器端运行时的目录布局保持一致。
const (
	DefaultConfigPath       = "flare.toml"
	DefaultInstallRoot      = "/lib/python3.9/site-packages"
	DefaultArchiveRoot      = "/"
	DefaultArchiveName      = "files.zip"
	DefaultManifestName     = "files.json"
	DefaultSharedRootModule = "packages"
	DefaultRuntime          = "process"
	DefaultInterpreter      = "python3"
)

// Load 读取并解析配置文件（TOML/YAML/JSON 经 Viper，.hcl 经 HCL 解析器），
// 同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	loadDotEnv(path)

	var (
		cfg *Config
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		cfg, err = loadHCL(path)
	} else {
		cfg, err = loadViper(path)
	}
	if err != nil {
		return nil, err
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Modules {
		applyModuleDefaults(&cfg.Modules[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Global.StoragePath != "" {
		absStorage, err := filepath.Abs(cfg.Global.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("无法解析存储目录: %w", err)
		}
		cfg.Global.StoragePath = absStorage
	}

	return cfg, nil
}

// loadDotEnv 读取配置文件同目录下的 .env，已存在的环境变量不会被覆盖。
func loadDotEnv(configPath string) {
	_ = godotenv.Load(filepath.Join(filepath.Dir(configPath), ".env"))
}

func loadViper(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("FLARE")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("BaseURL", "")
	v.SetDefault("StoragePath", "")
	v.SetDefault("InstallRoot", DefaultInstallRoot)
	v.SetDefault("ArchiveRoot", DefaultArchiveRoot)
	v.SetDefault("SharedRootModule", DefaultSharedRootModule)
	v.SetDefault("ArchiveFirst", true)
	v.SetDefault("ArchiveName", DefaultArchiveName)
	v.SetDefault("ManifestName", DefaultManifestName)
	v.SetDefault("MarkLoaded", MarkLoadedAll)
	v.SetDefault("GuardStyle", GuardStyleTry)
	v.SetDefault("MaxConcurrentFetches", 0)
	v.SetDefault("FetchTimeout", 0)
	v.SetDefault("Runtime", DefaultRuntime)
	v.SetDefault("Interpreter", DefaultInterpreter)
}

// applyGlobalDefaults 补齐解码后仍为空的字段，HCL 配置同样依赖这里的兜底。
func applyGlobalDefaults(g *GlobalConfig) {
	if strings.TrimSpace(g.LogLevel) == "" {
		g.LogLevel = "info"
	}
	if g.LogMaxSize == 0 {
		g.LogMaxSize = 100
	}
	if g.LogMaxBackups == 0 {
		g.LogMaxBackups = 10
	}
	if g.InstallRoot == "" {
		g.InstallRoot = DefaultInstallRoot
	}
	if g.ArchiveRoot == "" {
		g.ArchiveRoot = DefaultArchiveRoot
	}
	if g.SharedRootModule == "" {
		g.SharedRootModule = DefaultSharedRootModule
	}
	if g.ArchiveName == "" {
		g.ArchiveName = DefaultArchiveName
	}
	if g.ManifestName == "" {
		g.ManifestName = DefaultManifestName
	}
	g.MarkLoaded = strings.ToLower(strings.TrimSpace(g.MarkLoaded))
	if g.MarkLoaded == "" {
		g.MarkLoaded = MarkLoadedAll
	}
	g.GuardStyle = strings.ToLower(strings.TrimSpace(g.GuardStyle))
	if g.GuardStyle == "" {
		g.GuardStyle = GuardStyleTry
	}
	g.Runtime = strings.ToLower(strings.TrimSpace(g.Runtime))
	if g.Runtime == "" {
		g.Runtime = DefaultRuntime
	}
	if g.Interpreter == "" {
		g.Interpreter = DefaultInterpreter
	}
	g.InstallRoot = cleanVirtualRoot(g.InstallRoot)
	g.ArchiveRoot = cleanVirtualRoot(g.ArchiveRoot)
	g.BaseURL = strings.TrimSpace(g.BaseURL)
}

func applyModuleDefaults(m *ModuleConfig) {
	m.Name = strings.TrimSpace(m.Name)
	m.Path = strings.TrimSpace(m.Path)
}

func cleanVirtualRoot(root string) string {
	root = strings.TrimSpace(root)
	if root == "" || !strings.HasPrefix(root, "/") {
		return root
	}
	if len(root) > 1 {
		root = strings.TrimRight(root, "/")
	}
	return root
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
