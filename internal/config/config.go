package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"economat/internal/parser"
)

// 环境变量
const (
	EnvWorkbook = "ECONOMAT_WORKBOOK"
	EnvPort     = "ECONOMAT_PORT"
	EnvLogLevel = "ECONOMAT_LOG_LEVEL"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig        `toml:"server"`
	Data    DataConfig          `toml:"data"`
	Log     LogConfig           `toml:"log"`
	Columns map[string][]string `toml:"columns"` // 语义列别名，追加在默认别名之前
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir         string `toml:"data_dir"`
	WorkbookPath    string `toml:"workbook_path"`
	AutoSaveSeconds int    `toml:"auto_save_seconds"` // 0 表示每次录入立即保存
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:         "data",
			WorkbookPath:    "",
			AutoSaveSeconds: 0,
		},
		Log: LogConfig{
			Level: "info",
		},
		Columns: map[string][]string{},
	}
}

// ColumnConfig 默认列名别名叠加 [columns] 中的自定义别名
func (c *AppConfig) ColumnConfig() parser.ColumnConfig {
	return parser.DefaultColumnConfig().WithOverrides(c.Columns)
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return LoadConfigFrom(exeDir)
}

// LoadConfigFrom 从指定目录加载 config.toml，再应用 .env 与环境变量覆盖
func LoadConfigFrom(dir string) (*AppConfig, LoadConfigInfo, error) {
	configPath := filepath.Join(dir, "config.toml")
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	// 工作目录下的 .env（不存在时忽略；已设置的环境变量优先）
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	if config.Columns == nil {
		config.Columns = map[string][]string{}
	}
	return config, info, nil
}

func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := strings.TrimSpace(os.Getenv(EnvWorkbook)); v != "" {
		config.Data.WorkbookPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s: %q", EnvPort, v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.Log.Level = v
	}
	return nil
}

// SaveConfig 保存配置到可执行文件同目录的 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return SaveConfigTo(exeDir, config)
}

// SaveConfigTo 保存配置到指定目录
func SaveConfigTo(dir string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.toml"), data, 0644)
}

// ResolveDataDir 相对路径的数据目录以 baseDir 为根
func ResolveDataDir(config *AppConfig, baseDir string) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
// 数据目录位于可执行文件同目录下
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return EnsureDataDirAt(ResolveDataDir(config, exeDir))
}

// EnsureDataDirAt 创建数据目录与 workbooks / exports 子目录
func EnsureDataDirAt(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	for _, subdir := range []string{"workbooks", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}
