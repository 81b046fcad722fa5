// Package config 提供应用程序的配置管理
// 基于viper实现，支持配置文件、环境变量和默认值三级覆盖
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序总配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Logger   LoggerConfig   `mapstructure:"logger"`   // 日志配置
	Client   ClientConfig   `mapstructure:"client"`   // 客户端配置
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Port         int `mapstructure:"port"`          // 监听端口
	ReadTimeout  int `mapstructure:"read_timeout"`  // 读超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"` // 写超时（秒）
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // 数据库驱动，目前仅支持sqlite
	DSN             string `mapstructure:"dsn"`               // 数据源名称
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // 最大打开连接数
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大生命周期（秒）
	Seed            bool   `mapstructure:"seed"`              // 启动时写入示例数据
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level    string `mapstructure:"level"`     // 日志级别 (debug, info, warn, error)
	Format   string `mapstructure:"format"`    // 日志格式 (json, text)
	Output   string `mapstructure:"output"`    // 输出方式 (console, file, both)
	FilePath string `mapstructure:"file_path"` // 日志文件路径
}

// ClientConfig 客户端（编辑器/缓存/同步）配置
type ClientConfig struct {
	ServerURL          string `mapstructure:"server_url"`           // 服务端地址
	CachePath          string `mapstructure:"cache_path"`           // 笔记缓存文件路径
	TagCachePath       string `mapstructure:"tag_cache_path"`       // 标签缓存文件路径
	AutoSaveDelayMs    int    `mapstructure:"auto_save_delay_ms"`   // 输入后自动保存延迟（毫秒）
	BlurSaveDelayMs    int    `mapstructure:"blur_save_delay_ms"`   // 失焦后自动保存延迟（毫秒）
	PendingMaxAgeHours int    `mapstructure:"pending_max_age_hrs"`  // 临时ID视为"未创建"的时间窗口（小时）
	HealthPollSeconds  int    `mapstructure:"health_poll_seconds"`  // 连通性探测间隔（秒）
}

// Load 加载配置
// 查找顺序: ./config.yaml -> ./config/config.yaml，环境变量以NOTEMASTER_为前缀覆盖
// 返回:
//   *Config - 配置对象
//   error - 错误信息
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("NOTEMASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时使用默认值，其他错误直接返回
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置默认配置
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".database/datasource.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.seed", false)

	// 日志默认配置
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "console")
	v.SetDefault("logger.file_path", "logs/notemaster.log")

	// 客户端默认配置
	v.SetDefault("client.server_url", "http://localhost:3000")
	v.SetDefault("client.cache_path", ".cache/notes.json")
	v.SetDefault("client.tag_cache_path", ".cache/tags.json")
	v.SetDefault("client.auto_save_delay_ms", 3000)
	v.SetDefault("client.blur_save_delay_ms", 500)
	v.SetDefault("client.pending_max_age_hrs", 24)
	v.SetDefault("client.health_poll_seconds", 5)
}
