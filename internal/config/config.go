package config

import (
	"github.com/0xjaqbek/freshFarm/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Platform  PlatformConfig  `mapstructure:"platform"`
	Solana    SolanaConfig    `mapstructure:"solana"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres 或 memory
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// PlatformConfig 平台侧配置
type PlatformConfig struct {
	ProgramID string `mapstructure:"program_id"` // 地址派生所用的程序ID
	Authority string `mapstructure:"authority"`  // 平台管理账户地址
	Treasury  string `mapstructure:"treasury"`   // 平台手续费收款地址
}

// SolanaConfig 链上转账配置
type SolanaConfig struct {
	Enabled       bool   `mapstructure:"enabled"`        // 关闭时使用空转账器（纯账本模式）
	RpcUrl        string `mapstructure:"rpc_url"`        // RPC节点URL
	CustodySecret string `mapstructure:"custody_secret"` // 托管账户私钥（base58）
	Confirmations int    `mapstructure:"confirmations"`  // 确认轮询次数
}

type SchedulerConfig struct {
	Interval int `mapstructure:"interval"` // 秒
	Workers  int `mapstructure:"workers"`  // 结算任务并发数
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/freshfarm")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "freshfarm")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("platform.program_id", "7ETsTKTvvjbE89kEQJARuJcUnN18n28Fy972zik2tAnN")
	viper.SetDefault("solana.enabled", false)
	viper.SetDefault("solana.rpc_url", "https://api.devnet.solana.com")
	viper.SetDefault("solana.confirmations", 30)
	viper.SetDefault("scheduler.interval", 60)
	viper.SetDefault("scheduler.workers", 8)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
