package main

import (
	"log"

	"github.com/0xjaqbek/freshFarm/internal/addr"
	"github.com/0xjaqbek/freshFarm/internal/chain"
	"github.com/0xjaqbek/freshFarm/internal/config"
	"github.com/0xjaqbek/freshFarm/internal/database"
	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/0xjaqbek/freshFarm/internal/ledger"
	"github.com/0xjaqbek/freshFarm/internal/logger"
	"github.com/0xjaqbek/freshFarm/internal/router"
	"github.com/0xjaqbek/freshFarm/internal/scheduler"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg.Log)
	defer logger.Sync()

	// 初始化存储
	store, err := initStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	// 初始化地址派生器
	deriver, err := addr.NewDeriver(cfg.Platform.ProgramID)
	if err != nil {
		log.Fatalf("Failed to initialize address deriver: %v", err)
	}

	// 初始化链上划转器
	transferer, err := initTransferer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize transferer: %v", err)
	}

	authority, err := solana.PublicKeyFromBase58(cfg.Platform.Authority)
	if err != nil {
		log.Fatalf("Invalid platform.authority: %v", err)
	}

	engine := escrow.NewEngine(store, deriver, transferer, authority, cfg.Platform.Treasury)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(engine)

	// 启动定时任务
	manager := scheduler.Start(engine, cfg)
	defer manager.Stop()

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initLogger 按配置初始化全局日志器
func initLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	var l *logger.Logger
	var err error
	if cfg.Output == "file" {
		l, err = logger.NewWithRotation(level, logger.RotationConfig{Filename: cfg.File})
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}

// initStore 按配置选择账本后端
func initStore(cfg *config.Config) (ledger.Store, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory store, data will not survive restarts")
		return ledger.NewMemStore(), nil
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, err
	}
	return ledger.NewGormStore(db), nil
}

// initTransferer 按配置选择划转实现
func initTransferer(cfg *config.Config) (escrow.Transferer, error) {
	if !cfg.Solana.Enabled {
		logger.Info("On-chain transfers disabled, running in ledger-only mode")
		return chain.NewNullTransferer(), nil
	}
	return chain.NewSolanaTransferer(cfg.Solana)
}
