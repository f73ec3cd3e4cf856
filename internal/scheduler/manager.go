package scheduler

import (
	"log"

	"github.com/0xjaqbek/freshFarm/internal/config"
	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/go-co-op/gocron/v2"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	engine    *escrow.Engine
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(engine *escrow.Engine, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		engine:    engine,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(engine *escrow.Engine, cfg *config.Config) *Manager {
	manager := NewManager(engine, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	log.Println("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册活动终结扫描任务
	m.registerFinalizeJob(NewFinalizeJob(m.engine, m.config))
}

// registerFinalizeJob 注册活动终结任务
func (m *Manager) registerFinalizeJob(job *FinalizeJob) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		log.Printf("Failed to shutdown scheduler: %v", err)
	}
	log.Println("Task manager stopped")
}
