package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/0xjaqbek/freshFarm/internal/config"
	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/0xjaqbek/freshFarm/internal/logger"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
)

// FinalizeJob 活动终结扫描任务。周期性找出已过截止时间且未终结的
// 活动，以平台管理身份逐个终结。
type FinalizeJob struct {
	engine *escrow.Engine
	config *config.Config
}

// NewFinalizeJob 创建活动终结任务
func NewFinalizeJob(engine *escrow.Engine, cfg *config.Config) *FinalizeJob {
	return &FinalizeJob{
		engine: engine,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *FinalizeJob) GetName() string {
	return "campaign_finalizer"
}

// GetSchedule 获取调度配置
func (j *FinalizeJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *FinalizeJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	campaigns, err := j.engine.ListEndedUnfinalized(ctx)
	if err != nil {
		logger.Error("Failed to list ended campaigns: %v", err)
		return
	}
	if len(campaigns) == 0 {
		logger.Debug("No campaigns to finalize")
		return
	}

	logger.Info("Finalizing %d ended campaigns", len(campaigns))

	workers := j.config.Scheduler.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(campaigns) {
		workers = len(campaigns)
	}

	// 创建临时协程池并发终结
	tempPool, err := ants.NewPool(workers)
	if err != nil {
		logger.Error("Failed to create temporary pool for %d workers: %v", workers, err)
		return
	}
	defer tempPool.Release()

	// 等全部终结完成再返回，ctx在此之前不能被取消
	var wg sync.WaitGroup
	for i := range campaigns {
		campaign := campaigns[i]
		wg.Add(1)
		err := tempPool.Submit(func() {
			defer wg.Done()
			j.finalizeOne(ctx, campaign.Address)
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit task to pool: %v", err)
		}
	}
	wg.Wait()
}

// finalizeOne 以平台管理身份终结单个活动
func (j *FinalizeJob) finalizeOne(ctx context.Context, address string) {
	verdict, err := j.engine.FinalizeCampaign(ctx, j.engine.Authority(), address)
	if err != nil {
		// 调用方手动终结和扫描撞在一起属正常情况
		if errors.Is(err, escrow.ErrCampaignAlreadyFinalized) {
			logger.Debug("Campaign %s already finalized", address)
			return
		}
		logger.Error("Failed to finalize campaign %s: %v", address, err)
		return
	}
	logger.Info("Campaign %s finalized with verdict=%s", address, verdict)
}
