package escrow

import (
	"context"
	"errors"

	"github.com/0xjaqbek/freshFarm/internal/ledger"
	"github.com/0xjaqbek/freshFarm/internal/model"
)

// 只读查询。读取不加锁，返回提交后的账本状态。

// GetConfig 获取平台配置
func (e *Engine) GetConfig(ctx context.Context) (*model.PlatformConfig, error) {
	derived, err := e.deriver.Config(e.authority)
	if err != nil {
		return nil, err
	}
	cfg, err := e.store.GetConfig(ctx, derived.Address)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// GetCampaign 获取活动详情
func (e *Engine) GetCampaign(ctx context.Context, address string) (*model.Campaign, error) {
	campaign, err := e.store.GetCampaign(ctx, address)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return campaign, nil
}

// ListCampaigns 获取活动列表，farmer为空时返回全部
func (e *Engine) ListCampaigns(ctx context.Context, farmer string) ([]model.Campaign, error) {
	return e.store.ListCampaigns(ctx, farmer)
}

// ListTiers 获取活动档位列表
func (e *Engine) ListTiers(ctx context.Context, campaign string) ([]model.CampaignTier, error) {
	return e.store.ListTiers(ctx, campaign)
}

// ListBackings 获取活动出资列表
func (e *Engine) ListBackings(ctx context.Context, campaign string) ([]model.Backing, error) {
	return e.store.ListBackings(ctx, campaign)
}

// ListTransfers 获取活动资金流水
func (e *Engine) ListTransfers(ctx context.Context, campaign string) ([]model.TransferRecord, error) {
	return e.store.ListTransfers(ctx, campaign)
}

// CampaignStats 活动统计信息
type CampaignStats struct {
	Address          string  `json:"address"`
	GoalAmount       uint64  `json:"goal_amount"`
	RaisedAmount     uint64  `json:"raised_amount"`
	Progress         float64 `json:"progress"` // 百分比
	BackersCount     uint64  `json:"backers_count"`
	TiersCount       uint8   `json:"tiers_count"`
	RemainingSeconds int64   `json:"remaining_seconds"`
	IsFinalized      bool    `json:"is_finalized"`
	GoalReached      bool    `json:"goal_reached"`
}

// GetCampaignStats 计算活动统计信息
func (e *Engine) GetCampaignStats(ctx context.Context, address string) (*CampaignStats, error) {
	campaign, err := e.GetCampaign(ctx, address)
	if err != nil {
		return nil, err
	}

	progress := float64(0)
	if campaign.GoalAmount > 0 {
		progress = float64(campaign.RaisedAmount) / float64(campaign.GoalAmount) * 100
	}

	remaining := int64(0)
	if now := e.now(); !campaign.IsFinalized && now < campaign.EndTime {
		remaining = campaign.EndTime - now
	}

	return &CampaignStats{
		Address:          campaign.Address,
		GoalAmount:       campaign.GoalAmount,
		RaisedAmount:     campaign.RaisedAmount,
		Progress:         progress,
		BackersCount:     campaign.BackersCount,
		TiersCount:       campaign.TiersCount,
		RemainingSeconds: remaining,
		IsFinalized:      campaign.IsFinalized,
		GoalReached:      campaign.GoalReached(),
	}, nil
}

// ListEndedUnfinalized 获取已到期但尚未终结的活动，结算任务用
func (e *Engine) ListEndedUnfinalized(ctx context.Context) ([]model.Campaign, error) {
	return e.store.ListEndedUnfinalized(ctx, e.now())
}
