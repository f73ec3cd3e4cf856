package handler

import (
	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/0xjaqbek/freshFarm/internal/model"
)

// 通用响应结构
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	ErrorKind string      `json:"errorKind,omitempty"`
	Data      interface{} `json:"data"`
}

// 请求模型

// InitConfigRequest 平台配置初始化请求
type InitConfigRequest struct {
	FeeBps uint16 `json:"feeBps"`
}

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	CampaignID   uint64 `json:"campaignId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	GoalAmount   uint64 `json:"goalAmount"`
	DurationDays uint64 `json:"durationDays"`
	Currency     string `json:"currency"` // "native" 或代币mint地址
}

// CreateTierRequest 创建档位请求
type CreateTierRequest struct {
	TierID     uint8  `json:"tierId"`
	Name       string `json:"name"`
	MinAmount  uint64 `json:"minAmount"`
	MaxAmount  uint64 `json:"maxAmount"`
	Benefits   string `json:"benefits"`
	MaxBackers uint32 `json:"maxBackers"`
}

// BackCampaignRequest 出资请求
type BackCampaignRequest struct {
	TierAddress string `json:"tierAddress"`
	TierID      uint8  `json:"tierId"`
	Amount      uint64 `json:"amount"`
	Currency    string `json:"currency"`
}

// 响应模型

// ConfigResponse 平台配置响应
type ConfigResponse struct {
	Address        string `json:"address"`
	Authority      string `json:"authority"`
	FeeBps         uint16 `json:"feeBps"`
	TotalCampaigns uint64 `json:"totalCampaigns"`
	TotalRaised    uint64 `json:"totalRaised"`
	IsActive       bool   `json:"isActive"`
	IsPaused       bool   `json:"isPaused"`
}

// CampaignResponse 活动响应
type CampaignResponse struct {
	Address      string `json:"address"`
	Farmer       string `json:"farmer"`
	CampaignID   uint64 `json:"campaignId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	GoalAmount   uint64 `json:"goalAmount"`
	RaisedAmount uint64 `json:"raisedAmount"`
	Currency     string `json:"currency"`
	StartTime    int64  `json:"startTime"`
	EndTime      int64  `json:"endTime"`
	IsActive     bool   `json:"isActive"`
	IsFinalized  bool   `json:"isFinalized"`
	BackersCount uint64 `json:"backersCount"`
	TiersCount   uint8  `json:"tiersCount"`
}

// TierResponse 档位响应
type TierResponse struct {
	Address        string `json:"address"`
	Campaign       string `json:"campaign"`
	TierID         uint8  `json:"tierId"`
	Name           string `json:"name"`
	MinAmount      uint64 `json:"minAmount"`
	MaxAmount      uint64 `json:"maxAmount"`
	Benefits       string `json:"benefits"`
	MaxBackers     uint32 `json:"maxBackers"`
	CurrentBackers uint32 `json:"currentBackers"`
}

// BackingResponse 出资响应
type BackingResponse struct {
	Address    string `json:"address"`
	Campaign   string `json:"campaign"`
	Backer     string `json:"backer"`
	TierID     uint8  `json:"tierId"`
	Amount     uint64 `json:"amount"`
	BackedAt   int64  `json:"backedAt"`
	IsRefunded bool   `json:"isRefunded"`
}

// TransferResponse 托管流水响应
type TransferResponse struct {
	Campaign  string `json:"campaign"`
	Direction string `json:"direction"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
	Currency  string `json:"currency"`
	Signature string `json:"signature"`
	Status    string `json:"status"`
}

// FinalizeResponse 终结响应
type FinalizeResponse struct {
	Verdict string `json:"verdict"`
}

// RefundResponse 退款响应
type RefundResponse struct {
	Amount uint64 `json:"amount"`
}

func ToConfigResponse(cfg *model.PlatformConfig) ConfigResponse {
	return ConfigResponse{
		Address:        cfg.Address,
		Authority:      cfg.Authority,
		FeeBps:         cfg.FeeBps,
		TotalCampaigns: cfg.TotalCampaigns,
		TotalRaised:    cfg.TotalRaised,
		IsActive:       cfg.IsActive,
		IsPaused:       cfg.IsPaused,
	}
}

func ToCampaignResponse(c *model.Campaign) CampaignResponse {
	return CampaignResponse{
		Address:      c.Address,
		Farmer:       c.Farmer,
		CampaignID:   c.CampaignID,
		Title:        c.Title,
		Description:  c.Description,
		GoalAmount:   c.GoalAmount,
		RaisedAmount: c.RaisedAmount,
		Currency:     c.Currency,
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		IsActive:     c.IsActive,
		IsFinalized:  c.IsFinalized,
		BackersCount: c.BackersCount,
		TiersCount:   c.TiersCount,
	}
}

func ToTierResponse(t *model.CampaignTier) TierResponse {
	return TierResponse{
		Address:        t.Address,
		Campaign:       t.Campaign,
		TierID:         t.TierID,
		Name:           t.Name,
		MinAmount:      t.MinAmount,
		MaxAmount:      t.MaxAmount,
		Benefits:       t.Benefits,
		MaxBackers:     t.MaxBackers,
		CurrentBackers: t.CurrentBackers,
	}
}

func ToBackingResponse(b *model.Backing) BackingResponse {
	return BackingResponse{
		Address:    b.Address,
		Campaign:   b.Campaign,
		Backer:     b.Backer,
		TierID:     b.TierID,
		Amount:     b.Amount,
		BackedAt:   b.BackedAt,
		IsRefunded: b.IsRefunded,
	}
}

func ToTransferResponse(t *model.TransferRecord) TransferResponse {
	return TransferResponse{
		Campaign:  t.Campaign,
		Direction: string(t.Direction),
		From:      t.Source,
		To:        t.Destination,
		Amount:    t.Amount,
		Currency:  t.Currency,
		Signature: t.TxSignature,
		Status:    string(t.Status),
	}
}

func ToWithdrawResponse(r *escrow.WithdrawResult) map[string]interface{} {
	return map[string]interface{}{
		"net": r.Net,
		"fee": r.Fee,
	}
}
