package model

import "time"

// 字段长度上限
const (
	MaxTitleLen         = 64
	MaxDescriptionLen   = 256
	MaxTierNameLen      = 32
	MaxBenefitsLen      = 256
	MaxDurationDays     = 365
	MaxTiersPerCampaign = 255
)

// Campaign 众筹活动记录
type Campaign struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 派生地址信息
	Address string `json:"address" gorm:"uniqueIndex;not null"`
	Bump    uint8  `json:"bump"`
	Version uint64 `json:"version" gorm:"not null;default:0"`

	// 身份：(farmer, campaign_id) 每个创建者内唯一
	Farmer     string `json:"farmer" gorm:"index;not null"`
	CampaignID uint64 `json:"campaign_id" gorm:"not null"`

	// 基本信息
	Title       string `json:"title" gorm:"size:64;not null"`
	Description string `json:"description" gorm:"size:256"`

	// 众筹信息
	GoalAmount   uint64 `json:"goal_amount" gorm:"not null"`
	RaisedAmount uint64 `json:"raised_amount" gorm:"default:0"` // 未退款出资之和
	Currency     string `json:"currency" gorm:"not null"`       // native 或代币mint地址

	// 时间信息（unix秒）
	StartTime int64 `json:"start_time" gorm:"not null"`
	EndTime   int64 `json:"end_time" gorm:"not null"`

	// 状态
	IsActive    bool `json:"is_active" gorm:"default:true"`
	IsFinalized bool `json:"is_finalized" gorm:"default:false"` // 终结为终态，重复终结必须失败

	// 计数器
	BackersCount uint64 `json:"backers_count" gorm:"default:0"` // 退款不回退
	TiersCount   uint8  `json:"tiers_count" gorm:"default:0"`
}

// Ended 活动是否已过截止时间。按调用时刻计算，不落库。
func (c *Campaign) Ended(now int64) bool {
	return now > c.EndTime
}

// GoalReached 是否达成筹款目标
func (c *Campaign) GoalReached() bool {
	return c.RaisedAmount >= c.GoalAmount
}
