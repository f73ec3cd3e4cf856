package model

import "time"

// CampaignTier 活动奖励档位记录
type CampaignTier struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 派生地址信息
	Address string `json:"address" gorm:"uniqueIndex;not null"`
	Bump    uint8  `json:"bump"`
	Version uint64 `json:"version" gorm:"not null;default:0"`

	// 身份：(campaign, tier_id) 每个活动内唯一
	Campaign string `json:"campaign" gorm:"index;not null"`
	TierID   uint8  `json:"tier_id" gorm:"not null"`

	// 档位信息。创建后除 current_backers 外均不可变。
	Name     string `json:"name" gorm:"size:32;not null"`
	Benefits string `json:"benefits" gorm:"size:256"`

	// 金额区间，max_amount 为0表示无上限
	MinAmount uint64 `json:"min_amount" gorm:"not null"`
	MaxAmount uint64 `json:"max_amount" gorm:"default:0"`

	// 容量，max_backers 为0表示不限。current_backers 只增不减，
	// 退款不释放档位名额。
	MaxBackers     uint32 `json:"max_backers" gorm:"default:0"`
	CurrentBackers uint32 `json:"current_backers" gorm:"default:0"`
}

// HasCapacity 档位是否仍有名额
func (t *CampaignTier) HasCapacity() bool {
	return t.MaxBackers == 0 || t.CurrentBackers < t.MaxBackers
}
