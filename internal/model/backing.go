package model

import "time"

// Backing 出资记录。每个出资人在每个活动中至多一条，
// 仅 is_refunded 可被修改，且只翻转一次。
type Backing struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 派生地址信息
	Address string `json:"address" gorm:"uniqueIndex;not null"`
	Bump    uint8  `json:"bump"`
	Version uint64 `json:"version" gorm:"not null;default:0"`

	// 身份：(campaign, backer)
	Campaign string `json:"campaign" gorm:"index;not null"`
	Backer   string `json:"backer" gorm:"index;not null"`

	TierID     uint8  `json:"tier_id" gorm:"not null"`
	Amount     uint64 `json:"amount" gorm:"not null"`
	BackedAt   int64  `json:"backed_at" gorm:"not null"` // unix秒
	IsRefunded bool   `json:"is_refunded" gorm:"default:false"`
}
