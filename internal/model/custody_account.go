package model

import "time"

// CustodyAccount 活动托管账户。余额恒等于该活动未退款出资之和，
// 成功提现或逐笔退款之外不允许任何方式扣减。
type CustodyAccount struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 派生地址信息
	Address string `json:"address" gorm:"uniqueIndex;not null"`
	Bump    uint8  `json:"bump"`
	Version uint64 `json:"version" gorm:"not null;default:0"`

	Campaign string `json:"campaign" gorm:"uniqueIndex;not null"`
	Currency string `json:"currency" gorm:"not null"`
	Balance  uint64 `json:"balance" gorm:"default:0"`
}
