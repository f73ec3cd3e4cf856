package model

import "time"

// PlatformConfig 平台配置记录，每个平台管理账户一条
type PlatformConfig struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 派生地址信息
	Address string `json:"address" gorm:"uniqueIndex;not null"`
	Bump    uint8  `json:"bump"`
	Version uint64 `json:"version" gorm:"not null;default:0"` // 乐观锁版本号

	// 平台信息
	Authority      string `json:"authority" gorm:"uniqueIndex;not null"` // 创建后不可变
	FeeBps         uint16 `json:"fee_bps" gorm:"not null"`               // 基点手续费，250 = 2.5%
	TotalCampaigns uint64 `json:"total_campaigns" gorm:"default:0"`
	TotalRaised    uint64 `json:"total_raised" gorm:"default:0"`
	IsActive       bool   `json:"is_active" gorm:"default:true"`
	IsPaused       bool   `json:"is_paused" gorm:"default:false"`
	SchemaVersion  uint8  `json:"schema_version" gorm:"default:1"`
}
