package model

import "time"

// TransferRecord 资金划转流水，每次托管账户变动一条
type TransferRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Campaign    string            `json:"campaign" gorm:"index;not null"`
	Direction   TransferDirection `json:"direction" gorm:"not null"`
	Source      string            `json:"source" gorm:"not null"`
	Destination string            `json:"destination" gorm:"not null"`
	Amount      uint64            `json:"amount" gorm:"not null"`
	Currency    string            `json:"currency" gorm:"not null"`
	TxSignature string            `json:"tx_signature"`
	Status      TransferStatus    `json:"status" gorm:"default:'pending'"`
}

// TransferDirection 划转方向
type TransferDirection string

const (
	TransferDeposit  TransferDirection = "deposit"  // 出资入托管
	TransferWithdraw TransferDirection = "withdraw" // 提现给创建者
	TransferFee      TransferDirection = "fee"      // 平台手续费
	TransferRefund   TransferDirection = "refund"   // 退款给出资人
)

// TransferStatus 划转状态
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"   // 待确认
	TransferStatusConfirmed TransferStatus = "confirmed" // 已确认
	TransferStatusFailed    TransferStatus = "failed"    // 失败
)
