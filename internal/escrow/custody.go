package escrow

import (
	"context"
	"fmt"

	"github.com/0xjaqbek/freshFarm/internal/ledger"
	"github.com/0xjaqbek/freshFarm/internal/model"
)

// Transferer 币种划转协作方。同步返回成功或失败，不存在部分成功；
// 无法确认的划转必须报告失败，调用方据此整体回滚。
// direction 区分入金与托管侧出金，实现按方向决定签名与广播方式。
type Transferer interface {
	Transfer(ctx context.Context, from, to string, amount uint64, currency CurrencyKind, direction model.TransferDirection) (string, error)
}

// Custody 托管资金操作。deposit/withdraw 是上层可用的仅有两个原语，
// 划转与对应的账本变更在同一个事务中一起生效或一起回滚。
type Custody struct {
	transfer Transferer
}

// NewCustody 创建托管资金操作
func NewCustody(transfer Transferer) *Custody {
	return &Custody{transfer: transfer}
}

// Deposit 将出资划入托管账户并登记余额
func (c *Custody) Deposit(ctx context.Context, tx ledger.Store, acct *model.CustodyAccount, from string, amount uint64) error {
	currency, err := ParseCurrency(acct.Currency)
	if err != nil {
		return err
	}

	balance, err := checkedAdd(acct.Balance, amount)
	if err != nil {
		return err
	}

	sig, err := c.transfer.Transfer(ctx, from, acct.Address, amount, currency, model.TransferDeposit)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	acct.Balance = balance
	if err := tx.SaveCustody(ctx, acct); err != nil {
		return err
	}

	return tx.CreateTransfer(ctx, &model.TransferRecord{
		Campaign:    acct.Campaign,
		Direction:   model.TransferDeposit,
		Source:      from,
		Destination: acct.Address,
		Amount:      amount,
		Currency:    acct.Currency,
		TxSignature: sig,
		Status:      model.TransferStatusConfirmed,
	})
}

// Withdraw 从托管账户划出资金并登记余额。余额不足时拒绝，绝不下溢。
func (c *Custody) Withdraw(ctx context.Context, tx ledger.Store, acct *model.CustodyAccount, destination string, amount uint64, direction model.TransferDirection) error {
	if amount > acct.Balance {
		return ErrInsufficientCustody
	}
	currency, err := ParseCurrency(acct.Currency)
	if err != nil {
		return err
	}

	balance, err := checkedSub(acct.Balance, amount)
	if err != nil {
		return err
	}

	sig, err := c.transfer.Transfer(ctx, acct.Address, destination, amount, currency, direction)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	acct.Balance = balance
	if err := tx.SaveCustody(ctx, acct); err != nil {
		return err
	}

	return tx.CreateTransfer(ctx, &model.TransferRecord{
		Campaign:    acct.Campaign,
		Direction:   direction,
		Source:      acct.Address,
		Destination: destination,
		Amount:      amount,
		Currency:    acct.Currency,
		TxSignature: sig,
		Status:      model.TransferStatusConfirmed,
	})
}
