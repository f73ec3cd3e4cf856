package escrow

import (
	"context"

	"github.com/0xjaqbek/freshFarm/internal/ledger"
	"github.com/0xjaqbek/freshFarm/internal/model"
)

// 档位校验与名额占用。SOL与代币出资共用这一条校验路径。

// validateBackingAmount 校验出资金额落在档位区间内
func validateBackingAmount(t *model.CampaignTier, amount uint64) error {
	if amount < t.MinAmount {
		return ErrAmountBelowMinimum
	}
	if t.MaxAmount != 0 && amount > t.MaxAmount {
		return ErrAmountAboveMaximum
	}
	return nil
}

// reserveTierSlot 容量检查与名额递增在同一事务内一起执行，
// 两个并发出资人不可能都通过检查后才各自递增。
func reserveTierSlot(ctx context.Context, tx ledger.Store, t *model.CampaignTier) error {
	if !t.HasCapacity() {
		return ErrTierFull
	}
	n, err := checkedAdd32(t.CurrentBackers, 1)
	if err != nil {
		return err
	}
	t.CurrentBackers = n
	return tx.SaveTier(ctx, t)
}
