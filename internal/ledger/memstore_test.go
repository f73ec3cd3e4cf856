package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/0xjaqbek/freshFarm/internal/model"
)

func TestMemStoreCreateAndGet(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	c := &model.Campaign{Address: "addr1", Farmer: "farmer1", Title: "tomatoes"}
	if err := s.CreateCampaign(ctx, c); err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if err := s.CreateCampaign(ctx, &model.Campaign{Address: "addr1"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetCampaign(ctx, "addr1")
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if got.Title != "tomatoes" {
		t.Errorf("Title = %q", got.Title)
	}

	if _, err := s.GetCampaign(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreSaveCompareAndSwap(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if err := s.CreateCampaign(ctx, &model.Campaign{Address: "addr1"}); err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	fresh, _ := s.GetCampaign(ctx, "addr1")
	stale, _ := s.GetCampaign(ctx, "addr1")

	fresh.RaisedAmount = 100
	if err := s.SaveCampaign(ctx, fresh); err != nil {
		t.Fatalf("SaveCampaign: %v", err)
	}
	if fresh.Version != 1 {
		t.Errorf("Version = %d after save, want 1", fresh.Version)
	}

	// 基于过期版本的写入必须被拒绝
	stale.RaisedAmount = 50
	if err := s.SaveCampaign(ctx, stale); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, _ := s.GetCampaign(ctx, "addr1")
	if got.RaisedAmount != 100 {
		t.Errorf("RaisedAmount = %d, lost the first write", got.RaisedAmount)
	}
}

func TestMemStoreSaveMissing(t *testing.T) {
	s := NewMemStore()
	err := s.SaveCampaign(context.Background(), &model.Campaign{Address: "missing"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMemStoreAtomicRollback(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx Store) error {
		if err := tx.CreateCampaign(ctx, &model.Campaign{Address: "addr1"}); err != nil {
			return err
		}
		if err := tx.CreateCustody(ctx, &model.CustodyAccount{Address: "vault1", Campaign: "addr1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Atomic err = %v", err)
	}

	if _, err := s.GetCampaign(ctx, "addr1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("campaign visible after rollback: %v", err)
	}
	if _, err := s.GetCustody(ctx, "vault1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("custody account visible after rollback: %v", err)
	}
}

func TestMemStoreAtomicCommit(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	err := s.Atomic(ctx, func(tx Store) error {
		return tx.CreateCampaign(ctx, &model.Campaign{Address: "addr1"})
	})
	if err != nil {
		t.Fatalf("Atomic: %v", err)
	}
	if _, err := s.GetCampaign(ctx, "addr1"); err != nil {
		t.Errorf("campaign missing after commit: %v", err)
	}
}

func TestMemStoreNestedAtomic(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	err := s.Atomic(ctx, func(tx Store) error {
		return tx.Atomic(ctx, func(inner Store) error {
			return inner.CreateCampaign(ctx, &model.Campaign{Address: "addr1"})
		})
	})
	if err != nil {
		t.Fatalf("nested Atomic: %v", err)
	}
	if _, err := s.GetCampaign(ctx, "addr1"); err != nil {
		t.Errorf("campaign missing after nested commit: %v", err)
	}
}

func TestMemStoreListFilters(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	for _, c := range []model.Campaign{
		{Address: "a1", Farmer: "f1", EndTime: 100},
		{Address: "a2", Farmer: "f1", EndTime: 300},
		{Address: "a3", Farmer: "f2", EndTime: 100, IsFinalized: true},
	} {
		campaign := c
		if err := s.CreateCampaign(ctx, &campaign); err != nil {
			t.Fatalf("CreateCampaign: %v", err)
		}
	}

	byFarmer, err := s.ListCampaigns(ctx, "f1")
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(byFarmer) != 2 {
		t.Errorf("ListCampaigns(f1) = %d campaigns, want 2", len(byFarmer))
	}

	all, _ := s.ListCampaigns(ctx, "")
	if len(all) != 3 {
		t.Errorf("ListCampaigns(all) = %d campaigns, want 3", len(all))
	}

	// 已过期未终结：a1 符合，a2 未过期，a3 已终结
	ended, err := s.ListEndedUnfinalized(ctx, 200)
	if err != nil {
		t.Fatalf("ListEndedUnfinalized: %v", err)
	}
	if len(ended) != 1 || ended[0].Address != "a1" {
		t.Errorf("ListEndedUnfinalized = %+v, want only a1", ended)
	}
}

func TestMemStoreBackingLifecycle(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	b := &model.Backing{Address: "b1", Campaign: "a1", Backer: "backer1", Amount: 500}
	if err := s.CreateBacking(ctx, b); err != nil {
		t.Fatalf("CreateBacking: %v", err)
	}
	if err := s.CreateBacking(ctx, &model.Backing{Address: "b1"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, _ := s.GetBacking(ctx, "b1")
	got.IsRefunded = true
	if err := s.SaveBacking(ctx, got); err != nil {
		t.Fatalf("SaveBacking: %v", err)
	}

	again, _ := s.GetBacking(ctx, "b1")
	if !again.IsRefunded {
		t.Error("refund flag not persisted")
	}
}

func TestMemStoreTransfers(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r := &model.TransferRecord{Campaign: "a1", Direction: model.TransferDeposit, Amount: uint64(i + 1)}
		if err := s.CreateTransfer(ctx, r); err != nil {
			t.Fatalf("CreateTransfer: %v", err)
		}
	}
	if err := s.CreateTransfer(ctx, &model.TransferRecord{Campaign: "other"}); err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	rs, err := s.ListTransfers(ctx, "a1")
	if err != nil {
		t.Fatalf("ListTransfers: %v", err)
	}
	if len(rs) != 3 {
		t.Errorf("ListTransfers = %d records, want 3", len(rs))
	}
}
