package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xjaqbek/freshFarm/internal/model"
	"gorm.io/gorm"
)

// GormStore 基于gorm的账本存储实现
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建gorm账本存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomic 在数据库事务中执行回调
func (s *GormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) create(ctx context.Context, rec interface{}) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// save 按 (address, version) 做比较交换更新
func (s *GormStore) save(ctx context.Context, m interface{}, address string, version uint64, updates map[string]interface{}) error {
	updates["version"] = version + 1
	res := s.db.WithContext(ctx).Model(m).
		Where("address = ? AND version = ?", address, version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("save record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) CreateConfig(ctx context.Context, cfg *model.PlatformConfig) error {
	return s.create(ctx, cfg)
}

func (s *GormStore) GetConfig(ctx context.Context, address string) (*model.PlatformConfig, error) {
	var cfg model.PlatformConfig
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get config: %w", err)
	}
	return &cfg, nil
}

func (s *GormStore) SaveConfig(ctx context.Context, cfg *model.PlatformConfig) error {
	err := s.save(ctx, &model.PlatformConfig{}, cfg.Address, cfg.Version, map[string]interface{}{
		"total_campaigns": cfg.TotalCampaigns,
		"total_raised":    cfg.TotalRaised,
		"is_active":       cfg.IsActive,
		"is_paused":       cfg.IsPaused,
	})
	if err != nil {
		return err
	}
	cfg.Version++
	return nil
}

func (s *GormStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	return s.create(ctx, c)
}

func (s *GormStore) GetCampaign(ctx context.Context, address string) (*model.Campaign, error) {
	var c model.Campaign
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

func (s *GormStore) SaveCampaign(ctx context.Context, c *model.Campaign) error {
	err := s.save(ctx, &model.Campaign{}, c.Address, c.Version, map[string]interface{}{
		"raised_amount": c.RaisedAmount,
		"is_active":     c.IsActive,
		"is_finalized":  c.IsFinalized,
		"backers_count": c.BackersCount,
		"tiers_count":   c.TiersCount,
	})
	if err != nil {
		return err
	}
	c.Version++
	return nil
}

func (s *GormStore) ListCampaigns(ctx context.Context, farmer string) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	q := s.db.WithContext(ctx)
	if farmer != "" {
		q = q.Where("farmer = ?", farmer)
	}
	if err := q.Order("id").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *GormStore) ListEndedUnfinalized(ctx context.Context, now int64) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := s.db.WithContext(ctx).
		Where("end_time < ? AND is_finalized = ?", now, false).
		Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("list ended campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *GormStore) CreateTier(ctx context.Context, t *model.CampaignTier) error {
	return s.create(ctx, t)
}

func (s *GormStore) GetTier(ctx context.Context, address string) (*model.CampaignTier, error) {
	var t model.CampaignTier
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tier: %w", err)
	}
	return &t, nil
}

func (s *GormStore) SaveTier(ctx context.Context, t *model.CampaignTier) error {
	err := s.save(ctx, &model.CampaignTier{}, t.Address, t.Version, map[string]interface{}{
		"current_backers": t.CurrentBackers,
	})
	if err != nil {
		return err
	}
	t.Version++
	return nil
}

func (s *GormStore) ListTiers(ctx context.Context, campaign string) ([]model.CampaignTier, error) {
	var tiers []model.CampaignTier
	if err := s.db.WithContext(ctx).Where("campaign = ?", campaign).Order("tier_id").Find(&tiers).Error; err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tiers, nil
}

func (s *GormStore) CreateBacking(ctx context.Context, b *model.Backing) error {
	return s.create(ctx, b)
}

func (s *GormStore) GetBacking(ctx context.Context, address string) (*model.Backing, error) {
	var b model.Backing
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get backing: %w", err)
	}
	return &b, nil
}

func (s *GormStore) SaveBacking(ctx context.Context, b *model.Backing) error {
	err := s.save(ctx, &model.Backing{}, b.Address, b.Version, map[string]interface{}{
		"is_refunded": b.IsRefunded,
	})
	if err != nil {
		return err
	}
	b.Version++
	return nil
}

func (s *GormStore) ListBackings(ctx context.Context, campaign string) ([]model.Backing, error) {
	var backings []model.Backing
	if err := s.db.WithContext(ctx).Where("campaign = ?", campaign).Order("id").Find(&backings).Error; err != nil {
		return nil, fmt.Errorf("list backings: %w", err)
	}
	return backings, nil
}

func (s *GormStore) CreateCustody(ctx context.Context, a *model.CustodyAccount) error {
	return s.create(ctx, a)
}

func (s *GormStore) GetCustody(ctx context.Context, address string) (*model.CustodyAccount, error) {
	var a model.CustodyAccount
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get custody account: %w", err)
	}
	return &a, nil
}

func (s *GormStore) SaveCustody(ctx context.Context, a *model.CustodyAccount) error {
	err := s.save(ctx, &model.CustodyAccount{}, a.Address, a.Version, map[string]interface{}{
		"balance": a.Balance,
	})
	if err != nil {
		return err
	}
	a.Version++
	return nil
}

func (s *GormStore) CreateTransfer(ctx context.Context, r *model.TransferRecord) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create transfer record: %w", err)
	}
	return nil
}

func (s *GormStore) ListTransfers(ctx context.Context, campaign string) ([]model.TransferRecord, error) {
	var records []model.TransferRecord
	if err := s.db.WithContext(ctx).Where("campaign = ?", campaign).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list transfer records: %w", err)
	}
	return records, nil
}
