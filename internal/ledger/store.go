package ledger

import (
	"context"
	"errors"

	"github.com/0xjaqbek/freshFarm/internal/model"
)

var (
	// ErrAlreadyExists 记录已存在
	ErrAlreadyExists = errors.New("record already exists")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrConflict 并发更新冲突，可在有限次数内重试
	ErrConflict = errors.New("concurrent update conflict")
)

// Store 账本存储抽象。四类记录均以派生地址为键。
//
// Create* 在地址已被占用时返回 ErrAlreadyExists；Get* 在记录不存在时
// 返回 ErrNotFound；Save* 以读取时的 Version 做比较交换，被并发写抢先
// 时返回 ErrConflict，成功后就地递增 Version。
//
// Atomic 将回调中的全部写入作为一个事务提交：要么全部生效，要么全部
// 回滚。一次操作涉及多条记录的更新必须经由 Atomic。
type Store interface {
	Atomic(ctx context.Context, fn func(tx Store) error) error

	CreateConfig(ctx context.Context, cfg *model.PlatformConfig) error
	GetConfig(ctx context.Context, address string) (*model.PlatformConfig, error)
	SaveConfig(ctx context.Context, cfg *model.PlatformConfig) error

	CreateCampaign(ctx context.Context, c *model.Campaign) error
	GetCampaign(ctx context.Context, address string) (*model.Campaign, error)
	SaveCampaign(ctx context.Context, c *model.Campaign) error
	ListCampaigns(ctx context.Context, farmer string) ([]model.Campaign, error)
	ListEndedUnfinalized(ctx context.Context, now int64) ([]model.Campaign, error)

	CreateTier(ctx context.Context, t *model.CampaignTier) error
	GetTier(ctx context.Context, address string) (*model.CampaignTier, error)
	SaveTier(ctx context.Context, t *model.CampaignTier) error
	ListTiers(ctx context.Context, campaign string) ([]model.CampaignTier, error)

	CreateBacking(ctx context.Context, b *model.Backing) error
	GetBacking(ctx context.Context, address string) (*model.Backing, error)
	SaveBacking(ctx context.Context, b *model.Backing) error
	ListBackings(ctx context.Context, campaign string) ([]model.Backing, error)

	CreateCustody(ctx context.Context, a *model.CustodyAccount) error
	GetCustody(ctx context.Context, address string) (*model.CustodyAccount, error)
	SaveCustody(ctx context.Context, a *model.CustodyAccount) error

	CreateTransfer(ctx context.Context, r *model.TransferRecord) error
	ListTransfers(ctx context.Context, campaign string) ([]model.TransferRecord, error)
}
