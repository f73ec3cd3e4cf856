package escrow

import (
	"context"
	"errors"
	"time"

	"github.com/0xjaqbek/freshFarm/internal/addr"
	"github.com/0xjaqbek/freshFarm/internal/ledger"
	"github.com/0xjaqbek/freshFarm/internal/model"
	"github.com/gagliardetto/solana-go"
)

// conflictRetries 并发冲突的有限重试次数
const conflictRetries = 3

const secondsPerDay = 86400

// Engine 活动生命周期状态机。每个操作在一个账本事务中完成全部
// 读取、校验与变更，失败时不留下任何可见的部分变更。
//
// 终结授权策略：活动创建者和平台管理账户都可以调用终结
// （owner-or-platform-authority），定时结算任务以平台管理账户身份运行。
type Engine struct {
	store     ledger.Store
	deriver   *addr.Deriver
	custody   *Custody
	authority solana.PublicKey // 平台管理账户
	treasury  string           // 平台手续费收款地址
	clock     func() time.Time
}

// NewEngine 创建活动生命周期引擎
func NewEngine(store ledger.Store, deriver *addr.Deriver, transfer Transferer, authority solana.PublicKey, treasury string) *Engine {
	return &Engine{
		store:     store,
		deriver:   deriver,
		custody:   NewCustody(transfer),
		authority: authority,
		treasury:  treasury,
		clock:     time.Now,
	}
}

// SetClock 注入时钟，测试用
func (e *Engine) SetClock(fn func() time.Time) {
	e.clock = fn
}

// Authority 平台管理账户
func (e *Engine) Authority() solana.PublicKey {
	return e.authority
}

// now 当前unix秒。时间谓词一律按调用时刻重新计算，不缓存。
func (e *Engine) now() int64 {
	return e.clock().Unix()
}

// atomicRetry 在有限次数内重试并发冲突，超过次数后把冲突报告给调用方
func (e *Engine) atomicRetry(ctx context.Context, fn func(tx ledger.Store) error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		err = e.store.Atomic(ctx, fn)
		if !errors.Is(err, ledger.ErrConflict) {
			return err
		}
	}
	return ErrConflict
}

// InitializeConfig 初始化平台配置，每个管理账户一次
func (e *Engine) InitializeConfig(ctx context.Context, authority solana.PublicKey, feeBps uint16) (*model.PlatformConfig, error) {
	if feeBps > 10000 {
		return nil, ErrInvalidFee
	}

	derived, err := e.deriver.Config(authority)
	if err != nil {
		return nil, err
	}

	cfg := &model.PlatformConfig{
		Address:       derived.Address,
		Bump:          derived.Bump,
		Authority:     authority.String(),
		FeeBps:        feeBps,
		IsActive:      true,
		IsPaused:      false,
		SchemaVersion: 1,
	}

	err = e.store.Atomic(ctx, func(tx ledger.Store) error {
		if err := tx.CreateConfig(ctx, cfg); err != nil {
			if errors.Is(err, ledger.ErrAlreadyExists) {
				return ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateCampaignParams 创建活动参数
type CreateCampaignParams struct {
	Farmer       solana.PublicKey
	CampaignID   uint64
	Title        string
	Description  string
	GoalAmount   uint64
	DurationDays uint64
	Currency     CurrencyKind
}

// CreateCampaign 创建众筹活动。活动即建即生效。
func (e *Engine) CreateCampaign(ctx context.Context, p CreateCampaignParams) (*model.Campaign, error) {
	if len(p.Title) == 0 || len(p.Title) > model.MaxTitleLen {
		return nil, ErrTitleTooLong
	}
	if len(p.Description) > model.MaxDescriptionLen {
		return nil, ErrDescriptionTooLong
	}
	if p.GoalAmount == 0 {
		return nil, ErrInvalidAmount
	}
	if p.DurationDays == 0 || p.DurationDays > model.MaxDurationDays {
		return nil, ErrInvalidDuration
	}

	configAddr, err := e.deriver.Config(e.authority)
	if err != nil {
		return nil, err
	}
	campaignAddr, err := e.deriver.Campaign(p.Farmer, p.CampaignID)
	if err != nil {
		return nil, err
	}
	vaultAddr, err := e.deriver.Vault(p.Farmer, p.CampaignID, p.Currency.IsNative())
	if err != nil {
		return nil, err
	}

	startTime := e.now()
	durationSecs, err := checkedMul(p.DurationDays, secondsPerDay)
	if err != nil {
		return nil, err
	}
	endTime, err := checkedAdd(uint64(startTime), durationSecs)
	if err != nil {
		return nil, err
	}

	campaign := &model.Campaign{
		Address:     campaignAddr.Address,
		Bump:        campaignAddr.Bump,
		Farmer:      p.Farmer.String(),
		CampaignID:  p.CampaignID,
		Title:       p.Title,
		Description: p.Description,
		GoalAmount:  p.GoalAmount,
		Currency:    p.Currency.String(),
		StartTime:   startTime,
		EndTime:     int64(endTime),
		IsActive:    true,
		IsFinalized: false,
	}

	err = e.atomicRetry(ctx, func(tx ledger.Store) error {
		cfg, err := tx.GetConfig(ctx, configAddr.Address)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ErrPlatformInactive
			}
			return err
		}
		if !cfg.IsActive || cfg.IsPaused {
			return ErrPlatformInactive
		}

		if err := tx.CreateCampaign(ctx, campaign); err != nil {
			if errors.Is(err, ledger.ErrAlreadyExists) {
				return ErrAlreadyExists
			}
			return err
		}
		if err := tx.CreateCustody(ctx, &model.CustodyAccount{
			Address:  vaultAddr.Address,
			Bump:     vaultAddr.Bump,
			Campaign: campaign.Address,
			Currency: campaign.Currency,
		}); err != nil {
			if errors.Is(err, ledger.ErrAlreadyExists) {
				return ErrAlreadyExists
			}
			return err
		}

		cfg.TotalCampaigns, err = checkedAdd(cfg.TotalCampaigns, 1)
		if err != nil {
			return err
		}
		return tx.SaveConfig(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

// CreateTierParams 创建档位参数
type CreateTierParams struct {
	Farmer          solana.PublicKey
	CampaignAddress string
	TierID          uint8
	Name            string
	MinAmount       uint64
	MaxAmount       uint64
	Benefits        string
	MaxBackers      uint32
}

// CreateTier 创建奖励档位，仅活动创建者可调用
func (e *Engine) CreateTier(ctx context.Context, p CreateTierParams) (*model.CampaignTier, error) {
	if len(p.Name) == 0 || len(p.Name) > model.MaxTierNameLen {
		return nil, ErrNameTooLong
	}
	if len(p.Benefits) > model.MaxBenefitsLen {
		return nil, ErrBenefitsTooLong
	}
	if p.MinAmount == 0 {
		return nil, ErrInvalidAmount
	}
	if p.MaxAmount != 0 && p.MaxAmount < p.MinAmount {
		return nil, ErrInvalidTierRange
	}

	campaignKey, err := solana.PublicKeyFromBase58(p.CampaignAddress)
	if err != nil {
		return nil, ErrNotFound
	}
	tierAddr, err := e.deriver.Tier(campaignKey, p.TierID)
	if err != nil {
		return nil, err
	}

	tier := &model.CampaignTier{
		Address:    tierAddr.Address,
		Bump:       tierAddr.Bump,
		Campaign:   p.CampaignAddress,
		TierID:     p.TierID,
		Name:       p.Name,
		Benefits:   p.Benefits,
		MinAmount:  p.MinAmount,
		MaxAmount:  p.MaxAmount,
		MaxBackers: p.MaxBackers,
	}

	err = e.atomicRetry(ctx, func(tx ledger.Store) error {
		campaign, err := tx.GetCampaign(ctx, p.CampaignAddress)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if campaign.Farmer != p.Farmer.String() {
			return ErrUnauthorized
		}
		if !campaign.IsActive {
			return ErrCampaignNotActive
		}
		if campaign.IsFinalized {
			return ErrCampaignFinalized
		}
		if campaign.TiersCount >= model.MaxTiersPerCampaign {
			return ErrMathOverflow
		}

		if err := tx.CreateTier(ctx, tier); err != nil {
			if errors.Is(err, ledger.ErrAlreadyExists) {
				return ErrAlreadyExists
			}
			return err
		}

		campaign.TiersCount++
		return tx.SaveCampaign(ctx, campaign)
	})
	if err != nil {
		return nil, err
	}
	return tier, nil
}

// BackCampaignParams 出资参数
type BackCampaignParams struct {
	Backer          solana.PublicKey
	CampaignAddress string
	TierAddress     string
	TierID          uint8
	Amount          uint64
	Currency        CurrencyKind
}

// BackCampaign 向活动出资。一个操作覆盖原生币与代币两种币种，
// 在托管划转处按活动币种分流。每个出资人每个活动至多一笔。
func (e *Engine) BackCampaign(ctx context.Context, p BackCampaignParams) (*model.Backing, error) {
	campaignKey, err := solana.PublicKeyFromBase58(p.CampaignAddress)
	if err != nil {
		return nil, ErrNotFound
	}
	tierAddr, err := e.deriver.Tier(campaignKey, p.TierID)
	if err != nil {
		return nil, err
	}
	// 拒绝与身份字段不符的档位地址
	if p.TierAddress != "" && !e.deriver.Verify(p.TierAddress, tierAddr) {
		return nil, ErrInvalidTier
	}
	backingAddr, err := e.deriver.Backing(campaignKey, p.Backer)
	if err != nil {
		return nil, err
	}

	var backing *model.Backing
	err = e.atomicRetry(ctx, func(tx ledger.Store) error {
		now := e.now()

		campaign, err := tx.GetCampaign(ctx, p.CampaignAddress)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !campaign.IsActive {
			return ErrCampaignNotActive
		}
		if campaign.IsFinalized {
			return ErrCampaignFinalized
		}
		if now < campaign.StartTime {
			return ErrCampaignNotStarted
		}
		if now > campaign.EndTime {
			return ErrCampaignEnded
		}
		// 出资币种必须与活动币种一致
		if p.Currency.String() != campaign.Currency {
			return ErrInvalidMint
		}

		tier, err := tx.GetTier(ctx, tierAddr.Address)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ErrInvalidTier
			}
			return err
		}
		if err := validateBackingAmount(tier, p.Amount); err != nil {
			return err
		}

		// 先完成全部受检运算，任何溢出都在落库和划转之前拒绝
		raised, err := checkedAdd(campaign.RaisedAmount, p.Amount)
		if err != nil {
			return err
		}
		backers, err := checkedAdd(campaign.BackersCount, 1)
		if err != nil {
			return err
		}

		backing = &model.Backing{
			Address:  backingAddr.Address,
			Bump:     backingAddr.Bump,
			Campaign: campaign.Address,
			Backer:   p.Backer.String(),
			TierID:   p.TierID,
			Amount:   p.Amount,
			BackedAt: now,
		}
		if err := tx.CreateBacking(ctx, backing); err != nil {
			if errors.Is(err, ledger.ErrAlreadyExists) {
				return ErrDuplicateBacking
			}
			return err
		}

		if err := reserveTierSlot(ctx, tx, tier); err != nil {
			return err
		}

		campaign.RaisedAmount = raised
		campaign.BackersCount = backers
		if err := tx.SaveCampaign(ctx, campaign); err != nil {
			return err
		}

		vaultAddr, err := e.vaultFor(campaign)
		if err != nil {
			return err
		}
		custody, err := tx.GetCustody(ctx, vaultAddr)
		if err != nil {
			return err
		}
		if err := e.custody.Deposit(ctx, tx, custody, backing.Backer, p.Amount); err != nil {
			return err
		}

		configAddr, err := e.deriver.Config(e.authority)
		if err != nil {
			return err
		}
		cfg, err := tx.GetConfig(ctx, configAddr.Address)
		if err != nil {
			return err
		}
		cfg.TotalRaised, err = checkedAdd(cfg.TotalRaised, p.Amount)
		if err != nil {
			return err
		}
		return tx.SaveConfig(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return backing, nil
}

// Verdict 终结裁定
type Verdict string

const (
	VerdictSuccess Verdict = "success" // 达成目标
	VerdictFailure Verdict = "failure" // 未达成目标
)

// FinalizeCampaign 终结活动。只记录裁定，不动资金；
// 提现与退款各自重新比较 raised 与 goal。重复终结必须失败。
func (e *Engine) FinalizeCampaign(ctx context.Context, caller solana.PublicKey, campaignAddress string) (Verdict, error) {
	var verdict Verdict
	err := e.atomicRetry(ctx, func(tx ledger.Store) error {
		campaign, err := tx.GetCampaign(ctx, campaignAddress)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if caller.String() != campaign.Farmer && !caller.Equals(e.authority) {
			return ErrUnauthorized
		}
		if campaign.IsFinalized {
			return ErrCampaignAlreadyFinalized
		}
		if !campaign.IsActive {
			return ErrCampaignNotActive
		}
		if !campaign.Ended(e.now()) {
			return ErrCampaignNotEnded
		}

		campaign.IsActive = false
		campaign.IsFinalized = true
		if err := tx.SaveCampaign(ctx, campaign); err != nil {
			return err
		}

		if campaign.GoalReached() {
			verdict = VerdictSuccess
		} else {
			verdict = VerdictFailure
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return verdict, nil
}

// WithdrawResult 提现结果
type WithdrawResult struct {
	Net uint64 `json:"net"` // 划给创建者的净额
	Fee uint64 `json:"fee"` // 划给平台金库的手续费
}

// WithdrawFunds 创建者提取达成目标的活动资金。托管余额在同一次
// 提交中清零，重放看到零余额后以 NoFundsToWithdraw 失败。
func (e *Engine) WithdrawFunds(ctx context.Context, farmer solana.PublicKey, campaignAddress string) (*WithdrawResult, error) {
	configAddr, err := e.deriver.Config(e.authority)
	if err != nil {
		return nil, err
	}

	var result *WithdrawResult
	err = e.atomicRetry(ctx, func(tx ledger.Store) error {
		campaign, err := tx.GetCampaign(ctx, campaignAddress)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if campaign.Farmer != farmer.String() {
			return ErrUnauthorized
		}
		if !campaign.IsFinalized {
			return ErrCampaignNotFinalized
		}
		if !campaign.GoalReached() {
			return ErrGoalNotReached
		}

		vaultAddr, err := e.vaultFor(campaign)
		if err != nil {
			return err
		}
		custody, err := tx.GetCustody(ctx, vaultAddr)
		if err != nil {
			return err
		}
		if custody.Balance == 0 {
			return ErrNoFundsToWithdraw
		}

		cfg, err := tx.GetConfig(ctx, configAddr.Address)
		if err != nil {
			return err
		}
		fee, err := platformFee(custody.Balance, cfg.FeeBps)
		if err != nil {
			return err
		}
		net, err := checkedSub(custody.Balance, fee)
		if err != nil {
			return err
		}

		if fee > 0 {
			if err := e.custody.Withdraw(ctx, tx, custody, e.treasury, fee, model.TransferFee); err != nil {
				return err
			}
		}
		if err := e.custody.Withdraw(ctx, tx, custody, campaign.Farmer, net, model.TransferWithdraw); err != nil {
			return err
		}

		result = &WithdrawResult{Net: net, Fee: fee}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClaimRefund 未达成目标时出资人取回原额。is_refunded 只翻转一次，
// 重放以 AlreadyRefunded 失败。
func (e *Engine) ClaimRefund(ctx context.Context, backer solana.PublicKey, campaignAddress string) (uint64, error) {
	campaignKey, err := solana.PublicKeyFromBase58(campaignAddress)
	if err != nil {
		return 0, ErrNotFound
	}
	backingAddr, err := e.deriver.Backing(campaignKey, backer)
	if err != nil {
		return 0, err
	}

	var refunded uint64
	err = e.atomicRetry(ctx, func(tx ledger.Store) error {
		campaign, err := tx.GetCampaign(ctx, campaignAddress)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !campaign.IsFinalized {
			return ErrCampaignNotFinalized
		}
		if campaign.GoalReached() {
			return ErrGoalReached
		}

		backing, err := tx.GetBacking(ctx, backingAddr.Address)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if backing.Backer != backer.String() {
			return ErrUnauthorized
		}
		if backing.IsRefunded {
			return ErrAlreadyRefunded
		}

		vaultAddr, err := e.vaultFor(campaign)
		if err != nil {
			return err
		}
		custody, err := tx.GetCustody(ctx, vaultAddr)
		if err != nil {
			return err
		}
		if err := e.custody.Withdraw(ctx, tx, custody, backing.Backer, backing.Amount, model.TransferRefund); err != nil {
			return err
		}

		backing.IsRefunded = true
		if err := tx.SaveBacking(ctx, backing); err != nil {
			return err
		}

		refunded = backing.Amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return refunded, nil
}

// vaultFor 活动托管账户地址
func (e *Engine) vaultFor(campaign *model.Campaign) (string, error) {
	currency, err := ParseCurrency(campaign.Currency)
	if err != nil {
		return "", err
	}
	farmer, err := solana.PublicKeyFromBase58(campaign.Farmer)
	if err != nil {
		return "", err
	}
	derived, err := e.deriver.Vault(farmer, campaign.CampaignID, currency.IsNative())
	if err != nil {
		return "", err
	}
	return derived.Address, nil
}
