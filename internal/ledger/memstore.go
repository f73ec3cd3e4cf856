package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/0xjaqbek/freshFarm/internal/model"
)

// memState 内存账本状态，全部以派生地址为键
type memState struct {
	nextID    uint
	configs   map[string]model.PlatformConfig
	campaigns map[string]model.Campaign
	tiers     map[string]model.CampaignTier
	backings  map[string]model.Backing
	custody   map[string]model.CustodyAccount
	transfers []model.TransferRecord
}

func newMemState() *memState {
	return &memState{
		nextID:    1,
		configs:   make(map[string]model.PlatformConfig),
		campaigns: make(map[string]model.Campaign),
		tiers:     make(map[string]model.CampaignTier),
		backings:  make(map[string]model.Backing),
		custody:   make(map[string]model.CustodyAccount),
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		nextID:    s.nextID,
		configs:   make(map[string]model.PlatformConfig, len(s.configs)),
		campaigns: make(map[string]model.Campaign, len(s.campaigns)),
		tiers:     make(map[string]model.CampaignTier, len(s.tiers)),
		backings:  make(map[string]model.Backing, len(s.backings)),
		custody:   make(map[string]model.CustodyAccount, len(s.custody)),
		transfers: append([]model.TransferRecord(nil), s.transfers...),
	}
	for k, v := range s.configs {
		c.configs[k] = v
	}
	for k, v := range s.campaigns {
		c.campaigns[k] = v
	}
	for k, v := range s.tiers {
		c.tiers[k] = v
	}
	for k, v := range s.backings {
		c.backings[k] = v
	}
	for k, v := range s.custody {
		c.custody[k] = v
	}
	return c
}

// MemStore 内存账本存储。与GormStore语义一致：Create遇占用返回
// ErrAlreadyExists，Save做版本比较交换，Atomic整体提交或整体回滚。
// 用于测试和纯账本运行模式。
type MemStore struct {
	mu    sync.Mutex
	state *memState
}

// NewMemStore 创建内存账本存储
func NewMemStore() *MemStore {
	return &MemStore{state: newMemState()}
}

// Atomic 以快照回滚方式模拟事务
func (s *MemStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&memView{state: s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *MemStore) view(fn func(v *memView) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memView{state: s.state})
}

func (s *MemStore) CreateConfig(ctx context.Context, cfg *model.PlatformConfig) error {
	return s.view(func(v *memView) error { return v.CreateConfig(ctx, cfg) })
}

func (s *MemStore) GetConfig(ctx context.Context, address string) (cfg *model.PlatformConfig, err error) {
	err = s.view(func(v *memView) error { cfg, err = v.GetConfig(ctx, address); return err })
	return
}

func (s *MemStore) SaveConfig(ctx context.Context, cfg *model.PlatformConfig) error {
	return s.view(func(v *memView) error { return v.SaveConfig(ctx, cfg) })
}

func (s *MemStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	return s.view(func(v *memView) error { return v.CreateCampaign(ctx, c) })
}

func (s *MemStore) GetCampaign(ctx context.Context, address string) (c *model.Campaign, err error) {
	err = s.view(func(v *memView) error { c, err = v.GetCampaign(ctx, address); return err })
	return
}

func (s *MemStore) SaveCampaign(ctx context.Context, c *model.Campaign) error {
	return s.view(func(v *memView) error { return v.SaveCampaign(ctx, c) })
}

func (s *MemStore) ListCampaigns(ctx context.Context, farmer string) (cs []model.Campaign, err error) {
	err = s.view(func(v *memView) error { cs, err = v.ListCampaigns(ctx, farmer); return err })
	return
}

func (s *MemStore) ListEndedUnfinalized(ctx context.Context, now int64) (cs []model.Campaign, err error) {
	err = s.view(func(v *memView) error { cs, err = v.ListEndedUnfinalized(ctx, now); return err })
	return
}

func (s *MemStore) CreateTier(ctx context.Context, t *model.CampaignTier) error {
	return s.view(func(v *memView) error { return v.CreateTier(ctx, t) })
}

func (s *MemStore) GetTier(ctx context.Context, address string) (t *model.CampaignTier, err error) {
	err = s.view(func(v *memView) error { t, err = v.GetTier(ctx, address); return err })
	return
}

func (s *MemStore) SaveTier(ctx context.Context, t *model.CampaignTier) error {
	return s.view(func(v *memView) error { return v.SaveTier(ctx, t) })
}

func (s *MemStore) ListTiers(ctx context.Context, campaign string) (ts []model.CampaignTier, err error) {
	err = s.view(func(v *memView) error { ts, err = v.ListTiers(ctx, campaign); return err })
	return
}

func (s *MemStore) CreateBacking(ctx context.Context, b *model.Backing) error {
	return s.view(func(v *memView) error { return v.CreateBacking(ctx, b) })
}

func (s *MemStore) GetBacking(ctx context.Context, address string) (b *model.Backing, err error) {
	err = s.view(func(v *memView) error { b, err = v.GetBacking(ctx, address); return err })
	return
}

func (s *MemStore) SaveBacking(ctx context.Context, b *model.Backing) error {
	return s.view(func(v *memView) error { return v.SaveBacking(ctx, b) })
}

func (s *MemStore) ListBackings(ctx context.Context, campaign string) (bs []model.Backing, err error) {
	err = s.view(func(v *memView) error { bs, err = v.ListBackings(ctx, campaign); return err })
	return
}

func (s *MemStore) CreateCustody(ctx context.Context, a *model.CustodyAccount) error {
	return s.view(func(v *memView) error { return v.CreateCustody(ctx, a) })
}

func (s *MemStore) GetCustody(ctx context.Context, address string) (a *model.CustodyAccount, err error) {
	err = s.view(func(v *memView) error { a, err = v.GetCustody(ctx, address); return err })
	return
}

func (s *MemStore) SaveCustody(ctx context.Context, a *model.CustodyAccount) error {
	return s.view(func(v *memView) error { return v.SaveCustody(ctx, a) })
}

func (s *MemStore) CreateTransfer(ctx context.Context, r *model.TransferRecord) error {
	return s.view(func(v *memView) error { return v.CreateTransfer(ctx, r) })
}

func (s *MemStore) ListTransfers(ctx context.Context, campaign string) (rs []model.TransferRecord, err error) {
	err = s.view(func(v *memView) error { rs, err = v.ListTransfers(ctx, campaign); return err })
	return
}

// memView 持锁状态下的账本视图。Atomic嵌套时直接复用当前视图，
// 外层的快照回滚覆盖整个嵌套。
type memView struct {
	state *memState
}

func (v *memView) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return fn(v)
}

func (v *memView) assignID() uint {
	id := v.state.nextID
	v.state.nextID++
	return id
}

func (v *memView) CreateConfig(ctx context.Context, cfg *model.PlatformConfig) error {
	if _, ok := v.state.configs[cfg.Address]; ok {
		return ErrAlreadyExists
	}
	for _, existing := range v.state.configs {
		if existing.Authority == cfg.Authority {
			return ErrAlreadyExists
		}
	}
	cfg.ID = v.assignID()
	v.state.configs[cfg.Address] = *cfg
	return nil
}

func (v *memView) GetConfig(ctx context.Context, address string) (*model.PlatformConfig, error) {
	cfg, ok := v.state.configs[address]
	if !ok {
		return nil, ErrNotFound
	}
	return &cfg, nil
}

func (v *memView) SaveConfig(ctx context.Context, cfg *model.PlatformConfig) error {
	existing, ok := v.state.configs[cfg.Address]
	if !ok || existing.Version != cfg.Version {
		return ErrConflict
	}
	cfg.Version++
	v.state.configs[cfg.Address] = *cfg
	return nil
}

func (v *memView) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	if _, ok := v.state.campaigns[c.Address]; ok {
		return ErrAlreadyExists
	}
	c.ID = v.assignID()
	v.state.campaigns[c.Address] = *c
	return nil
}

func (v *memView) GetCampaign(ctx context.Context, address string) (*model.Campaign, error) {
	c, ok := v.state.campaigns[address]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (v *memView) SaveCampaign(ctx context.Context, c *model.Campaign) error {
	existing, ok := v.state.campaigns[c.Address]
	if !ok || existing.Version != c.Version {
		return ErrConflict
	}
	c.Version++
	v.state.campaigns[c.Address] = *c
	return nil
}

func (v *memView) ListCampaigns(ctx context.Context, farmer string) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	for _, c := range v.state.campaigns {
		if farmer == "" || c.Farmer == farmer {
			campaigns = append(campaigns, c)
		}
	}
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].ID < campaigns[j].ID })
	return campaigns, nil
}

func (v *memView) ListEndedUnfinalized(ctx context.Context, now int64) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	for _, c := range v.state.campaigns {
		if c.EndTime < now && !c.IsFinalized {
			campaigns = append(campaigns, c)
		}
	}
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].ID < campaigns[j].ID })
	return campaigns, nil
}

func (v *memView) CreateTier(ctx context.Context, t *model.CampaignTier) error {
	if _, ok := v.state.tiers[t.Address]; ok {
		return ErrAlreadyExists
	}
	t.ID = v.assignID()
	v.state.tiers[t.Address] = *t
	return nil
}

func (v *memView) GetTier(ctx context.Context, address string) (*model.CampaignTier, error) {
	t, ok := v.state.tiers[address]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (v *memView) SaveTier(ctx context.Context, t *model.CampaignTier) error {
	existing, ok := v.state.tiers[t.Address]
	if !ok || existing.Version != t.Version {
		return ErrConflict
	}
	t.Version++
	v.state.tiers[t.Address] = *t
	return nil
}

func (v *memView) ListTiers(ctx context.Context, campaign string) ([]model.CampaignTier, error) {
	var tiers []model.CampaignTier
	for _, t := range v.state.tiers {
		if t.Campaign == campaign {
			tiers = append(tiers, t)
		}
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].TierID < tiers[j].TierID })
	return tiers, nil
}

func (v *memView) CreateBacking(ctx context.Context, b *model.Backing) error {
	if _, ok := v.state.backings[b.Address]; ok {
		return ErrAlreadyExists
	}
	b.ID = v.assignID()
	v.state.backings[b.Address] = *b
	return nil
}

func (v *memView) GetBacking(ctx context.Context, address string) (*model.Backing, error) {
	b, ok := v.state.backings[address]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (v *memView) SaveBacking(ctx context.Context, b *model.Backing) error {
	existing, ok := v.state.backings[b.Address]
	if !ok || existing.Version != b.Version {
		return ErrConflict
	}
	b.Version++
	v.state.backings[b.Address] = *b
	return nil
}

func (v *memView) ListBackings(ctx context.Context, campaign string) ([]model.Backing, error) {
	var backings []model.Backing
	for _, b := range v.state.backings {
		if b.Campaign == campaign {
			backings = append(backings, b)
		}
	}
	sort.Slice(backings, func(i, j int) bool { return backings[i].ID < backings[j].ID })
	return backings, nil
}

func (v *memView) CreateCustody(ctx context.Context, a *model.CustodyAccount) error {
	if _, ok := v.state.custody[a.Address]; ok {
		return ErrAlreadyExists
	}
	a.ID = v.assignID()
	v.state.custody[a.Address] = *a
	return nil
}

func (v *memView) GetCustody(ctx context.Context, address string) (*model.CustodyAccount, error) {
	a, ok := v.state.custody[address]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (v *memView) SaveCustody(ctx context.Context, a *model.CustodyAccount) error {
	existing, ok := v.state.custody[a.Address]
	if !ok || existing.Version != a.Version {
		return ErrConflict
	}
	a.Version++
	v.state.custody[a.Address] = *a
	return nil
}

func (v *memView) CreateTransfer(ctx context.Context, r *model.TransferRecord) error {
	r.ID = v.assignID()
	v.state.transfers = append(v.state.transfers, *r)
	return nil
}

func (v *memView) ListTransfers(ctx context.Context, campaign string) ([]model.TransferRecord, error) {
	var records []model.TransferRecord
	for _, r := range v.state.transfers {
		if r.Campaign == campaign {
			records = append(records, r)
		}
	}
	return records, nil
}
