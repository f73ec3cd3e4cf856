package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/0xjaqbek/freshFarm/internal/addr"
	"github.com/0xjaqbek/freshFarm/internal/chain"
	"github.com/0xjaqbek/freshFarm/internal/config"
	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/0xjaqbek/freshFarm/internal/ledger"
	"github.com/gagliardetto/solana-go"
)

const testProgramID = "7ETsTKTvvjbE89kEQJARuJcUnN18n28Fy972zik2tAnN"

// jobClock 可拨动的时钟
type jobClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *jobClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *jobClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newJobEngine(t *testing.T) (*escrow.Engine, *jobClock) {
	t.Helper()

	deriver, err := addr.NewDeriver(testProgramID)
	if err != nil {
		t.Fatalf("NewDeriver: %v", err)
	}
	clock := &jobClock{t: time.Unix(1700000000, 0)}
	authority := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey().String()
	engine := escrow.NewEngine(ledger.NewMemStore(), deriver, chain.NewNullTransferer(), authority, treasury)
	engine.SetClock(clock.Now)

	if _, err := engine.InitializeConfig(context.Background(), authority, 250); err != nil {
		t.Fatalf("InitializeConfig: %v", err)
	}
	return engine, clock
}

func TestFinalizeJobExecuteWaitsForAllCampaigns(t *testing.T) {
	engine, clock := newJobEngine(t)

	var latestEnd int64
	for id := uint64(1); id <= 5; id++ {
		campaign, err := engine.CreateCampaign(context.Background(), escrow.CreateCampaignParams{
			Farmer:       solana.NewWallet().PublicKey(),
			CampaignID:   id,
			Title:        "harvest",
			Description:  "seasonal produce run",
			GoalAmount:   1000,
			DurationDays: 1,
			Currency:     escrow.Native(),
		})
		if err != nil {
			t.Fatalf("CreateCampaign: %v", err)
		}
		if campaign.EndTime > latestEnd {
			latestEnd = campaign.EndTime
		}
	}
	clock.Set(time.Unix(latestEnd+1, 0))

	job := NewFinalizeJob(engine, &config.Config{
		Scheduler: config.SchedulerConfig{Interval: 60, Workers: 2},
	})

	// Execute返回时所有活动必须已终结，不能留尾巴给被取消的ctx
	job.Execute()

	remaining, err := engine.ListEndedUnfinalized(context.Background())
	if err != nil {
		t.Fatalf("ListEndedUnfinalized: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("campaigns left unfinalized after Execute: %d", len(remaining))
	}

	// 再跑一轮应当是空转
	job.Execute()
}

func TestFinalizeJobSchedule(t *testing.T) {
	engine, _ := newJobEngine(t)
	job := NewFinalizeJob(engine, &config.Config{
		Scheduler: config.SchedulerConfig{Interval: 30, Workers: 2},
	})
	if job.GetName() != "campaign_finalizer" {
		t.Errorf("name = %s", job.GetName())
	}
	if job.GetSchedule() == nil {
		t.Error("schedule is nil")
	}
}
