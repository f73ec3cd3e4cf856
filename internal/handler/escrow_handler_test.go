package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0xjaqbek/freshFarm/internal/addr"
	"github.com/0xjaqbek/freshFarm/internal/chain"
	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/0xjaqbek/freshFarm/internal/ledger"
	"github.com/0xjaqbek/freshFarm/internal/router"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

const testProgramID = "7ETsTKTvvjbE89kEQJARuJcUnN18n28Fy972zik2tAnN"

type apiResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorKind string          `json:"errorKind"`
	Data      json.RawMessage `json:"data"`
}

type testServer struct {
	router    *gin.Engine
	authority solana.PublicKey
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deriver, err := addr.NewDeriver(testProgramID)
	if err != nil {
		t.Fatalf("NewDeriver: %v", err)
	}
	authority := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey().String()
	engine := escrow.NewEngine(ledger.NewMemStore(), deriver, chain.NewNullTransferer(), authority, treasury)

	return &testServer{
		router:    router.Setup(engine),
		authority: authority,
	}
}

func (s *testServer) do(t *testing.T, method, path, wallet string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if wallet != "" {
		req.Header.Set("X-Wallet-Address", wallet)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func (s *testServer) initConfig(t *testing.T) {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/api/v1/config", s.authority.String(), map[string]interface{}{"feeBps": 250})
	if w.Code != http.StatusCreated {
		t.Fatalf("init config status = %d: %s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}

func TestInitConfigEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.initConfig(t)

	// 重复初始化映射为冲突
	w, resp := s.do(t, http.MethodPost, "/api/v1/config", s.authority.String(), map[string]interface{}{"feeBps": 250})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate init status = %d", w.Code)
	}
	if resp.ErrorKind != "AlreadyExists" {
		t.Errorf("errorKind = %q", resp.ErrorKind)
	}

	w, _ = s.do(t, http.MethodGet, "/api/v1/config", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get config status = %d", w.Code)
	}
}

func TestInitConfigInvalidFee(t *testing.T) {
	s := newTestServer(t)
	w, resp := s.do(t, http.MethodPost, "/api/v1/config", s.authority.String(), map[string]interface{}{"feeBps": 10001})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.ErrorKind != "InvalidFee" {
		t.Errorf("errorKind = %q", resp.ErrorKind)
	}
}

func TestMissingWalletHeader(t *testing.T) {
	s := newTestServer(t)
	w, resp := s.do(t, http.MethodPost, "/api/v1/config", "", map[string]interface{}{"feeBps": 250})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Success {
		t.Error("success true without wallet header")
	}
}

func TestInvalidWalletHeader(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodPost, "/api/v1/config", "not-base58!", map[string]interface{}{"feeBps": 250})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.initConfig(t)
	farmer := solana.NewWallet().PublicKey().String()

	// 创建活动
	w, resp := s.do(t, http.MethodPost, "/api/v1/campaigns", farmer, map[string]interface{}{
		"campaignId":   1,
		"title":        "Strawberry field expansion",
		"description":  "Double the rows before spring",
		"goalAmount":   10000,
		"durationDays": 14,
		"currency":     "native",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create campaign status = %d: %s", w.Code, w.Body.String())
	}
	var campaign struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(resp.Data, &campaign); err != nil {
		t.Fatalf("decode campaign: %v", err)
	}
	if campaign.Address == "" {
		t.Fatal("campaign address missing")
	}

	// 创建档位
	w, resp = s.do(t, http.MethodPost, "/api/v1/campaigns/"+campaign.Address+"/tiers", farmer, map[string]interface{}{
		"tierId":    0,
		"name":      "Berry basket",
		"minAmount": 50,
		"benefits":  "Weekly basket for a season",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create tier status = %d: %s", w.Code, w.Body.String())
	}
	var tier struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(resp.Data, &tier); err != nil {
		t.Fatalf("decode tier: %v", err)
	}

	// 出资
	backer := solana.NewWallet().PublicKey().String()
	w, _ = s.do(t, http.MethodPost, "/api/v1/campaigns/"+campaign.Address+"/backings", backer, map[string]interface{}{
		"tierAddress": tier.Address,
		"tierId":      0,
		"amount":      5000,
		"currency":    "native",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("back campaign status = %d: %s", w.Code, w.Body.String())
	}

	// 同一人重复出资映射为冲突
	w, resp = s.do(t, http.MethodPost, "/api/v1/campaigns/"+campaign.Address+"/backings", backer, map[string]interface{}{
		"tierAddress": tier.Address,
		"tierId":      0,
		"amount":      5000,
		"currency":    "native",
	})
	if w.Code != http.StatusConflict || resp.ErrorKind != "DuplicateBacking" {
		t.Fatalf("duplicate backing status = %d kind = %q", w.Code, resp.ErrorKind)
	}

	// 金额低于档位下限映射为参数错误
	w, resp = s.do(t, http.MethodPost, "/api/v1/campaigns/"+campaign.Address+"/backings",
		solana.NewWallet().PublicKey().String(), map[string]interface{}{
			"tierAddress": tier.Address,
			"tierId":      0,
			"amount":      10,
			"currency":    "native",
		})
	if w.Code != http.StatusBadRequest || resp.ErrorKind != "AmountBelowMinimum" {
		t.Fatalf("below-minimum status = %d kind = %q", w.Code, resp.ErrorKind)
	}

	// 提前终结映射为冲突
	w, resp = s.do(t, http.MethodPost, "/api/v1/campaigns/"+campaign.Address+"/finalize", farmer, nil)
	if w.Code != http.StatusConflict || resp.ErrorKind != "CampaignNotEnded" {
		t.Fatalf("early finalize status = %d kind = %q", w.Code, resp.ErrorKind)
	}

	// 统计
	w, resp = s.do(t, http.MethodGet, "/api/v1/campaigns/"+campaign.Address+"/stats", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var stats struct {
		Progress float64 `json:"progress"`
	}
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Progress != 50 {
		t.Errorf("progress = %v, want 50", stats.Progress)
	}

	// 流水
	w, resp = s.do(t, http.MethodGet, "/api/v1/campaigns/"+campaign.Address+"/transfers", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("transfers status = %d", w.Code)
	}
	var transfers []struct {
		Direction string `json:"direction"`
	}
	if err := json.Unmarshal(resp.Data, &transfers); err != nil {
		t.Fatalf("decode transfers: %v", err)
	}
	if len(transfers) != 1 || transfers[0].Direction != "deposit" {
		t.Errorf("transfers = %+v", transfers)
	}
}

func TestGetUnknownCampaign(t *testing.T) {
	s := newTestServer(t)
	w, resp := s.do(t, http.MethodGet, "/api/v1/campaigns/"+solana.NewWallet().PublicKey().String(), "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.ErrorKind != "NotFound" {
		t.Errorf("errorKind = %q", resp.ErrorKind)
	}
}
