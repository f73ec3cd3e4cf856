package handler

import (
	"net/http"

	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

// 钱包协作方验签后透传的调用方地址
const walletHeader = "X-Wallet-Address"

type EscrowHandler struct {
	engine *escrow.Engine
}

func NewEscrowHandler(engine *escrow.Engine) *EscrowHandler {
	return &EscrowHandler{engine: engine}
}

// caller 从请求头解析调用方地址
func caller(c *gin.Context) (solana.PublicKey, bool) {
	raw := c.GetHeader(walletHeader)
	if raw == "" {
		BadRequestResponse(c, "missing "+walletHeader+" header")
		return solana.PublicKey{}, false
	}
	pk, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		BadRequestResponse(c, "invalid wallet address")
		return solana.PublicKey{}, false
	}
	return pk, true
}

// InitConfig 初始化平台配置
func (h *EscrowHandler) InitConfig(c *gin.Context) {
	authority, ok := caller(c)
	if !ok {
		return
	}
	var req InitConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, err.Error())
		return
	}

	cfg, err := h.engine.InitializeConfig(c.Request.Context(), authority, req.FeeBps)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "平台配置初始化成功", ToConfigResponse(cfg))
}

// GetConfig 查询平台配置
func (h *EscrowHandler) GetConfig(c *gin.Context) {
	cfg, err := h.engine.GetConfig(c.Request.Context())
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", ToConfigResponse(cfg))
}

// CreateCampaign 创建众筹活动
func (h *EscrowHandler) CreateCampaign(c *gin.Context) {
	farmer, ok := caller(c)
	if !ok {
		return
	}
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, err.Error())
		return
	}
	currency, err := escrow.ParseCurrency(req.Currency)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	campaign, err := h.engine.CreateCampaign(c.Request.Context(), escrow.CreateCampaignParams{
		Farmer:       farmer,
		CampaignID:   req.CampaignID,
		Title:        req.Title,
		Description:  req.Description,
		GoalAmount:   req.GoalAmount,
		DurationDays: req.DurationDays,
		Currency:     currency,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "活动创建成功", ToCampaignResponse(campaign))
}

// GetCampaigns 获取活动列表
func (h *EscrowHandler) GetCampaigns(c *gin.Context) {
	farmer := c.Query("farmer")

	campaigns, err := h.engine.ListCampaigns(c.Request.Context(), farmer)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	out := make([]CampaignResponse, 0, len(campaigns))
	for i := range campaigns {
		out = append(out, ToCampaignResponse(&campaigns[i]))
	}
	SuccessResponse(c, http.StatusOK, "", out)
}

// GetCampaign 获取单个活动详情
func (h *EscrowHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.engine.GetCampaign(c.Request.Context(), c.Param("address"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", ToCampaignResponse(campaign))
}

// GetCampaignStats 获取活动统计
func (h *EscrowHandler) GetCampaignStats(c *gin.Context) {
	stats, err := h.engine.GetCampaignStats(c.Request.Context(), c.Param("address"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", stats)
}

// CreateTier 为活动创建出资档位
func (h *EscrowHandler) CreateTier(c *gin.Context) {
	farmer, ok := caller(c)
	if !ok {
		return
	}
	var req CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, err.Error())
		return
	}

	tier, err := h.engine.CreateTier(c.Request.Context(), escrow.CreateTierParams{
		Farmer:          farmer,
		CampaignAddress: c.Param("address"),
		TierID:          req.TierID,
		Name:            req.Name,
		MinAmount:       req.MinAmount,
		MaxAmount:       req.MaxAmount,
		Benefits:        req.Benefits,
		MaxBackers:      req.MaxBackers,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "档位创建成功", ToTierResponse(tier))
}

// GetTiers 获取活动档位列表
func (h *EscrowHandler) GetTiers(c *gin.Context) {
	tiers, err := h.engine.ListTiers(c.Request.Context(), c.Param("address"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	out := make([]TierResponse, 0, len(tiers))
	for i := range tiers {
		out = append(out, ToTierResponse(&tiers[i]))
	}
	SuccessResponse(c, http.StatusOK, "", out)
}

// BackCampaign 向活动出资
func (h *EscrowHandler) BackCampaign(c *gin.Context) {
	backer, ok := caller(c)
	if !ok {
		return
	}
	var req BackCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestResponse(c, err.Error())
		return
	}
	currency, err := escrow.ParseCurrency(req.Currency)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	backing, err := h.engine.BackCampaign(c.Request.Context(), escrow.BackCampaignParams{
		Backer:          backer,
		CampaignAddress: c.Param("address"),
		TierAddress:     req.TierAddress,
		TierID:          req.TierID,
		Amount:          req.Amount,
		Currency:        currency,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "出资成功", ToBackingResponse(backing))
}

// GetBackings 获取活动出资列表
func (h *EscrowHandler) GetBackings(c *gin.Context) {
	backings, err := h.engine.ListBackings(c.Request.Context(), c.Param("address"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	out := make([]BackingResponse, 0, len(backings))
	for i := range backings {
		out = append(out, ToBackingResponse(&backings[i]))
	}
	SuccessResponse(c, http.StatusOK, "", out)
}

// GetTransfers 获取活动托管流水
func (h *EscrowHandler) GetTransfers(c *gin.Context) {
	transfers, err := h.engine.ListTransfers(c.Request.Context(), c.Param("address"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	out := make([]TransferResponse, 0, len(transfers))
	for i := range transfers {
		out = append(out, ToTransferResponse(&transfers[i]))
	}
	SuccessResponse(c, http.StatusOK, "", out)
}

// FinalizeCampaign 终结活动
func (h *EscrowHandler) FinalizeCampaign(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	verdict, err := h.engine.FinalizeCampaign(c.Request.Context(), who, c.Param("address"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "活动已终结", FinalizeResponse{Verdict: string(verdict)})
}

// WithdrawFunds 创建者提现
func (h *EscrowHandler) WithdrawFunds(c *gin.Context) {
	farmer, ok := caller(c)
	if !ok {
		return
	}

	result, err := h.engine.WithdrawFunds(c.Request.Context(), farmer, c.Param("address"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "提现成功", ToWithdrawResponse(result))
}

// ClaimRefund 出资人退款
func (h *EscrowHandler) ClaimRefund(c *gin.Context) {
	backer, ok := caller(c)
	if !ok {
		return
	}

	amount, err := h.engine.ClaimRefund(c.Request.Context(), backer, c.Param("address"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "退款成功", RefundResponse{Amount: amount})
}
