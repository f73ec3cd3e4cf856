package handler

import (
	"net/http"

	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应，按错误种类决定HTTP状态码
func ErrorResponse(c *gin.Context, err error) {
	kind := escrow.KindOf(err)
	c.JSON(statusForKind(kind), Response{
		Success:   false,
		Message:   err.Error(),
		ErrorKind: kind,
		Data:      nil,
	})
}

// BadRequestResponse 参数解析失败响应
func BadRequestResponse(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success:   false,
		Message:   message,
		ErrorKind: "BadRequest",
		Data:      nil,
	})
}

// statusForKind 错误种类到HTTP状态码的映射
func statusForKind(kind string) int {
	switch kind {
	case "InvalidFee", "TitleTooLong", "DescriptionTooLong", "NameTooLong",
		"BenefitsTooLong", "InvalidAmount", "InvalidDuration", "InvalidTierRange",
		"AmountBelowMinimum", "AmountAboveMaximum", "InvalidMint", "InvalidTier":
		return http.StatusBadRequest
	case "Unauthorized":
		return http.StatusForbidden
	case "NotFound":
		return http.StatusNotFound
	case "AlreadyExists", "DuplicateBacking", "Conflict",
		"PlatformInactive", "CampaignNotActive", "CampaignFinalized",
		"CampaignNotStarted", "CampaignEnded", "CampaignNotEnded",
		"CampaignNotFinalized", "CampaignAlreadyFinalized",
		"TierFull", "GoalNotReached", "GoalReached",
		"AlreadyRefunded", "NoFundsToWithdraw", "InsufficientCustody":
		return http.StatusConflict
	case "MathOverflow":
		return http.StatusUnprocessableEntity
	case "TransferFailed":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
