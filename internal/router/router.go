package router

import (
	"github.com/0xjaqbek/freshFarm/internal/escrow"
	"github.com/0xjaqbek/freshFarm/internal/handler"
	"github.com/gin-gonic/gin"
)

func Setup(engine *escrow.Engine) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "freshfarm-escrow",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		h := handler.NewEscrowHandler(engine)

		// 平台配置路由
		config := v1.Group("/config")
		{
			config.POST("", h.InitConfig)
			config.GET("", h.GetConfig)
		}

		// 活动相关路由
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", h.CreateCampaign)
			campaigns.GET("", h.GetCampaigns)
			campaigns.GET("/:address", h.GetCampaign)
			campaigns.GET("/:address/stats", h.GetCampaignStats)
			campaigns.POST("/:address/tiers", h.CreateTier)
			campaigns.GET("/:address/tiers", h.GetTiers)
			campaigns.POST("/:address/backings", h.BackCampaign)
			campaigns.GET("/:address/backings", h.GetBackings)
			campaigns.GET("/:address/transfers", h.GetTransfers)
			campaigns.POST("/:address/finalize", h.FinalizeCampaign)
			campaigns.POST("/:address/withdraw", h.WithdrawFunds)
			campaigns.POST("/:address/refund", h.ClaimRefund)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Wallet-Address, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
