package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sakib/jobhive_go_server/config"
	"github.com/sakib/jobhive_go_server/internal/api/handler"
	"github.com/sakib/jobhive_go_server/internal/api/middleware"
)

type Router struct {
	paymentHandler     *handler.PaymentHandler
	entitlementHandler *handler.EntitlementHandler
	renewalHandler     *handler.RenewalHandler
	cfg                *config.Config
}

func NewRouter(
	paymentHandler *handler.PaymentHandler,
	entitlementHandler *handler.EntitlementHandler,
	renewalHandler *handler.RenewalHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		paymentHandler:     paymentHandler,
		entitlementHandler: entitlementHandler,
		renewalHandler:     renewalHandler,
		cfg:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// 网关服务端回调，不走用户认证
		api.POST("/payments/confirm", r.paymentHandler.ConfirmPayment)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 支付
			authenticated.POST("/payments/checkout", r.paymentHandler.CreateCheckout)

			// 权益
			user := authenticated.Group("/user")
			{
				user.GET("/entitlements", r.entitlementHandler.Summary)
				user.GET("/entitlements/:feature", r.entitlementHandler.CheckFeature)
				user.POST("/entitlements/:feature/use", r.entitlementHandler.RecordUse)
			}
		}

		// 定时任务触发的批处理，共享密钥认证
		internal := api.Group("/internal")
		internal.Use(middleware.SharedSecret(r.cfg.Renewal.Secret))
		{
			internal.POST("/renewals/run", r.renewalHandler.Run)
		}
	}

	return engine
}
