package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sakib/jobhive_go_server/internal/model"
	"github.com/sakib/jobhive_go_server/internal/pkg/response"
	"github.com/sakib/jobhive_go_server/internal/service"
)

// RequireFeature 功能准入中间件，放在计量功能的路由前
// 只做检查不记账，功能执行成功后由 handler 调用 RecordUse
func RequireFeature(entitlementService *service.EntitlementService, feature model.FeatureKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		role, ok := GetUserRole(c)
		if !ok || !model.ValidRole(role) {
			response.PermissionError(c, "缺少或非法的角色")
			c.Abort()
			return
		}

		result, err := entitlementService.CheckUsage(userID, feature, model.Role(role))
		if err != nil {
			if err == service.ErrWrongRole || err == service.ErrUnknownFeature {
				response.PermissionError(c, err.Error())
			} else {
				response.ServerError(c, "权益检查失败")
			}
			c.Abort()
			return
		}

		if !result.Allowed {
			if result.Limit == 0 {
				response.PlanError(c, result.Message)
			} else {
				response.QuotaError(c, result.Message)
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
