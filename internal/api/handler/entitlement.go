package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sakib/jobhive_go_server/internal/api/middleware"
	"github.com/sakib/jobhive_go_server/internal/model"
	"github.com/sakib/jobhive_go_server/internal/pkg/response"
	"github.com/sakib/jobhive_go_server/internal/service"
)

type EntitlementHandler struct {
	entitlementService *service.EntitlementService
}

func NewEntitlementHandler(entitlementService *service.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
	}
}

// CheckFeature 单个功能的权益查询，供前端提示用，不记账
// GET /api/v1/user/entitlements/:feature
func (h *EntitlementHandler) CheckFeature(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	role, ok := middleware.GetUserRole(c)
	if !ok || !model.ValidRole(role) {
		response.PermissionError(c, "缺少或非法的角色")
		return
	}

	feature := model.FeatureKey(c.Param("feature"))
	result, err := h.entitlementService.CheckUsage(userID, feature, model.Role(role))
	if err != nil {
		if err == service.ErrWrongRole || err == service.ErrUnknownFeature {
			response.PermissionError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}

// Summary 当前套餐下全部功能的用量概览
// GET /api/v1/user/entitlements
func (h *EntitlementHandler) Summary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	role, ok := middleware.GetUserRole(c)
	if !ok || !model.ValidRole(role) {
		response.PermissionError(c, "缺少或非法的角色")
		return
	}

	summary, err := h.entitlementService.Summary(userID, model.Role(role))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, summary)
}

// RecordUse 功能执行成功后的记账入口
// POST /api/v1/user/entitlements/:feature/use
func (h *EntitlementHandler) RecordUse(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	role, ok := middleware.GetUserRole(c)
	if !ok || !model.ValidRole(role) {
		response.PermissionError(c, "缺少或非法的角色")
		return
	}

	feature := model.FeatureKey(c.Param("feature"))
	if err := h.entitlementService.RecordUse(userID, feature, model.Role(role)); err != nil {
		if err == service.ErrWrongRole || err == service.ErrUnknownFeature {
			response.PermissionError(c, err.Error())
			return
		}
		response.ServerError(c, "记账失败")
		return
	}

	response.Success(c, nil)
}
