package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/sakib/jobhive_go_server/internal/pkg/response"
	"github.com/sakib/jobhive_go_server/internal/service"
)

type RenewalHandler struct {
	paymentService *service.PaymentService
}

func NewRenewalHandler(paymentService *service.PaymentService) *RenewalHandler {
	return &RenewalHandler{
		paymentService: paymentService,
	}
}

// Run 续费批处理，由外部定时任务触发，共享密钥认证在路由层
// POST /api/v1/internal/renewals/run
func (h *RenewalHandler) Run(c *gin.Context) {
	result, err := h.paymentService.RenewDue(c.Request.Context())
	if err != nil {
		log.Printf("Renewal batch failed: %v", err)
		response.ServerError(c, "续费批处理失败")
		return
	}

	response.Success(c, result)
}
