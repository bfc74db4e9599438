package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakib/jobhive_go_server/internal/api/middleware"
	"github.com/sakib/jobhive_go_server/internal/model/dto"
	"github.com/sakib/jobhive_go_server/internal/pkg/gateway"
	"github.com/sakib/jobhive_go_server/internal/pkg/response"
	"github.com/sakib/jobhive_go_server/internal/service"
)

// SignatureHeader 网关回调携带签名的请求头
const SignatureHeader = "X-Gateway-Signature"

type PaymentHandler struct {
	paymentService *service.PaymentService
	signer         gateway.Signer
}

func NewPaymentHandler(paymentService *service.PaymentService, signer gateway.Signer) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		signer:         signer,
	}
}

// CreateCheckout 发起支付
// POST /api/v1/payments/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "金额缺失或非法")
		return
	}

	outcome, err := h.paymentService.CreateCheckout(c.Request.Context(), userID, &req)
	if err != nil {
		switch e := err.(type) {
		case *gateway.GatewayError:
			body := e.Body
			if len(body) > 200 {
				body = body[:200]
			}
			response.ErrorWithData(c, response.CodePaymentFailed, "", gin.H{
				"tran_id":        outcomeTranID(outcome),
				"gateway_status": e.StatusCode,
				"gateway_body":   body,
			})
		default:
			if err == service.ErrInvalidAmount || err == service.ErrInvalidPlan {
				response.ParamError(c, err.Error())
				return
			}
			response.ServerError(c, "支付发起失败")
		}
		return
	}

	// 网关直出 HTML 时原样返回给前端渲染
	if outcome.HTML != "" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(outcome.HTML))
		return
	}

	response.Success(c, dto.CreateCheckoutResponse{
		TranID: outcome.TranID,
		URL:    outcome.RedirectURL,
	})
}

func outcomeTranID(outcome *service.CheckoutOutcome) string {
	if outcome == nil {
		return ""
	}
	return outcome.TranID
}

// ConfirmPayment 网关服务端回调，驱动交易进入终态
// 路由不走用户认证，靠网关密钥签名防伪造，签名不过不碰任何状态
// POST /api/v1/payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "")
		return
	}

	fields := []gateway.Field{
		{Name: "tran_id", Value: req.TranID},
		{Name: "status", Value: req.Status},
	}
	if !h.signer.Verify(fields, c.GetHeader(SignatureHeader)) {
		response.AuthError(c, "签名校验失败")
		return
	}

	tran, err := h.paymentService.ConfirmPayment(c.Request.Context(), req.TranID, req.Status)
	if err != nil {
		response.Error(c, response.CodePaymentFailed, err.Error())
		return
	}

	response.Success(c, gin.H{
		"tran_id": tran.TranID,
		"status":  tran.Status,
	})
}
