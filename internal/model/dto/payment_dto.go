package dto

// CreateCheckoutRequest 发起支付请求
type CreateCheckoutRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Plan       string  `json:"plan"`
	CusName    string  `json:"cus_name"`
	CusEmail   string  `json:"cus_email"`
	SuccessURL string  `json:"continue_success_url"`
	CancelURL  string  `json:"cancel_url"`
}

// CreateCheckoutResponse 支付跳转信息
type CreateCheckoutResponse struct {
	TranID string `json:"tran_id"`
	URL    string `json:"url"`
}

// ConfirmPaymentRequest 网关回调确认
type ConfirmPaymentRequest struct {
	TranID string `json:"tran_id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// RenewalItem 续费批处理生成的后继交易
type RenewalItem struct {
	TranID     string  `json:"tran_id"`
	UserID     int64   `json:"user_id"`
	Plan       string  `json:"plan"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"` // pending_manual_payment
	SourceTran string  `json:"source_tran_id"`
}

// RenewalResult 续费批处理结果
type RenewalResult struct {
	Processed int           `json:"processed"`
	Renewals  []RenewalItem `json:"renewals"`
}
