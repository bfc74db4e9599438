package dto

// EntitlementResult 权益判定结果
// 计次功能 current/limit 为本月调用量，时长功能为订阅月数
type EntitlementResult struct {
	Feature string `json:"feature"`
	Allowed bool   `json:"allowed"`
	Current int    `json:"current"`
	Limit   int    `json:"limit"`
	Message string `json:"message,omitempty"`
}

// EntitlementSummary 当前套餐下全部功能的用量概览
type EntitlementSummary struct {
	Plan     string              `json:"plan"`
	Role     string              `json:"role"`
	Features []EntitlementResult `json:"features"`
}
