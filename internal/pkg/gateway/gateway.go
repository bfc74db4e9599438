package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GatewayError 支付网关返回非 2xx 时的结构化错误
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, body)
}

// LineItem 订单行项目，base64(JSON) 后随表单发送
type LineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CheckoutRequest 发起托管收银台所需的全部字段
type CheckoutRequest struct {
	TranID      string
	Amount      float64
	Currency    string
	Items       []LineItem
	CusName     string
	CusEmail    string
	CusPhone    string
	SuccessURL  string
	CancelURL   string
	ContinueURL string
}

// CheckoutResult 两种成功形态：跳转 URL 或网关直出的 HTML
type CheckoutResult struct {
	RedirectURL string
	HTML        string
}

type Config struct {
	BaseURL   string
	StoreID   string
	SecretKey string
	Timeout   time.Duration
}

// Client 托管收银台客户端，每次结账只发一次外部请求，从不自动重试
type Client struct {
	cfg    Config
	signer Signer
	httpc  *http.Client
}

func NewClient(cfg Config, signer Signer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		signer: signer,
		httpc: &http.Client{
			Timeout: timeout,
			// 3xx 由调用方处理，不自动跟随
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// buildFields 组装规范字段序列，空值字段一律不发送也不参与签名
func (c *Client) buildFields(req *CheckoutRequest) ([]Field, error) {
	items := ""
	if len(req.Items) > 0 {
		data, err := json.Marshal(req.Items)
		if err != nil {
			return nil, fmt.Errorf("marshal line items: %w", err)
		}
		items = base64.StdEncoding.EncodeToString(data)
	}

	ordered := []Field{
		{"store_id", c.cfg.StoreID},
		{"tran_id", req.TranID},
		{"amount", strconv.FormatFloat(req.Amount, 'f', 2, 64)},
		{"currency", req.Currency},
		{"items", items},
		{"cus_name", req.CusName},
		{"cus_email", req.CusEmail},
		{"cus_phone", req.CusPhone},
		{"success_url", req.SuccessURL},
		{"cancel_url", req.CancelURL},
		{"continue_url", req.ContinueURL},
	}

	fields := ordered[:0:0]
	for _, f := range ordered {
		if f.Value == "" {
			continue
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// CreateCheckout 表单 POST 到托管收银台
// 3xx 返回跳转地址，2xx 返回 HTML 正文，其余状态视为该笔交易的终态失败
func (c *Client) CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	fields, err := c.buildFields(req)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	for _, f := range fields {
		form.Set(f.Name, f.Value)
	}
	form.Set("signature", c.signer.Sign(fields))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		loc := resp.Header.Get("Location")
		if loc == "" {
			return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return &CheckoutResult{RedirectURL: loc}, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &CheckoutResult{HTML: string(body)}, nil
	default:
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}
