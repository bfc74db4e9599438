package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Field 按发送顺序排列的签名字段
type Field struct {
	Name  string
	Value string
}

// Signer 网关签名方案，具体算法由支付方约定，可整体替换
// 约束：只对实际发送的字段、按发送顺序签名
type Signer interface {
	Sign(fields []Field) string
	// Verify 校验对方携带的签名，入站回调必须先过这里
	Verify(fields []Field, signature string) bool
}

// HMACSigner HMAC-SHA256 签名，对 name=value 以 & 连接后的串取十六进制摘要
type HMACSigner struct {
	secret string
}

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: secret}
}

func (s *HMACSigner) Sign(fields []Field) string {
	pairs := make([]string, 0, len(fields))
	for _, f := range fields {
		pairs = append(pairs, f.Name+"="+f.Value)
	}
	payload := strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify 恒定时间比较，大小写不敏感
func (s *HMACSigner) Verify(fields []Field, signature string) bool {
	if signature == "" {
		return false
	}
	expected := s.Sign(fields)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
