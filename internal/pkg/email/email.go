package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sakib/jobhive_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendPaymentReceipt 发送支付成功回执
func (s *Service) SendPaymentReceipt(to, tranID, plan string, amount float64, currency string) error {
	subject := "支付成功 - JobHive 求职平台"
	planLine := ""
	if plan != "" {
		planLine = fmt.Sprintf("<p>已开通套餐：<strong>%s</strong></p>", plan)
	}
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">支付成功</h2>
        <p>您好，</p>
        <p>您的支付已完成，交易号：</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 18px; font-weight: bold; margin: 20px 0;">
            %s
        </div>
        <p>金额：%.2f %s</p>
        %s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, tranID, amount, currency, planLine)

	return s.sendHTML(to, subject, body)
}

// SendPaymentFailed 发送支付失败通知
func (s *Service) SendPaymentFailed(to, tranID string) error {
	subject := "支付未完成 - JobHive 求职平台"
	body := fmt.Sprintf(`交易 %s 未能完成支付。

该笔交易已关闭，如需继续购买请重新发起支付，系统会生成新的交易号。

此邮件由系统自动发送，请勿回复。`, tranID)

	return s.sendPlain(to, subject, body)
}

// SendRenewalNotice 发送续费待扣款通知
func (s *Service) SendRenewalNotice(to, tranID, plan string) error {
	subject := "订阅续期提醒 - JobHive 求职平台"
	body := fmt.Sprintf(`您的 %s 套餐已到期并自动续签，新交易号为 %s。

本次续费尚未扣款，我们会在人工确认后完成收款，期间套餐权益保持可用。

此邮件由系统自动发送，请勿回复。`, plan, tranID)

	return s.sendPlain(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}

// sendPlain 发送纯文本邮件
func (s *Service) sendPlain(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/plain; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
