package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelPaymentEvents = "payment_events"
)

// 事件类型
const (
	EventCheckoutCreated = "checkout_created"
	EventPaymentComplete = "payment_completed"
	EventPaymentFailed   = "payment_failed"
	EventRenewalPending  = "renewal_pending"
)

// PaymentMessage 交易状态变更事件
type PaymentMessage struct {
	Type     string  `json:"type"`
	UserID   int64   `json:"user_id"`
	TranID   string  `json:"tran_id"`
	Plan     string  `json:"plan,omitempty"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	CusEmail string  `json:"cus_email,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// 事件对应的通知文案
var EventMessages = map[string]string{
	EventCheckoutCreated: "支付已发起",
	EventPaymentComplete: "支付成功，套餐已生效",
	EventPaymentFailed:   "支付失败，请重新发起",
	EventRenewalPending:  "订阅已到期续签，等待人工扣款",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishPayment 发布交易事件
func (p *Publisher) PublishPayment(ctx context.Context, msg *PaymentMessage) error {
	if msg.Message == "" && msg.Type != "" {
		if text, ok := EventMessages[msg.Type]; ok {
			msg.Message = text
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal payment message: %w", err)
	}

	return p.client.Publish(ctx, ChannelPaymentEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅交易事件
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*PaymentMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelPaymentEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var paymentMsg PaymentMessage
			if err := json.Unmarshal([]byte(msg.Payload), &paymentMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&paymentMsg)
		}
	}
}
