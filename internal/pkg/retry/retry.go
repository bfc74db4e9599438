package retry

import (
	"strings"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
)

// Transient 数据访问层可实现该接口显式标记瞬时错误
type Transient interface {
	Transient() bool
}

// 兜底的瞬时错误特征串，仅在错误未实现 Transient 时使用
var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"broken pipe",
	"timeout",
	"timed out",
	"bad connection",
	"connection",
}

type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type Option func(*Options)

func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.MaxAttempts = n
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(o *Options) {
		o.BaseDelay = d
	}
}

// IsTransient 判断错误是否可重试，先看类型标记，再退回子串匹配
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var marker Transient
	if asTransient(err, &marker) {
		return marker.Transient()
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func asTransient(err error, target *Transient) bool {
	for err != nil {
		if t, ok := err.(Transient); ok {
			*target = t
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Do 执行操作，瞬时失败按指数退避重试（1s/2s/4s），非瞬时错误立即返回
// 退避期间同步阻塞调用方，需要超时预算的调用方自行在外层限制
func Do(op func() error, opts ...Option) error {
	options := Options{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxAttempts < 1 {
		options.MaxAttempts = 1
	}

	var err error
	for attempt := 0; attempt < options.MaxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt < options.MaxAttempts-1 {
			time.Sleep(options.BaseDelay * (1 << attempt))
		}
	}
	return err
}
