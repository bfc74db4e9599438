package tranid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	prefix       = "TXN"
	suffixLen    = 6
	suffixChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	timeLayout   = "20060102150405"
)

// New 生成对外交易号：时间有序前缀 + 毫秒 + 短随机后缀
// 格式 TXN<yyyyMMddHHmmss><ms><6位随机>，按字符串排序即按时间排序
func New() string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s%s%03d%s",
		prefix,
		now.Format(timeLayout),
		now.Nanosecond()/1e6,
		randomSuffix(suffixLen),
	)
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(suffixChars)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 不可用时退化为时间噪声
			buf[i] = suffixChars[time.Now().Nanosecond()%len(suffixChars)]
			continue
		}
		buf[i] = suffixChars[idx.Int64()]
	}
	return string(buf)
}
