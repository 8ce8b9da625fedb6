package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	orderNumberChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	orderNumberSuffix = 6
)

// GenerateOrderNumber returns prefix-YYYYMMDD-XXXXXX. Uniqueness is left to
// the orders.order_number index; callers retry on conflict.
func GenerateOrderNumber(prefix string, now time.Time) string {
	suffix := make([]byte, orderNumberSuffix)
	for i := range suffix {
		suffix[i] = orderNumberChars[rand.IntN(len(orderNumberChars))]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix)
}
