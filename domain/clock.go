package domain

import (
	"sync/atomic"
	"time"
)

var lastTimestamp int64

// Now returns a strictly increasing unix-nano timestamp, so two mutations
// applied within the clock's resolution still order.
func Now() int64 {
	for {
		now := time.Now().UnixNano()
		last := atomic.LoadInt64(&lastTimestamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return now
		}
	}
}
