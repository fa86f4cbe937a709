package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenBucketAllow 初始容量内的请求应全部放行，超出后拒绝
func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(60, 2)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	// 容量耗尽，1QPS的速率下立即再请求应被拒绝
	assert.False(t, tb.Allow())
}

// TestRetryWithBackoffNonRetryable 不可重试的错误应立即返回
func TestRetryWithBackoffNonRetryable(t *testing.T) {
	tb := NewTokenBucket(600, 10).WithRetryPolicy(time.Millisecond, 3)

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("invalid argument")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "不可重试错误不应触发重试")
}

// TestRetryWithBackoffRetryable 可重试错误应重试到上限
func TestRetryWithBackoffRetryable(t *testing.T) {
	tb := NewTokenBucket(6000, 100).WithRetryPolicy(time.Millisecond, 2)

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("429 Too Many Requests")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "应执行1次初始调用加2次重试")
}
