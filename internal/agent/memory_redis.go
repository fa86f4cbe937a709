package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"job-search-go/internal/constants"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

// RedisChatMemory 实现了 ChatMemory 接口，使用 Redis 作为持久化存储。
// 会话以List存储，每条消息为一个JSON元素，TTL随每次写入刷新。
type RedisChatMemory struct {
	redisClient *redis.Client
	keyPrefix   string        // 避免键冲突的前缀
	ttl         time.Duration // 聊天记录过期时间，为0则不过期
}

// NewRedisChatMemory 创建一个新的 RedisChatMemory 实例。
// redisClient: 一个已连接和配置好的 go-redis 客户端实例。
// ttl: 聊天记录在 Redis 中的可选过期时间。如果为0，则不过期。
func NewRedisChatMemory(redisClient *redis.Client, ttl time.Duration) (*RedisChatMemory, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}

	// Ping Redis to ensure connectivity
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisChatMemory{
		redisClient: redisClient,
		keyPrefix:   constants.KeyChatSession,
		ttl:         ttl,
	}, nil
}

// buildKey 为给定的 sessionId 构建 Redis 键
func (rcm *RedisChatMemory) buildKey(sessionId string) string {
	return rcm.keyPrefix + sessionId
}

// GetHistory 实现 ChatMemory 接口
func (rcm *RedisChatMemory) GetHistory(sessionId string) ([]*schema.Message, error) {
	key := rcm.buildKey(sessionId)
	ctx := context.Background()

	serializedMessages, err := rcm.redisClient.LRange(ctx, key, 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		return []*schema.Message{}, nil // Key 不存在，返回空历史
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get messages from redis for session %s: %w", sessionId, err)
	}

	messages := make([]*schema.Message, 0, len(serializedMessages))
	for _, sm := range serializedMessages {
		var msg schema.Message
		if err := json.Unmarshal([]byte(sm), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message for session %s: %w", sessionId, err)
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

// AddMessage 实现 ChatMemory 接口
func (rcm *RedisChatMemory) AddMessage(sessionId string, message *schema.Message) error {
	if message == nil {
		return fmt.Errorf("cannot add nil message to chat history for session %s", sessionId)
	}
	return rcm.AddMessages(sessionId, []*schema.Message{message})
}

// AddMessages 实现 ChatMemory 接口
func (rcm *RedisChatMemory) AddMessages(sessionId string, messages []*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}
	key := rcm.buildKey(sessionId)
	ctx := context.Background()

	// 使用事务Pipeline保证RPush和Expire的原子性
	pipe := rcm.redisClient.TxPipeline()
	for _, message := range messages {
		if message == nil {
			return fmt.Errorf("cannot add nil message in a batch to chat history for session %s", sessionId)
		}
		serializedMessage, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal message in batch for session %s: %w", sessionId, err)
		}
		pipe.RPush(ctx, key, serializedMessage)
	}

	if rcm.ttl > 0 {
		pipe.Expire(ctx, key, rcm.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add messages in batch to redis for session %s: %w", sessionId, err)
	}
	return nil
}

// ClearHistory 实现 ChatMemory 接口
func (rcm *RedisChatMemory) ClearHistory(sessionId string) error {
	key := rcm.buildKey(sessionId)
	ctx := context.Background()

	if err := rcm.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear chat history from redis for session %s: %w", sessionId, err)
	}
	return nil
}

// Exists 实现 ChatMemory 接口
func (rcm *RedisChatMemory) Exists(sessionId string) (bool, error) {
	key := rcm.buildKey(sessionId)
	ctx := context.Background()

	n, err := rcm.redisClient.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence for %s: %w", sessionId, err)
	}
	return n > 0, nil
}

var _ ChatMemory = (*RedisChatMemory)(nil)
