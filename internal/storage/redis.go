package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"job-search-go/internal/config"
	"job-search-go/internal/constants"
	"job-search-go/internal/tracing"
	"job-search-go/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("job-search-go/storage/redis")

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		// 重试设置
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		// 连接生命周期
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// companyCacheKey 公司缓存键，公司名统一小写
func companyCacheKey(name string) string {
	return fmt.Sprintf(constants.KeyCompanyCache, strings.ToLower(strings.TrimSpace(name)))
}

// GetCompanyInfo 从Redis读取公司缓存。
// 未命中返回ErrNotFound，缓存内容损坏视同未命中。
func (r *Redis) GetCompanyInfo(ctx context.Context, name string) (*types.CompanyInfo, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis client is not initialized")
	}

	key := companyCacheKey(name)
	ctx, span := redisTracer.Start(ctx, "Redis.GetCompanyInfo",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("company.name", name),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		))
	defer span.End()

	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetStatus(codes.Ok, "cache miss")
			return nil, ErrNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("读取公司缓存失败: %w", err)
	}

	var info types.CompanyInfo
	if err := json.Unmarshal(data, &info); err != nil {
		span.SetAttributes(attribute.String("error.type", "corrupt_cache"))
		span.SetStatus(codes.Ok, "corrupt cache entry treated as miss")
		return nil, ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return &info, nil
}

// SetCompanyInfo 写入公司缓存，过期时间由调用方指定，0则使用默认值
func (r *Redis) SetCompanyInfo(ctx context.Context, info *types.CompanyInfo, ttl time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	if info == nil || strings.TrimSpace(info.Name) == "" {
		return fmt.Errorf("公司名不能为空")
	}
	if ttl <= 0 {
		ttl = constants.CompanyCacheDuration
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("序列化公司信息失败: %w", err)
	}

	if err := r.Client.Set(ctx, companyCacheKey(info.Name), data, ttl).Err(); err != nil {
		return fmt.Errorf("写入公司缓存失败: %w", err)
	}
	return nil
}
