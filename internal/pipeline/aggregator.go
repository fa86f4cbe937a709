package pipeline

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"job-search-go/internal/constants"
	"job-search-go/internal/provider"
	"job-search-go/internal/types"
)

// Aggregator 并发调用所有适用来源，汇总、格式化并去重职位记录。
// 来源失败只影响自身的记录，聚合本身永远成功。
type Aggregator struct {
	registry        *provider.Registry
	providerTimeout time.Duration
	maxPerProvider  int
	logger          *log.Logger
}

// AggregatorOption Aggregator的配置选项
type AggregatorOption func(*Aggregator)

// WithProviderTimeout 设置单来源超时
func WithProviderTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.providerTimeout = d
		}
	}
}

// WithMaxPerProvider 设置单来源的记录数上限
func WithMaxPerProvider(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxPerProvider = n
		}
	}
}

// NewAggregator 创建聚合器实例
func NewAggregator(registry *provider.Registry, logger *log.Logger, options ...AggregatorOption) *Aggregator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	a := &Aggregator{
		registry:        registry,
		providerTimeout: constants.DefaultProviderTimeout,
		maxPerProvider:  constants.MaxPerProviderResults,
		logger:          logger,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Collect 并发检索所有适用来源并返回去重后的统一职位列表。
// 结果按来源注册顺序拼接后再去重，保证冲突记录由高优先级来源胜出，
// 与各来源的完成先后无关。
func (a *Aggregator) Collect(ctx context.Context, skills []string, location string) []types.NormalizedJob {
	providers := a.registry.Applicable(location)
	if len(providers) == 0 {
		return []types.NormalizedJob{}
	}

	formatter := NewFormatter(skills, location)

	// 按来源下标收集，保持优先级顺序
	results := make([][]types.NormalizedJob, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(idx int, p provider.Provider) {
			defer wg.Done()

			searchCtx, cancel := context.WithTimeout(ctx, a.providerTimeout)
			defer cancel()

			records, err := p.Search(searchCtx, skills, location, a.maxPerProvider)
			if err != nil {
				a.logger.Printf("来源 %s 检索失败，跳过: %v", p.Name(), err)
				return
			}
			results[idx] = formatter.FormatAll(records, p.Name())
			a.logger.Printf("来源 %s 返回 %d 条记录", p.Name(), len(records))
		}(i, p)
	}
	wg.Wait()

	merged := make([]types.NormalizedJob, 0, len(providers)*a.maxPerProvider)
	for _, jobs := range results {
		merged = append(merged, jobs...)
	}

	deduped := Deduplicate(merged)
	a.logger.Printf("聚合完成: %d 条记录去重后剩余 %d 条", len(merged), len(deduped))
	return deduped
}
