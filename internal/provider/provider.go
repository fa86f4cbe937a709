package provider

import (
	"context"

	"job-search-go/internal/types"
)

// Provider 定义了职位来源适配器的接口。
// 实现方可以是真实的外部API客户端，也可以是离线生成器。
type Provider interface {
	// Name 返回来源标识，会写入NormalizedJob.Source
	Name() string

	// Applies 判断该来源是否适用于给定地区。
	// 例如Naukri只覆盖印度地区的搜索。
	Applies(location string) bool

	// Search 按技能和地区检索职位。
	// limit为单来源的记录数上限；返回错误时由聚合器兜底，该来源记录为空。
	Search(ctx context.Context, skills []string, location string, limit int) ([]types.RawJobRecord, error)
}

// Registry 按优先级保存所有来源适配器。
// 注册顺序即去重时的胜出顺序：先注册的来源在company+title冲突时保留。
type Registry struct {
	providers []Provider
}

// NewRegistry 创建一个空的来源注册表
func NewRegistry() *Registry {
	return &Registry{providers: make([]Provider, 0, 5)}
}

// Register 追加一个来源适配器，顺序决定优先级
func (r *Registry) Register(p Provider) {
	if p == nil {
		return
	}
	r.providers = append(r.providers, p)
}

// Applicable 返回适用于给定地区的来源，保持注册顺序
func (r *Registry) Applicable(location string) []Provider {
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Applies(location) {
			out = append(out, p)
		}
	}
	return out
}

// All 返回全部已注册来源
func (r *Registry) All() []Provider {
	return r.providers
}
