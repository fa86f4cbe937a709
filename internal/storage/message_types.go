package storage

import (
	"time"

	"job-search-go/internal/types"
)

// CompanySightingMessage 一次搜索中观察到的公司批次，经消息队列异步写入公司缓存
type CompanySightingMessage struct {
	Companies  []types.CompanySighting `json:"companies"`
	Location   string                  `json:"location,omitempty"`
	ObservedAt time.Time               `json:"observed_at"`
}
