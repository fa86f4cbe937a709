package company

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"job-search-go/internal/config"
	"job-search-go/internal/storage"
)

// SightingWorker 消费公司观测事件并写入公司缓存
type SightingWorker struct {
	queue  *storage.RabbitMQ
	db     store
	cache  hotCache
	cfg    *config.RabbitMQConfig
	logger *log.Logger
}

// NewSightingWorker 创建公司观测消费者
func NewSightingWorker(st *storage.Storage, cfg *config.RabbitMQConfig, logger *log.Logger) *SightingWorker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w := &SightingWorker{
		cfg:    cfg,
		logger: logger,
	}
	if st != nil {
		w.queue = st.RabbitMQ
		if st.MySQL != nil {
			w.db = st.MySQL
		}
		if st.Redis != nil {
			w.cache = st.Redis
		}
	}
	return w
}

// Start 启动消费者，关闭返回的通道可停止消费。队列或持久层缺失时不启动。
func (w *SightingWorker) Start() (chan struct{}, error) {
	if w.queue == nil || w.db == nil {
		w.logger.Printf("公司观测消费者未启动: 消息队列或持久层不可用")
		return nil, nil
	}

	prefetch := w.cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = 10
	}

	return w.queue.StartConsumer(w.cfg.CompanySightingQueue, prefetch, w.handle)
}

// handle 处理单条观测消息，返回false时消息重新入队
func (w *SightingWorker) handle(body []byte) bool {
	var msg storage.CompanySightingMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// 消息格式损坏，重入队没有意义
		w.logger.Printf("公司观测消息解析失败，丢弃: %v", err)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ok := true
	for _, sighting := range msg.Companies {
		info := sightingToInfo(sighting)
		if err := w.db.UpsertCompany(ctx, info); err != nil {
			w.logger.Printf("公司缓存写入失败 %q: %v", sighting.Name, err)
			ok = false
			continue
		}
		// 落库成功后刷新热层，保持两层一致
		if w.cache != nil {
			if fresh, err := w.db.GetCompanyByName(ctx, sighting.Name); err == nil {
				if err := w.cache.SetCompanyInfo(ctx, fresh, 0); err != nil {
					w.logger.Printf("公司热层刷新失败 %q: %v", sighting.Name, err)
				}
			}
		}
	}
	return ok
}
