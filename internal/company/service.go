package company

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"job-search-go/internal/constants"
	"job-search-go/internal/storage"
	"job-search-go/internal/types"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// hotCache 公司缓存的热层，由Redis实现
type hotCache interface {
	GetCompanyInfo(ctx context.Context, name string) (*types.CompanyInfo, error)
	SetCompanyInfo(ctx context.Context, info *types.CompanyInfo, ttl time.Duration) error
}

// store 公司缓存的持久层，由MySQL实现
type store interface {
	UpsertCompany(ctx context.Context, info *types.CompanyInfo) error
	GetCompanyByName(ctx context.Context, name string) (*types.CompanyInfo, error)
}

// publisher 公司观测事件的发布端，由RabbitMQ实现
type publisher interface {
	PublishCompanySightings(ctx context.Context, msg *storage.CompanySightingMessage) error
}

// Service 维护公司信息缓存。
// 读路径: Redis -> MySQL -> 占位合成，永远返回可用的公司信息。
// 写路径: 搜索结果中的公司观测批量发布到消息队列异步落库，队列不可用时降级为后台直写。
type Service struct {
	cache    hotCache
	db       store
	queue    publisher
	cacheTTL time.Duration
	logger   *log.Logger
}

// ServiceOption Service的配置选项
type ServiceOption func(*Service)

// WithCacheTTL 设置Redis缓存的过期时长
func WithCacheTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.cacheTTL = d
		}
	}
}

// NewService 创建公司信息服务，任一存储组件都可以缺失
func NewService(st *storage.Storage, logger *log.Logger, options ...ServiceOption) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Service{
		cacheTTL: constants.CompanyCacheDuration,
		logger:   logger,
	}
	if st != nil {
		if st.Redis != nil {
			s.cache = st.Redis
		}
		if st.MySQL != nil {
			s.db = st.MySQL
		}
		if st.RabbitMQ != nil {
			s.queue = st.RabbitMQ
		}
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// GetCompany 返回公司信息，按 Redis -> MySQL -> 占位合成 的顺序查找。
// 永远不返回错误：底层存储全部不可用时直接返回合成的占位信息。
func (s *Service) GetCompany(ctx context.Context, name string) *types.CompanyInfo {
	name = strings.TrimSpace(name)
	if name == "" {
		return placeholderCompany(name)
	}

	if s.cache != nil {
		info, err := s.cache.GetCompanyInfo(ctx, name)
		if err == nil {
			return info
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("公司缓存读取失败 %q: %v", name, err)
		}
	}

	if s.db != nil {
		info, err := s.db.GetCompanyByName(ctx, name)
		if err == nil {
			s.fillHotCache(info)
			return info
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Printf("公司持久层查询失败 %q: %v", name, err)
		}
	}

	info := placeholderCompany(name)
	s.fillHotCache(info)
	return info
}

// fillHotCache 尽力回填Redis缓存，失败只记录日志
func (s *Service) fillHotCache(info *types.CompanyInfo) {
	if s.cache == nil || info == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cache.SetCompanyInfo(ctx, info, s.cacheTTL); err != nil {
			s.logger.Printf("公司缓存回填失败 %q: %v", info.Name, err)
		}
	}()
}

// RecordSightings 记录一次搜索中出现的公司。
// 同一请求内按公司名去重后异步处理，绝不阻塞或影响调用方。
func (s *Service) RecordSightings(jobs []types.NormalizedJob, location string) {
	sightings := SightingsFromJobs(jobs, location)
	if len(sightings) == 0 {
		return
	}

	msg := &storage.CompanySightingMessage{
		Companies:  sightings,
		Location:   location,
		ObservedAt: time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.queue != nil {
			if err := s.queue.PublishCompanySightings(ctx, msg); err == nil {
				return
			} else {
				s.logger.Printf("公司观测事件发布失败，降级为直写: %v", err)
			}
		}
		s.upsertSightings(ctx, sightings)
	}()
}

// upsertSightings 将观测记录直接写入持久层
func (s *Service) upsertSightings(ctx context.Context, sightings []types.CompanySighting) {
	if s.db == nil {
		return
	}
	for _, sighting := range sightings {
		if err := s.db.UpsertCompany(ctx, sightingToInfo(sighting)); err != nil {
			s.logger.Printf("公司缓存写入失败 %q: %v", sighting.Name, err)
		}
	}
}

// SightingsFromJobs 从职位列表提取公司观测记录，按公司名去重（保留首次出现的信息）
func SightingsFromJobs(jobs []types.NormalizedJob, location string) []types.CompanySighting {
	seen := make(map[string]struct{}, len(jobs))
	sightings := make([]types.CompanySighting, 0, len(jobs))

	for _, job := range jobs {
		name := strings.TrimSpace(job.Company)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		sightings = append(sightings, types.CompanySighting{
			Name:     name,
			Logo:     job.CompanyLogo,
			Location: location,
		})
	}
	return sightings
}

// sightingToInfo 观测记录转为缓存写入结构
func sightingToInfo(sighting types.CompanySighting) *types.CompanyInfo {
	return &types.CompanyInfo{
		Name:        sighting.Name,
		Description: sighting.Description,
		WebsiteURL:  sighting.WebsiteURL,
		Logo:        sighting.Logo,
		Location:    sighting.Location,
		LastFetched: time.Now(),
	}
}

// placeholderCompany 缓存完全未命中时合成的占位公司信息
func placeholderCompany(name string) *types.CompanyInfo {
	display := strings.TrimSpace(name)
	if display == "" {
		display = "Unknown Company"
	}
	return &types.CompanyInfo{
		Name:        display,
		Description: fmt.Sprintf("%s is a technology company focused on innovation and growth, offering exciting career opportunities across multiple domains.", display),
		WebsiteURL:  fmt.Sprintf("https://www.%s.com", companySlug(display)),
		Industry:    "Technology",
		TechStack:   []string{},
		LastFetched: time.Now(),
		Placeholder: true,
	}
}

// companySlug 公司名转为域名友好的slug
func companySlug(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "")
	if slug == "" {
		slug = "example"
	}
	return slug
}
