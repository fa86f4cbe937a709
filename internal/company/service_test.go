package company

import (
	"context"
	"testing"
	"time"

	"job-search-go/internal/storage"
	"job-search-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeHotCache 内存实现的热层
type fakeHotCache struct {
	entries map[string]*types.CompanyInfo
}

func newFakeHotCache() *fakeHotCache {
	return &fakeHotCache{entries: make(map[string]*types.CompanyInfo)}
}

func (f *fakeHotCache) GetCompanyInfo(ctx context.Context, name string) (*types.CompanyInfo, error) {
	if info, ok := f.entries[name]; ok {
		return info, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeHotCache) SetCompanyInfo(ctx context.Context, info *types.CompanyInfo, ttl time.Duration) error {
	f.entries[info.Name] = info
	return nil
}

// fakeStore 内存实现的持久层
type fakeStore struct {
	entries map[string]*types.CompanyInfo
	upserts []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*types.CompanyInfo)}
}

func (f *fakeStore) UpsertCompany(ctx context.Context, info *types.CompanyInfo) error {
	f.upserts = append(f.upserts, info.Name)
	f.entries[info.Name] = info
	return nil
}

func (f *fakeStore) GetCompanyByName(ctx context.Context, name string) (*types.CompanyInfo, error) {
	if info, ok := f.entries[name]; ok {
		return info, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// TestGetCompanyPlaceholder 缓存完全未命中时合成占位信息而不是报错
func TestGetCompanyPlaceholder(t *testing.T) {
	s := NewService(nil, nil)

	info := s.GetCompany(context.Background(), "Acme Robotics")
	require.NotNil(t, info)
	assert.Equal(t, "Acme Robotics", info.Name)
	assert.True(t, info.Placeholder)
	assert.Equal(t, "https://www.acmerobotics.com", info.WebsiteURL)
	assert.Equal(t, "Technology", info.Industry)
	assert.Contains(t, info.Description, "Acme Robotics")
	assert.False(t, info.LastFetched.IsZero())
}

// TestGetCompanyHotCacheHit Redis命中时直接返回
func TestGetCompanyHotCacheHit(t *testing.T) {
	cache := newFakeHotCache()
	cache.entries["Infosys"] = &types.CompanyInfo{Name: "Infosys", Industry: "IT Services"}

	s := NewService(nil, nil)
	s.cache = cache

	info := s.GetCompany(context.Background(), "Infosys")
	require.NotNil(t, info)
	assert.Equal(t, "IT Services", info.Industry)
	assert.False(t, info.Placeholder)
}

// TestGetCompanyStoreFallback Redis未命中时回源MySQL
func TestGetCompanyStoreFallback(t *testing.T) {
	db := newFakeStore()
	db.entries["Wipro"] = &types.CompanyInfo{Name: "Wipro", Industry: "IT Services"}

	s := NewService(nil, nil)
	s.cache = newFakeHotCache()
	s.db = db

	info := s.GetCompany(context.Background(), "Wipro")
	require.NotNil(t, info)
	assert.Equal(t, "IT Services", info.Industry)
	assert.False(t, info.Placeholder)
}

// TestSightingsFromJobsDedup 同一请求内的公司观测按名称去重
func TestSightingsFromJobsDedup(t *testing.T) {
	jobs := []types.NormalizedJob{
		{Company: "Infosys", CompanyLogo: "https://logo/infosys.png"},
		{Company: "INFOSYS"},
		{Company: "Wipro"},
		{Company: "  "},
	}

	sightings := SightingsFromJobs(jobs, "Mysore")
	require.Len(t, sightings, 2)
	assert.Equal(t, "Infosys", sightings[0].Name)
	assert.Equal(t, "https://logo/infosys.png", sightings[0].Logo, "重复公司应保留首次出现的信息")
	assert.Equal(t, "Mysore", sightings[0].Location)
	assert.Equal(t, "Wipro", sightings[1].Name)
}

// TestCompanySlug 域名slug生成
func TestCompanySlug(t *testing.T) {
	assert.Equal(t, "lntinfotech", companySlug("L&T Infotech"))
	assert.Equal(t, "techmahindra", companySlug("Tech Mahindra"))
	assert.Equal(t, "example", companySlug("!!!"))
}

// TestUpsertSightingsDirectWrite 队列缺失时观测记录直写持久层
func TestUpsertSightingsDirectWrite(t *testing.T) {
	db := newFakeStore()
	s := NewService(nil, nil)
	s.db = db

	s.upsertSightings(context.Background(), []types.CompanySighting{
		{Name: "TCS"},
		{Name: "HCL Technologies"},
	})

	assert.Equal(t, []string{"TCS", "HCL Technologies"}, db.upserts)
}
