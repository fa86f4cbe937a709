package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"job-search-go/internal/types"

	"gorm.io/datatypes"
)

// CompanyCache 公司信息缓存表。
// 以小写公司名作为主键实现大小写不敏感的查找，Name保留原始写法用于展示。
type CompanyCache struct {
	NameKey     string         `gorm:"column:name_key;primaryKey;size:191"`
	Name        string         `gorm:"column:name;size:255;not null"`
	Description string         `gorm:"column:description;type:text"`
	WebsiteURL  string         `gorm:"column:website_url;size:512"`
	Logo        string         `gorm:"column:logo;size:512"`
	Industry    string         `gorm:"column:industry;size:128"`
	Location    string         `gorm:"column:location;size:255"`
	TechStack   datatypes.JSON `gorm:"column:tech_stack"`
	LastFetched time.Time      `gorm:"column:last_fetched;index"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName 指定表名
func (CompanyCache) TableName() string {
	return "company_cache"
}

// CompanyNameKey 公司名的规范化主键形式
func CompanyNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ToCompanyInfo 转换为对外的公司信息结构
func (c *CompanyCache) ToCompanyInfo() (*types.CompanyInfo, error) {
	info := &types.CompanyInfo{
		Name:        c.Name,
		Description: c.Description,
		WebsiteURL:  c.WebsiteURL,
		Logo:        c.Logo,
		Industry:    c.Industry,
		Location:    c.Location,
		TechStack:   []string{},
		LastFetched: c.LastFetched,
	}
	if len(c.TechStack) > 0 {
		if err := json.Unmarshal(c.TechStack, &info.TechStack); err != nil {
			return nil, fmt.Errorf("解析tech_stack失败: %w", err)
		}
	}
	return info, nil
}

// CompanyCacheFromInfo 从公司信息构建缓存记录
func CompanyCacheFromInfo(info *types.CompanyInfo) (*CompanyCache, error) {
	techStack, err := StringSliceToJSON(info.TechStack)
	if err != nil {
		return nil, err
	}
	return &CompanyCache{
		NameKey:     CompanyNameKey(info.Name),
		Name:        strings.TrimSpace(info.Name),
		Description: info.Description,
		WebsiteURL:  info.WebsiteURL,
		Logo:        info.Logo,
		Industry:    info.Industry,
		Location:    info.Location,
		TechStack:   techStack,
		LastFetched: info.LastFetched,
	}, nil
}

// StringSliceToJSON 将字符串切片转换为datatypes.JSON
func StringSliceToJSON(values []string) (datatypes.JSON, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("序列化字符串切片失败: %w", err)
	}
	return datatypes.JSON(data), nil
}
