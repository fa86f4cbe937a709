package provider

import (
	"context"

	"job-search-go/internal/types"
)

// linkedInCompanies LinkedIn离线来源的公司轮转表
var linkedInCompanies = []string{
	"Microsoft",
	"Google",
	"Amazon",
	"Accenture",
	"Deloitte",
	"IBM",
	"Oracle",
}

// LinkedInProvider LinkedIn风格的离线职位生成器。
// 全部生成全职岗位，发布日期逐条后移一天。
type LinkedInProvider struct{}

// NewLinkedInProvider 创建LinkedIn离线来源
func NewLinkedInProvider() *LinkedInProvider {
	return &LinkedInProvider{}
}

// Name 实现 Provider 接口
func (p *LinkedInProvider) Name() string {
	return "linkedin"
}

// Applies 实现 Provider 接口，LinkedIn来源对所有地区生效
func (p *LinkedInProvider) Applies(location string) bool {
	return true
}

// Search 实现 Provider 接口
func (p *LinkedInProvider) Search(ctx context.Context, skills []string, location string, limit int) ([]types.RawJobRecord, error) {
	count := len(linkedInCompanies)
	if limit > 0 && limit < count {
		count = limit
	}

	records := make([]types.RawJobRecord, 0, count)
	for i := 0; i < count; i++ {
		company := linkedInCompanies[i%len(linkedInCompanies)]
		rec := mockRecord(p.Name(), company, "", skills, location, i, types.EmploymentFullTime, false)
		rec.JobPostedAt = postedDaysAgo(i)
		records = append(records, rec)
	}
	return records, nil
}
