package provider

import (
	"context"
	"fmt"

	"job-search-go/internal/types"
)

// unstopCompanies Unstop离线来源的公司轮转表，面向校园和初级岗位
var unstopCompanies = []string{
	"Zoho",
	"Freshworks",
	"Razorpay",
	"Zomato",
	"Swiggy",
	"Paytm",
}

// UnstopProvider Unstop风格的离线生成器，产出实习岗位。
type UnstopProvider struct{}

// NewUnstopProvider 创建Unstop离线来源
func NewUnstopProvider() *UnstopProvider {
	return &UnstopProvider{}
}

// Name 实现 Provider 接口
func (p *UnstopProvider) Name() string {
	return "unstop"
}

// Applies 实现 Provider 接口，Unstop来源对所有地区生效
func (p *UnstopProvider) Applies(location string) bool {
	return true
}

// Search 实现 Provider 接口
func (p *UnstopProvider) Search(ctx context.Context, skills []string, location string, limit int) ([]types.RawJobRecord, error) {
	count := len(unstopCompanies)
	if count > 10 {
		count = 10
	}
	if limit > 0 && limit < count {
		count = limit
	}

	records := make([]types.RawJobRecord, 0, count)
	for i := 0; i < count; i++ {
		company := unstopCompanies[i%len(unstopCompanies)]
		rec := mockRecord(p.Name(), company, "", skills, location, i, types.EmploymentIntern, i%2 == 0)
		rec.JobTitle = fmt.Sprintf("%s Intern", primarySkill(skills))
		records = append(records, rec)
	}
	return records, nil
}
