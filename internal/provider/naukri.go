package provider

import (
	"context"
	"math/rand"

	"job-search-go/internal/types"
)

// naukriCompanies Naukri离线来源的公司轮转表，以印度IT服务公司为主
var naukriCompanies = []string{
	"Infosys",
	"Tata Consultancy Services",
	"Wipro",
	"HCL Technologies",
	"Tech Mahindra",
	"Cognizant",
	"Capgemini India",
	"Mphasis",
}

// NaukriProvider Naukri风格的离线职位生成器，只覆盖印度地区。
// 随机数使用线程安全的包级函数，单个实例可被并发调用。
type NaukriProvider struct{}

// NewNaukriProvider 创建Naukri离线来源
func NewNaukriProvider() *NaukriProvider {
	return &NaukriProvider{}
}

// Name 实现 Provider 接口
func (p *NaukriProvider) Name() string {
	return "naukri"
}

// Applies 实现 Provider 接口，仅印度地区生效
func (p *NaukriProvider) Applies(location string) bool {
	return isIndiaLocation(location)
}

// Search 实现 Provider 接口
func (p *NaukriProvider) Search(ctx context.Context, skills []string, location string, limit int) ([]types.RawJobRecord, error) {
	count := 10 + rand.Intn(6) // 10-15条
	if limit > 0 && limit < count {
		count = limit
	}

	records := make([]types.RawJobRecord, 0, count)
	for i := 0; i < count; i++ {
		company := naukriCompanies[i%len(naukriCompanies)]
		records = append(records, mockRecord(p.Name(), company, "", skills, location, i, types.EmploymentFullTime, false))
	}
	return records, nil
}
