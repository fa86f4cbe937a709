package provider

import (
	"context"
	"sync"
	"testing"

	"job-search-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCountryCodeForLocation 验证地区到国家代码的映射
func TestCountryCodeForLocation(t *testing.T) {
	cases := map[string]string{
		"Mysore":         "in",
		"Bangalore":      "in",
		"Karnataka":      "in",
		"London, UK":     "gb",
		"Toronto":        "ca",
		"Sydney":         "au",
		"Singapore":      "sg",
		"Dubai":          "ae",
		"United States":  "us",
		"San Francisco":  "us",
		"":               "us",
		"Remote Anywhere": "us",
	}
	for loc, want := range cases {
		assert.Equal(t, want, CountryCodeForLocation(loc), "location: %q", loc)
	}
}

// TestLocalIndexMysoreCompanies Mysore搜索必须返回本地公司表中的公司
func TestLocalIndexMysoreCompanies(t *testing.T) {
	p := NewLocalIndexProvider()
	records, err := p.Search(context.Background(), []string{"React", "Node.js"}, "Mysore", 15)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	expected := map[string]bool{
		"Infosys": true, "Wipro": true, "TCS": true, "Tech Mahindra": true,
		"HCL Technologies": true, "L&T Infotech": true, "Mindtree": true, "Mphasis": true,
	}
	for _, rec := range records {
		assert.True(t, expected[rec.EmployerName], "公司 %q 不在Mysore公司表中", rec.EmployerName)
	}
}

// TestLocalIndexGlobalFallback 未知地区应使用全球兜底公司表
func TestLocalIndexGlobalFallback(t *testing.T) {
	companies := companiesForLocation("Reykjavik")
	assert.Equal(t, globalCompanies, companies)

	companies = companiesForLocation("Kochi, India")
	assert.Equal(t, indiaCompanies, companies)
}

// TestOfflineProvidersConcurrentSearch 单个实例被多个请求并发调用时必须安全。
// 在 -race 下运行可检测生成器内部的共享状态竞争。
func TestOfflineProvidersConcurrentSearch(t *testing.T) {
	providers := []Provider{
		NewLocalIndexProvider(),
		NewNaukriProvider(),
	}

	var wg sync.WaitGroup
	for _, p := range providers {
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(p Provider) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					records, err := p.Search(context.Background(), []string{"Go"}, "Mysore", 15)
					assert.NoError(t, err)
					assert.NotEmpty(t, records)
					assert.LessOrEqual(t, len(records), 15)
				}
			}(p)
		}
	}
	wg.Wait()
}

// TestNaukriAppliesOnlyInIndia Naukri来源只覆盖印度地区
func TestNaukriAppliesOnlyInIndia(t *testing.T) {
	p := NewNaukriProvider()
	assert.True(t, p.Applies("Mysore"))
	assert.True(t, p.Applies("Bangalore, India"))
	assert.False(t, p.Applies("New York"))
	assert.False(t, p.Applies("London"))
}

// TestUnstopGeneratesInternRoles Unstop来源全部产出实习岗位
func TestUnstopGeneratesInternRoles(t *testing.T) {
	p := NewUnstopProvider()
	records, err := p.Search(context.Background(), []string{"Python"}, "India", 10)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for _, rec := range records {
		assert.Equal(t, types.EmploymentIntern, rec.JobEmploymentType)
		assert.Contains(t, rec.JobTitle, "Intern")
	}
}

// TestLinkedInRespectsLimit 生成数量不超过limit
func TestLinkedInRespectsLimit(t *testing.T) {
	p := NewLinkedInProvider()
	records, err := p.Search(context.Background(), []string{"Go"}, "United States", 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, types.EmploymentFullTime, rec.JobEmploymentType)
	}
}

// TestRegistryApplicableKeepsOrder 注册顺序决定返回顺序
func TestRegistryApplicableKeepsOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewLinkedInProvider())
	reg.Register(NewNaukriProvider())
	reg.Register(NewLocalIndexProvider())

	applicable := reg.Applicable("Mysore")
	require.Len(t, applicable, 3)
	assert.Equal(t, "linkedin", applicable[0].Name())
	assert.Equal(t, "naukri", applicable[1].Name())
	assert.Equal(t, "localindex", applicable[2].Name())

	// 非印度地区时Naukri被过滤
	applicable = reg.Applicable("Berlin")
	require.Len(t, applicable, 2)
	assert.Equal(t, "linkedin", applicable[0].Name())
	assert.Equal(t, "localindex", applicable[1].Name())
}
