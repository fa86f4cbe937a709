package provider

import (
	"context"
	"math/rand"
	"strings"

	"job-search-go/internal/types"
)

// cityCompanies 按城市关键词索引的本地公司表。
// 匹配按子串进行，命中第一个关键词即使用对应的公司列表。
var cityCompanies = []struct {
	keyword   string
	companies []string
}{
	{"mysore", []string{
		"Infosys", "Wipro", "TCS", "Tech Mahindra",
		"HCL Technologies", "L&T Infotech", "Mindtree", "Mphasis",
	}},
	{"mysuru", []string{
		"Infosys", "Wipro", "TCS", "Tech Mahindra",
		"HCL Technologies", "L&T Infotech", "Mindtree", "Mphasis",
	}},
	{"bangalore", []string{
		"Flipkart", "Amazon India", "Google India", "Microsoft India",
		"Infosys", "Wipro", "Swiggy", "Razorpay",
	}},
	{"bengaluru", []string{
		"Flipkart", "Amazon India", "Google India", "Microsoft India",
		"Infosys", "Wipro", "Swiggy", "Razorpay",
	}},
	{"mumbai", []string{
		"Reliance Jio", "Tata Consultancy Services", "JPMorgan Chase India",
		"Morgan Stanley India", "LTI", "Nomura",
	}},
	{"hyderabad", []string{
		"Microsoft IDC", "Amazon Hyderabad", "Deloitte India",
		"Salesforce India", "ServiceNow India", "Qualcomm India",
	}},
	{"chennai", []string{
		"Zoho", "Freshworks", "PayPal India", "Cognizant",
		"Ford Business Solutions", "Athenahealth",
	}},
	{"pune", []string{
		"Persistent Systems", "Infosys Pune", "TCS Pune",
		"Mastercard India", "Veritas", "Synechron",
	}},
	{"delhi", []string{
		"Paytm", "Zomato", "MakeMyTrip", "HCL Technologies",
		"Adobe India", "American Express India",
	}},
}

// indiaCompanies 印度地区的兜底公司表
var indiaCompanies = []string{
	"Infosys", "Tata Consultancy Services", "Wipro", "HCL Technologies",
	"Tech Mahindra", "Flipkart", "Zoho", "Freshworks",
}

// globalCompanies 其他地区的兜底公司表
var globalCompanies = []string{
	"Google", "Microsoft", "Amazon", "Apple", "Meta",
	"Netflix", "Stripe", "Airbnb",
}

// companiesForLocation 返回地区对应的公司表。
// 顺序：城市表 > 印度兜底表 > 全球兜底表。
func companiesForLocation(location string) []string {
	loc := strings.ToLower(strings.TrimSpace(location))
	for _, entry := range cityCompanies {
		if strings.Contains(loc, entry.keyword) {
			return entry.companies
		}
	}
	if isIndiaLocation(location) {
		return indiaCompanies
	}
	return globalCompanies
}

// LocalIndexProvider 基于本地公司表的离线职位生成器。
// 没有任何外部依赖，保证任何地区的搜索都有结果。
// 同一个实例会被多个请求并发调用，随机数使用线程安全的包级函数。
type LocalIndexProvider struct{}

// NewLocalIndexProvider 创建本地索引来源
func NewLocalIndexProvider() *LocalIndexProvider {
	return &LocalIndexProvider{}
}

// Name 实现 Provider 接口
func (p *LocalIndexProvider) Name() string {
	return "localindex"
}

// Applies 实现 Provider 接口，本地索引对所有地区生效
func (p *LocalIndexProvider) Applies(location string) bool {
	return true
}

// Search 实现 Provider 接口
func (p *LocalIndexProvider) Search(ctx context.Context, skills []string, location string, limit int) ([]types.RawJobRecord, error) {
	companies := companiesForLocation(location)

	count := 10 + rand.Intn(6) // 10-15条
	if limit > 0 && limit < count {
		count = limit
	}

	records := make([]types.RawJobRecord, 0, count)
	for i := 0; i < count; i++ {
		company := companies[i%len(companies)]
		rec := mockRecord(p.Name(), company, "", skills, location, i, randomEmploymentType(), rand.Intn(4) == 0)
		rec.JobPostedAt = postedDaysAgo(rand.Intn(7))
		records = append(records, rec)
	}
	return records, nil
}
