package provider

import "strings"

// 地区关键词到国家代码的映射。
// 按子串匹配，命中即返回对应代码，未命中一律按美国处理。
var countryKeywords = []struct {
	code     string
	keywords []string
}{
	{"in", []string{
		"india", "mysore", "mysuru", "bangalore", "bengaluru", "mumbai",
		"delhi", "new delhi", "hyderabad", "chennai", "pune", "kolkata",
		"gurgaon", "gurugram", "noida", "ahmedabad", "karnataka",
		"maharashtra", "tamil nadu", "telangana",
	}},
	{"gb", []string{"united kingdom", "uk", "london", "manchester", "birmingham", "england", "scotland"}},
	{"ca", []string{"canada", "toronto", "vancouver", "montreal", "ottawa"}},
	{"au", []string{"australia", "sydney", "melbourne", "brisbane", "perth"}},
	{"sg", []string{"singapore"}},
	{"ae", []string{"uae", "united arab emirates", "dubai", "abu dhabi"}},
}

// CountryCodeForLocation 根据地区描述推断两位国家代码。
// 用于JSearch API的country参数，也用于印度地区来源的适用性判断。
func CountryCodeForLocation(location string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return "us"
	}
	for _, entry := range countryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(loc, kw) {
				return entry.code
			}
		}
	}
	return "us"
}

// isIndiaLocation 判断地区是否属于印度
func isIndiaLocation(location string) bool {
	return CountryCodeForLocation(location) == "in"
}
