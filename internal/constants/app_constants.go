package constants

import "time"

const (
	// DefaultSearchLocation 未指定location参数时使用的默认地区
	DefaultSearchLocation = "United States"

	// DefaultSearchLimit 单次搜索默认返回的职位数量上限
	DefaultSearchLimit = 20

	// MaxPerProviderResults 单个来源最多贡献的记录数
	MaxPerProviderResults = 15

	// CompanyCacheDuration 公司详情在Redis中的缓存时长
	CompanyCacheDuration = 6 * time.Hour

	// ChatSessionTTL 聊天会话的默认过期时长
	ChatSessionTTL = 30 * time.Minute

	// DefaultRankerTimeout AI排序的默认超时，超时后降级为原始顺序截断
	DefaultRankerTimeout = 15 * time.Second

	// DefaultProviderTimeout 单个来源适配器的默认超时
	DefaultProviderTimeout = 10 * time.Second

	// DefaultResumeAnalysisTimeout 简历图片分析的默认超时，视觉调用较慢
	DefaultResumeAnalysisTimeout = 90 * time.Second
)
