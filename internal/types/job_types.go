package types

import "time"

// 雇佣类型枚举值，对外输出时统一使用这些规范值
const (
	EmploymentFullTime = "FULLTIME"
	EmploymentPartTime = "PARTTIME"
	EmploymentIntern   = "INTERN"
	EmploymentContract = "CONTRACT"
)

// RawJobRecord 各来源适配器返回的原始职位记录。
// 字段命名对齐JSearch API的返回结构，离线生成器也按同样的形状产出，
// 这样格式化阶段只需要处理一种输入。
type RawJobRecord struct {
	JobID             string   `json:"job_id"`
	JobTitle          string   `json:"job_title"`
	EmployerName      string   `json:"employer_name"`
	EmployerLogo      string   `json:"employer_logo"`
	EmployerWebsite   string   `json:"employer_website"`
	JobCity           string   `json:"job_city"`
	JobCountry        string   `json:"job_country"`
	JobDescription    string   `json:"job_description"`
	JobHighlights     []string `json:"job_highlights"`
	JobBenefits       []string `json:"job_benefits"`
	JobApplyLink      string   `json:"job_apply_link"`
	JobPostedAt       string   `json:"job_posted_at_datetime_utc"`
	JobEmploymentType string   `json:"job_employment_type"`
	JobIsRemote       bool     `json:"job_is_remote"`
}

// NormalizedJob 格式化后对外输出的职位结构
type NormalizedJob struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	CompanyLogo    string   `json:"companyLogo,omitempty"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	Benefits       []string `json:"benefits"`
	ApplyURL       string   `json:"applyUrl"`
	PostedDate     string   `json:"postedDate"`
	EmploymentType string   `json:"employmentType"`
	Remote         bool     `json:"remote"`
	Source         string   `json:"source"`
}

// CompanyInfo 公司详情，来自公司缓存或占位合成
type CompanyInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	WebsiteURL  string    `json:"websiteUrl"`
	Logo        string    `json:"logo,omitempty"`
	Industry    string    `json:"industry"`
	Location    string    `json:"location,omitempty"`
	TechStack   []string  `json:"techStack"`
	LastFetched time.Time `json:"lastFetched"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// CompanySighting 搜索结果中出现的一家公司，用于异步维护公司缓存
type CompanySighting struct {
	Name        string `json:"name"`
	Logo        string `json:"logo,omitempty"`
	WebsiteURL  string `json:"websiteUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// JobSearchResponse 职位搜索接口的响应体
type JobSearchResponse struct {
	Jobs         []NormalizedJob `json:"jobs"`
	TotalResults int             `json:"totalResults"`
	Page         int             `json:"page"`
	SearchQuery  string          `json:"searchQuery"`
}

// ResumeSummary 简历解析出的结构化摘要
type ResumeSummary struct {
	Name       string   `json:"name"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
	Education  string   `json:"education"`
	Projects   []string `json:"projects"`
}

// ResumeRecommendations 基于简历给出的建议
type ResumeRecommendations struct {
	Companies []string `json:"companies"`
	Tips      []string `json:"tips"`
}

// ResumeAnalysis 视觉模型分析简历图片后的完整结果
type ResumeAnalysis struct {
	Summary         ResumeSummary         `json:"summary"`
	Score           float64               `json:"score"`
	Recommendations ResumeRecommendations `json:"recommendations"`
	AnalyzedAt      string                `json:"analyzedAt"`
}

// SkillGapResult 本地技能差距分析的结果
type SkillGapResult struct {
	JobTitle        string               `json:"jobTitle"`
	Company         string               `json:"company,omitempty"`
	MatchPercentage int                  `json:"matchPercentage"`
	MatchedSkills   []string             `json:"matchedSkills"`
	MissingSkills   []string             `json:"missingSkills"`
	Recommendations []SkillGapSuggestion `json:"recommendations"`
	ReadinessLevel  string               `json:"readinessLevel"`
}

// SkillGapSuggestion 针对单项缺失技能的学习建议
type SkillGapSuggestion struct {
	Skill      string `json:"skill"`
	Suggestion string `json:"suggestion"`
}

// ChatReply 会话消息的处理结果
type ChatReply struct {
	Response     string `json:"response"`
	SessionID    string `json:"sessionId"`
	SessionEnded bool   `json:"sessionEnded,omitempty"`
	Timestamp    string `json:"timestamp"`
	Model        string `json:"model,omitempty"`
}
