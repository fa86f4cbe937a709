package pipeline

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"job-search-go/internal/types"

	"github.com/google/uuid"
)

// Formatter 把来源原始记录转换为统一的对外职位结构
type Formatter struct {
	// 用于合成兜底申请链接的搜索词
	skills   []string
	location string
}

// NewFormatter 创建格式化器，skills和location用于合成兜底申请链接
func NewFormatter(skills []string, location string) *Formatter {
	return &Formatter{skills: skills, location: location}
}

// Format 转换单条记录。source写入NormalizedJob.Source。
func (f *Formatter) Format(rec types.RawJobRecord, source string) types.NormalizedJob {
	id := rec.JobID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	location := f.location
	if rec.JobCity != "" {
		location = rec.JobCity
		if rec.JobCountry != "" {
			location = rec.JobCity + ", " + rec.JobCountry
		}
	}

	requirements := rec.JobHighlights
	if requirements == nil {
		requirements = []string{}
	}
	benefits := rec.JobBenefits
	if benefits == nil {
		benefits = []string{}
	}

	return types.NormalizedJob{
		ID:             id,
		Title:          rec.JobTitle,
		Company:        rec.EmployerName,
		CompanyLogo:    rec.EmployerLogo,
		Location:       location,
		Description:    rec.JobDescription,
		Requirements:   requirements,
		Benefits:       benefits,
		ApplyURL:       f.ensureValidURL(rec.JobApplyLink, rec.JobTitle, rec.EmployerName),
		PostedDate:     normalizePostedDate(rec.JobPostedAt),
		EmploymentType: NormalizeEmploymentType(rec.JobEmploymentType),
		Remote:         rec.JobIsRemote,
		Source:         source,
	}
}

// FormatAll 转换一批记录
func (f *Formatter) FormatAll(recs []types.RawJobRecord, source string) []types.NormalizedJob {
	out := make([]types.NormalizedJob, 0, len(recs))
	for _, rec := range recs {
		out = append(out, f.Format(rec, source))
	}
	return out
}

// ensureValidURL 校验申请链接必须是绝对URL，否则合成Google搜索链接兜底。
// 兜底查询词: "{title} {company} {skills} {location} jobs"
func (f *Formatter) ensureValidURL(rawURL, title, company string) string {
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return rawURL
		}
	}

	query := fmt.Sprintf("%s %s %s %s jobs", title, company, strings.Join(f.skills, " "), f.location)
	return "https://www.google.com/search?q=" + url.QueryEscape(strings.Join(strings.Fields(query), " "))
}

// NormalizeEmploymentType 把来源提供的雇佣类型归一到规范枚举值。
// 无法识别的值一律归为全职。
func NormalizeEmploymentType(raw string) string {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(normalized)

	switch normalized {
	case "FULLTIME", "FULLTIMEANDPARTTIME":
		return types.EmploymentFullTime
	case "PARTTIME":
		return types.EmploymentPartTime
	case "INTERN", "INTERNSHIP", "TRAINEE":
		return types.EmploymentIntern
	case "CONTRACT", "CONTRACTOR", "CONTRACTUAL", "FREELANCE":
		return types.EmploymentContract
	default:
		return types.EmploymentFullTime
	}
}

// EmploymentTypeLabel 返回枚举值对应的人类可读标签
func EmploymentTypeLabel(enum string) string {
	switch enum {
	case types.EmploymentFullTime:
		return "Full-time"
	case types.EmploymentPartTime:
		return "Part-time"
	case types.EmploymentIntern:
		return "Internship"
	case types.EmploymentContract:
		return "Contract"
	default:
		return enum
	}
}

// normalizePostedDate 把发布时间归一为RFC3339，解析失败时使用当前时间
func normalizePostedDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}
