package provider

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"job-search-go/internal/types"
)

// 离线生成器共用的标题模板，按技能轮转填充
var titleTemplates = []string{
	"%s Developer",
	"Senior %s Developer",
	"%s Engineer",
	"Full Stack Developer (%s)",
	"Lead %s Engineer",
}

// primarySkill 取第一个技能作为标题主词，为空时回退到通用词
func primarySkill(skills []string) string {
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return "Software"
}

// titleFor 按下标轮转生成职位标题
func titleFor(skills []string, idx int) string {
	tpl := titleTemplates[idx%len(titleTemplates)]
	return fmt.Sprintf(tpl, primarySkill(skills))
}

// descriptionFor 生成一段朴素的职位描述
func descriptionFor(company, title string, skills []string, location string) string {
	return fmt.Sprintf(
		"%s is hiring a %s in %s. You will work with %s to build and maintain production systems. Join a collaborative engineering team with strong mentorship and growth opportunities.",
		company, title, location, strings.Join(skills, ", "),
	)
}

// requirementsFor 把技能列表扩展为要求条目
func requirementsFor(skills []string) []string {
	reqs := make([]string, 0, len(skills)+2)
	for _, s := range skills {
		if strings.TrimSpace(s) == "" {
			continue
		}
		reqs = append(reqs, fmt.Sprintf("Hands-on experience with %s", strings.TrimSpace(s)))
	}
	reqs = append(reqs, "Strong problem-solving and communication skills")
	reqs = append(reqs, "Bachelor's degree in Computer Science or related field")
	return reqs
}

var commonBenefits = []string{
	"Health insurance",
	"Flexible working hours",
	"Learning and development budget",
	"Performance bonus",
}

// postedDaysAgo 生成n天前的UTC时间戳字符串
func postedDaysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format(time.RFC3339)
}

// mockRecord 组装一条离线生成的职位记录
func mockRecord(source, company, logo string, skills []string, location string, idx int, employmentType string, remote bool) types.RawJobRecord {
	title := titleFor(skills, idx)
	return types.RawJobRecord{
		JobID:             fmt.Sprintf("%s-%d-%d", source, time.Now().UnixNano(), idx),
		JobTitle:          title,
		EmployerName:      company,
		EmployerLogo:      logo,
		JobCity:           location,
		JobDescription:    descriptionFor(company, title, skills, location),
		JobHighlights:     requirementsFor(skills),
		JobBenefits:       commonBenefits,
		JobPostedAt:       postedDaysAgo(idx % 7),
		JobEmploymentType: employmentType,
		JobIsRemote:       remote,
	}
}

// randomEmploymentType 以全职为主的随机雇佣类型
func randomEmploymentType() string {
	switch rand.Intn(10) {
	case 0:
		return types.EmploymentPartTime
	case 1:
		return types.EmploymentContract
	case 2:
		return types.EmploymentIntern
	default:
		return types.EmploymentFullTime
	}
}
