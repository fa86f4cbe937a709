package agent

import (
	"fmt"
	"strings"

	"job-search-go/internal/types"
)

// defaultJobRequirements 请求未携带岗位要求时使用的通用技术栈
var defaultJobRequirements = []string{
	"JavaScript", "React", "Node.js", "SQL", "Git",
	"REST APIs", "Data Structures", "System Design",
}

// 匹配度阈值对应的准备程度描述
const (
	readinessReady       = "Ready to Apply"
	readinessAlmost      = "Almost Ready"
	readinessPreparation = "Needs Preparation"
	readinessUpskilling  = "Significant Upskilling Required"
)

// AnalyzeSkillGap 在本地对比候选人技能与岗位要求，不调用模型。
// 匹配按双向子串判断："React"命中要求"React.js"，反之亦然。
func AnalyzeSkillGap(jobTitle, company string, userSkills, jobRequirements []string) types.SkillGapResult {
	requirements := normalizeSkillList(jobRequirements)
	if len(requirements) == 0 {
		requirements = defaultJobRequirements
	}
	skills := normalizeSkillList(userSkills)

	matched := make([]string, 0, len(requirements))
	missing := make([]string, 0, len(requirements))
	for _, req := range requirements {
		if skillCovers(skills, req) {
			matched = append(matched, req)
		} else {
			missing = append(missing, req)
		}
	}

	percentage := 0
	if len(requirements) > 0 {
		percentage = len(matched) * 100 / len(requirements)
	}

	// 只针对前5项缺失技能给出建议
	topMissing := missing
	if len(topMissing) > 5 {
		topMissing = topMissing[:5]
	}
	recommendations := make([]types.SkillGapSuggestion, 0, len(topMissing))
	for _, skill := range topMissing {
		recommendations = append(recommendations, types.SkillGapSuggestion{
			Skill:      skill,
			Suggestion: fmt.Sprintf("Take a hands-on course on %s and build a small project to demonstrate it.", skill),
		})
	}

	return types.SkillGapResult{
		JobTitle:        jobTitle,
		Company:         company,
		MatchPercentage: percentage,
		MatchedSkills:   matched,
		MissingSkills:   topMissing,
		Recommendations: recommendations,
		ReadinessLevel:  readinessLevel(percentage),
	}
}

// readinessLevel 把匹配度映射为准备程度
func readinessLevel(percentage int) string {
	switch {
	case percentage >= 80:
		return readinessReady
	case percentage >= 60:
		return readinessAlmost
	case percentage >= 40:
		return readinessPreparation
	default:
		return readinessUpskilling
	}
}

// skillCovers 判断技能列表是否覆盖某项要求（双向子串，不区分大小写）
func skillCovers(skills []string, requirement string) bool {
	reqLower := strings.ToLower(requirement)
	for _, skill := range skills {
		skillLower := strings.ToLower(skill)
		if strings.Contains(reqLower, skillLower) || strings.Contains(skillLower, reqLower) {
			return true
		}
	}
	return false
}

// normalizeSkillList 去除空白项
func normalizeSkillList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
