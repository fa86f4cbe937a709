package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAnalyzeSkillGapFullMatch 全部要求被覆盖时应判定为可以投递
func TestAnalyzeSkillGapFullMatch(t *testing.T) {
	result := AnalyzeSkillGap("Frontend Developer", "Wipro",
		[]string{"React", "JavaScript", "CSS"},
		[]string{"React.js", "JavaScript", "CSS"})

	assert.Equal(t, 100, result.MatchPercentage)
	assert.Equal(t, readinessReady, result.ReadinessLevel)
	assert.Empty(t, result.MissingSkills)
	assert.Empty(t, result.Recommendations)
}

// TestAnalyzeSkillGapBidirectionalMatch 子串匹配应双向生效
func TestAnalyzeSkillGapBidirectionalMatch(t *testing.T) {
	// 技能"Node"命中要求"Node.js"，技能"Amazon Web Services"命中要求"AWS"不成立，
	// 但"AWS"命中"AWS Lambda"成立
	result := AnalyzeSkillGap("Backend Developer", "",
		[]string{"Node", "AWS"},
		[]string{"Node.js", "AWS Lambda"})

	assert.Equal(t, 100, result.MatchPercentage)
	assert.Len(t, result.MatchedSkills, 2)
}

// TestAnalyzeSkillGapPartialMatch 部分匹配时应给出缺失技能和建议
func TestAnalyzeSkillGapPartialMatch(t *testing.T) {
	result := AnalyzeSkillGap("Full Stack Developer", "TCS",
		[]string{"React"},
		[]string{"React", "Node.js", "MongoDB", "Docker", "Kubernetes"})

	assert.Equal(t, 20, result.MatchPercentage)
	assert.Equal(t, readinessUpskilling, result.ReadinessLevel)
	assert.Len(t, result.MissingSkills, 4)
	assert.Len(t, result.Recommendations, 4)
	for _, rec := range result.Recommendations {
		assert.Contains(t, rec.Suggestion, rec.Skill)
	}
}

// TestAnalyzeSkillGapDefaultRequirements 未提供岗位要求时使用默认技术栈
func TestAnalyzeSkillGapDefaultRequirements(t *testing.T) {
	result := AnalyzeSkillGap("Software Engineer", "",
		[]string{"JavaScript", "React", "Node.js", "SQL", "Git"}, nil)

	assert.NotZero(t, result.MatchPercentage)
	assert.NotEmpty(t, result.MatchedSkills)
}

// TestReadinessLevels 阈值边界
func TestReadinessLevels(t *testing.T) {
	assert.Equal(t, readinessReady, readinessLevel(80))
	assert.Equal(t, readinessAlmost, readinessLevel(60))
	assert.Equal(t, readinessPreparation, readinessLevel(40))
	assert.Equal(t, readinessUpskilling, readinessLevel(39))
}

// TestAnalyzeSkillGapMissingCap 缺失技能最多列出5项
func TestAnalyzeSkillGapMissingCap(t *testing.T) {
	result := AnalyzeSkillGap("SRE", "",
		[]string{},
		[]string{"Go", "Kubernetes", "Terraform", "Prometheus", "Grafana", "Linux", "Networking"})

	assert.Len(t, result.MissingSkills, 5)
	assert.Len(t, result.Recommendations, 5)
}
