package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"job-search-go/internal/constants"
	"job-search-go/internal/types"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

// indexArrayPattern 从模型输出中提取整数数组的兜底正则
var indexArrayPattern = regexp.MustCompile(`\[[\d,\s]+\]`)

// Ranker 调用LLM按技能相关度对职位重新排序。
// 模型只返回下标排列，职位内容本身不经过模型改写。
type Ranker struct {
	llmModel model.ToolCallingChatModel
	timeout  time.Duration
	logger   *log.Logger
}

// RankerOption Ranker的配置选项
type RankerOption func(*Ranker)

// WithRankTimeout 设置排序超时
func WithRankTimeout(d time.Duration) RankerOption {
	return func(r *Ranker) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRanker 创建排序器实例
func NewRanker(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...RankerOption) *Ranker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	r := &Ranker{
		llmModel: llmModel,
		timeout:  constants.DefaultRankerTimeout,
		logger:   logger,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Rank 返回按相关度重排后的职位列表，长度不超过limit。
// 任何失败（超时、模型错误、输出不可解析）都会降级为原顺序截断，绝不返回错误。
func (r *Ranker) Rank(ctx context.Context, jobs []types.NormalizedJob, skills []string, limit int) []types.NormalizedJob {
	if len(jobs) == 0 {
		return []types.NormalizedJob{}
	}
	if limit <= 0 || limit > len(jobs) {
		limit = len(jobs)
	}

	if r.llmModel == nil {
		return jobs[:limit]
	}

	rankCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := r.buildPrompt(jobs, skills)
	resp, err := r.llmModel.Generate(rankCtx, []*einoschema.Message{
		einoschema.UserMessage(prompt),
	})
	if err != nil {
		r.logger.Printf("AI排序调用失败，回退到原始顺序: %v", err)
		return jobs[:limit]
	}

	indices, err := parseIndexArray(resp.Content)
	if err != nil {
		r.logger.Printf("AI排序输出不可解析，回退到原始顺序: %v", err)
		return jobs[:limit]
	}

	return reorderByIndices(jobs, indices, limit)
}

// buildPrompt 组装排序提示词，描述截断到200个字符以控制token消耗
func (r *Ranker) buildPrompt(jobs []types.NormalizedJob, skills []string) string {
	var sb strings.Builder
	sb.WriteString("You are a job relevance ranking assistant. Given the candidate's skills and a numbered list of jobs, ")
	sb.WriteString("rank the jobs from most to least relevant.\n\n")
	sb.WriteString(fmt.Sprintf("Candidate skills: %s\n\nJobs:\n", strings.Join(skills, ", ")))

	for i, job := range jobs {
		desc := job.Description
		if runes := []rune(desc); len(runes) > 200 {
			desc = string(runes[:200])
		}
		sb.WriteString(fmt.Sprintf("[%d] %s at %s | %s | %s\n", i, job.Title, job.Company, job.Location, desc))
	}

	sb.WriteString("\nRespond with ONLY a JSON array of the job indices in ranked order, most relevant first. ")
	sb.WriteString("Example: [2, 0, 1]. No explanation, no markdown.")
	return sb.String()
}

// parseIndexArray 解析模型输出中的下标数组。
// 先剥掉markdown代码围栏做严格JSON解析，失败后用正则提取第一个整数数组。
func parseIndexArray(content string) ([]int, error) {
	cleaned := stripCodeFences(content)

	var indices []int
	if err := json.Unmarshal([]byte(cleaned), &indices); err == nil {
		return indices, nil
	}

	match := indexArrayPattern.FindString(content)
	if match == "" {
		return nil, fmt.Errorf("输出中未找到下标数组: %q", content)
	}
	if err := json.Unmarshal([]byte(match), &indices); err != nil {
		return nil, fmt.Errorf("提取的下标数组无法解析: %w", err)
	}
	return indices, nil
}

// stripCodeFences 去除```json ... ```风格的代码围栏
func stripCodeFences(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// reorderByIndices 按下标排列重排职位。
// 越界和重复的下标直接跳过，未被提及的职位按原顺序补在尾部，最后截断到limit。
func reorderByIndices(jobs []types.NormalizedJob, indices []int, limit int) []types.NormalizedJob {
	used := make(map[int]struct{}, len(jobs))
	out := make([]types.NormalizedJob, 0, len(jobs))

	for _, idx := range indices {
		if idx < 0 || idx >= len(jobs) {
			continue
		}
		if _, ok := used[idx]; ok {
			continue
		}
		used[idx] = struct{}{}
		out = append(out, jobs[idx])
	}

	for i, job := range jobs {
		if _, ok := used[i]; !ok {
			out = append(out, job)
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
