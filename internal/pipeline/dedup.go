package pipeline

import (
	"strings"

	"job-search-go/internal/types"
)

// DedupKey 生成去重键: lower(company)+"_"+lower(title)
func DedupKey(job types.NormalizedJob) string {
	return strings.ToLower(strings.TrimSpace(job.Company)) + "_" + strings.ToLower(strings.TrimSpace(job.Title))
}

// Deduplicate 按公司+标题去重，保留首次出现的记录。
// 输入已按来源优先级排好序，因此冲突时高优先级来源胜出。
func Deduplicate(jobs []types.NormalizedJob) []types.NormalizedJob {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]types.NormalizedJob, 0, len(jobs))
	for _, job := range jobs {
		key := DedupKey(job)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, job)
	}
	return out
}
