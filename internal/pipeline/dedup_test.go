package pipeline

import (
	"testing"

	"job-search-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeduplicateKeepsFirst 同公司同标题保留首条记录
func TestDeduplicateKeepsFirst(t *testing.T) {
	jobs := []types.NormalizedJob{
		{ID: "1", Company: "Infosys", Title: "React Developer", Source: "jsearch"},
		{ID: "2", Company: "infosys", Title: "REACT DEVELOPER", Source: "localindex"},
		{ID: "3", Company: "Wipro", Title: "React Developer", Source: "localindex"},
	}

	out := Deduplicate(jobs)
	require.Len(t, out, 2)
	assert.Equal(t, "jsearch", out[0].Source, "冲突时应保留先出现的高优先级来源")
	assert.Equal(t, "Wipro", out[1].Company)
}

// TestDeduplicateOutputSubset 输出必须是输入的子集且不引入新记录
func TestDeduplicateOutputSubset(t *testing.T) {
	jobs := []types.NormalizedJob{
		{ID: "a", Company: "A", Title: "T1"},
		{ID: "b", Company: "B", Title: "T2"},
	}
	out := Deduplicate(jobs)
	assert.Equal(t, jobs, out, "无重复时应原样返回")

	assert.Empty(t, Deduplicate(nil))
}

// TestDedupKeyNormalization 键生成忽略大小写和首尾空白
func TestDedupKeyNormalization(t *testing.T) {
	a := DedupKey(types.NormalizedJob{Company: " Infosys ", Title: "Dev"})
	b := DedupKey(types.NormalizedJob{Company: "infosys", Title: "DEV"})
	assert.Equal(t, a, b)
}
