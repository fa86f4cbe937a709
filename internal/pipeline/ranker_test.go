package pipeline

import (
	"context"
	"errors"
	"testing"

	"job-search-go/internal/llm"
	"job-search-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankerJobs(n int) []types.NormalizedJob {
	jobs := make([]types.NormalizedJob, n)
	for i := range jobs {
		jobs[i] = types.NormalizedJob{ID: string(rune('a' + i)), Title: "Job", Company: "C"}
	}
	return jobs
}

// TestRankPlainJSONArray 纯JSON数组输出按下标重排
func TestRankPlainJSONArray(t *testing.T) {
	mock := llm.NewMockChatClient("[2, 0, 1]", nil)
	r := NewRanker(mock, nil)

	out := r.Rank(context.Background(), rankerJobs(3), []string{"Go"}, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, "b", out[2].ID)
}

// TestRankFencedJSON 带markdown代码围栏的输出应被正确解析
func TestRankFencedJSON(t *testing.T) {
	mock := llm.NewMockChatClient("```json\n[1, 0]\n```", nil)
	r := NewRanker(mock, nil)

	out := r.Rank(context.Background(), rankerJobs(2), []string{"Go"}, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
}

// TestRankRegexFallback 混杂说明文字时用正则提取下标数组
func TestRankRegexFallback(t *testing.T) {
	mock := llm.NewMockChatClient("Sure! Here is the ranking: [1, 2, 0] based on skill overlap.", nil)
	r := NewRanker(mock, nil)

	out := r.Rank(context.Background(), rankerJobs(3), []string{"Go"}, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].ID)
}

// TestRankSkipsInvalidIndices 越界和重复下标被跳过，未提及的职位补在尾部
func TestRankSkipsInvalidIndices(t *testing.T) {
	mock := llm.NewMockChatClient("[2, 9, 2, 0]", nil)
	r := NewRanker(mock, nil)

	out := r.Rank(context.Background(), rankerJobs(4), []string{"Go"}, 4)
	require.Len(t, out, 4)
	// 有效排列: 2, 0；补齐: 1, 3
	assert.Equal(t, "c", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, "b", out[2].ID)
	assert.Equal(t, "d", out[3].ID)
}

// TestRankTruncatesToLimit 结果截断到limit
func TestRankTruncatesToLimit(t *testing.T) {
	mock := llm.NewMockChatClient("[3, 2, 1, 0]", nil)
	r := NewRanker(mock, nil)

	out := r.Rank(context.Background(), rankerJobs(4), []string{"Go"}, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "d", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
}

// TestRankModelErrorFallback 模型失败时回退为原顺序截断
func TestRankModelErrorFallback(t *testing.T) {
	mock := llm.NewMockChatClient("", errors.New("quota exceeded"))
	r := NewRanker(mock, nil)

	out := r.Rank(context.Background(), rankerJobs(3), []string{"Go"}, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
}

// TestRankUnparsableFallback 输出完全不含下标数组时回退为原顺序
func TestRankUnparsableFallback(t *testing.T) {
	mock := llm.NewMockChatClient("I cannot rank these jobs.", nil)
	r := NewRanker(mock, nil)

	out := r.Rank(context.Background(), rankerJobs(2), []string{"Go"}, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
}

// TestRankNilModel 未配置模型时直接截断返回
func TestRankNilModel(t *testing.T) {
	r := NewRanker(nil, nil)
	out := r.Rank(context.Background(), rankerJobs(3), []string{"Go"}, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
}

// TestRankEmptyInput 空输入返回空切片且不调用模型
func TestRankEmptyInput(t *testing.T) {
	mock := llm.NewMockChatClient("[0]", nil)
	r := NewRanker(mock, nil)

	out := r.Rank(context.Background(), nil, []string{"Go"}, 10)
	assert.Empty(t, out)
	assert.Empty(t, mock.GetReceivedMessages())
}
