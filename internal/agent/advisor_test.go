package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"job-search-go/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdvisor(t *testing.T, mock *llm.MockChatClient) *Advisor {
	t.Helper()
	memory := NewInMemoryChatMemory(WithSessionTTL(time.Minute), WithMaxSessions(10))
	return NewAdvisor(mock, memory, 5*time.Second, "mock-model", nil)
}

// TestStartSessionReturnsGreeting 新会话应返回非空的会话ID和开场白
func TestStartSessionReturnsGreeting(t *testing.T) {
	advisor := newTestAdvisor(t, llm.NewMockChatClient("hi", nil))

	sessionID, greeting, err := advisor.StartSession()
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.NotEmpty(t, greeting)

	existed, err := advisor.memory.Exists(sessionID)
	require.NoError(t, err)
	assert.True(t, existed)
}

// TestSendMessageAppendsHistory 普通消息应得到模型回复并累积历史
func TestSendMessageAppendsHistory(t *testing.T) {
	mock := llm.NewMockChatClient("Consider learning system design.", nil)
	advisor := newTestAdvisor(t, mock)

	sessionID, _, err := advisor.StartSession()
	require.NoError(t, err)

	reply, err := advisor.SendMessage(context.Background(), sessionID, "How do I grow as a backend engineer?")
	require.NoError(t, err)
	assert.Equal(t, "Consider learning system design.", reply.Response)
	assert.Equal(t, sessionID, reply.SessionID)
	assert.False(t, reply.SessionEnded)

	// system + user + assistant
	history, err := advisor.memory.GetHistory(sessionID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

// TestSendMessageExitEndsSession exit/quit应终止并删除会话，不调用模型
func TestSendMessageExitEndsSession(t *testing.T) {
	mock := llm.NewMockChatClient("should not be called", nil)
	advisor := newTestAdvisor(t, mock)

	sessionID, _, err := advisor.StartSession()
	require.NoError(t, err)

	for _, word := range []string{"exit", "QUIT", " Exit "} {
		reply, err := advisor.SendMessage(context.Background(), sessionID, word)
		require.NoError(t, err)
		assert.True(t, reply.SessionEnded, "关键词 %q 应终止会话", word)
	}

	existed, err := advisor.memory.Exists(sessionID)
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Empty(t, mock.GetReceivedMessages(), "终止会话不应触发模型调用")
}

// TestSendMessageStaleSessionStartsFresh 过期或未知的会话ID应被当作新会话
func TestSendMessageStaleSessionStartsFresh(t *testing.T) {
	advisor := newTestAdvisor(t, llm.NewMockChatClient("ok", nil))

	reply, err := advisor.SendMessage(context.Background(), "nonexistent-session", "hello")
	require.NoError(t, err)
	assert.Equal(t, "nonexistent-session", reply.SessionID)
	assert.Equal(t, "ok", reply.Response)
}

// TestSendMessageEmptyText 空消息应返回错误
func TestSendMessageEmptyText(t *testing.T) {
	advisor := newTestAdvisor(t, llm.NewMockChatClient("ok", nil))

	_, err := advisor.SendMessage(context.Background(), "", "   ")
	assert.Error(t, err)
}

// TestEndSession 显式删除应报告会话是否存在
func TestEndSession(t *testing.T) {
	advisor := newTestAdvisor(t, llm.NewMockChatClient("ok", nil))

	sessionID, _, err := advisor.StartSession()
	require.NoError(t, err)

	existed, err := advisor.EndSession(sessionID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = advisor.EndSession(sessionID)
	require.NoError(t, err)
	assert.False(t, existed)
}

// TestCareerPathFallback 模型失败时应返回兜底计划
func TestCareerPathFallback(t *testing.T) {
	advisor := newTestAdvisor(t, llm.NewMockChatClient("", errors.New("model unavailable")))

	plan, degraded := advisor.CareerPath(context.Background(), "Infosys", []string{"Java", "SQL"})
	assert.True(t, degraded)
	assert.Contains(t, plan, "Infosys")
	assert.Contains(t, plan, "## Skills to Develop")
}

// TestCareerPathFromModel 模型正常时应透传模型输出
func TestCareerPathFromModel(t *testing.T) {
	advisor := newTestAdvisor(t, llm.NewMockChatClient("## Plan\n- step one", nil))

	plan, degraded := advisor.CareerPath(context.Background(), "Google", []string{"Go"})
	assert.False(t, degraded)
	assert.Equal(t, "## Plan\n- step one", plan)
}
