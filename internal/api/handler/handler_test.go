package handler_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"job-search-go/internal/agent"
	"job-search-go/internal/analysis"
	"job-search-go/internal/api/handler"
	"job-search-go/internal/company"
	"job-search-go/internal/llm"
	"job-search-go/internal/pipeline"
	"job-search-go/internal/provider"
	"job-search-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobHandler(t *testing.T) *handler.JobHandler {
	t.Helper()
	registry := provider.NewRegistry()
	registry.Register(provider.NewLinkedInProvider())
	registry.Register(provider.NewNaukriProvider())
	registry.Register(provider.NewUnstopProvider())
	registry.Register(provider.NewLocalIndexProvider())

	aggregator := pipeline.NewAggregator(registry, nil)
	ranker := pipeline.NewRanker(nil, nil)
	companies := company.NewService(nil, nil)
	return handler.NewJobHandler(aggregator, ranker, companies, "")
}

func newAIHandler(t *testing.T, response string) *handler.AIHandler {
	t.Helper()
	mock := llm.NewMockChatClient(response, nil)
	memory := agent.NewInMemoryChatMemory()
	advisor := agent.NewAdvisor(mock, memory, 5*time.Second, "mock-model", nil)
	analyzer := analysis.NewAnalyzer(mock, nil, nil)
	return handler.NewAIHandler(advisor, analyzer)
}

// TestJobSearchRequiresSkills 缺少skills参数应返回400
func TestJobSearchRequiresSkills(t *testing.T) {
	h := newJobHandler(t)

	c := app.NewContext(16)
	h.HandleJobSearch(context.Background(), c)
	assert.Equal(t, consts.StatusBadRequest, c.Response.StatusCode())

	c2 := app.NewContext(16)
	c2.QueryArgs().Add("skills", "  , ,")
	h.HandleJobSearch(context.Background(), c2)
	assert.Equal(t, consts.StatusBadRequest, c2.Response.StatusCode())
}

// TestJobSearchMysore Mysore检索应返回本地公司表中的雇主
func TestJobSearchMysore(t *testing.T) {
	h := newJobHandler(t)

	c := app.NewContext(16)
	c.QueryArgs().Add("skills", "React,Node.js")
	c.QueryArgs().Add("location", "Mysore")
	h.HandleJobSearch(context.Background(), c)

	require.Equal(t, consts.StatusOK, c.Response.StatusCode())

	var resp types.JobSearchResponse
	require.NoError(t, json.Unmarshal(c.Response.Body(), &resp))
	require.NotEmpty(t, resp.Jobs)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, "React,Node.js", resp.SearchQuery)

	companies := make(map[string]bool)
	for _, job := range resp.Jobs {
		companies[job.Company] = true
		assert.NotEmpty(t, job.ApplyURL)
		assert.NotEmpty(t, job.EmploymentType)
	}
	assert.True(t, companies["Infosys"] || companies["Wipro"] || companies["TCS"],
		"Mysore结果应包含本地公司表中的雇主")
}

// TestJobSearchRespectsLimit limit参数应截断结果
func TestJobSearchRespectsLimit(t *testing.T) {
	h := newJobHandler(t)

	c := app.NewContext(16)
	c.QueryArgs().Add("skills", "Go")
	c.QueryArgs().Add("location", "Bangalore")
	c.QueryArgs().Add("limit", "3")
	h.HandleJobSearch(context.Background(), c)

	require.Equal(t, consts.StatusOK, c.Response.StatusCode())

	var resp types.JobSearchResponse
	require.NoError(t, json.Unmarshal(c.Response.Body(), &resp))
	assert.LessOrEqual(t, len(resp.Jobs), 3)
	assert.GreaterOrEqual(t, resp.TotalResults, len(resp.Jobs))
}

// TestCompanyInfoPlaceholder 未知公司应返回合成的占位信息而不是404
func TestCompanyInfoPlaceholder(t *testing.T) {
	h := newJobHandler(t)

	c := app.NewContext(16)
	c.Params = append(c.Params, param.Param{Key: "companyName", Value: "Globex Corporation"})
	h.HandleCompanyInfo(context.Background(), c)

	require.Equal(t, consts.StatusOK, c.Response.StatusCode())

	var resp struct {
		Company types.CompanyInfo `json:"company"`
	}
	require.NoError(t, json.Unmarshal(c.Response.Body(), &resp))
	assert.Equal(t, "Globex Corporation", resp.Company.Name)
	assert.True(t, resp.Company.Placeholder)
}

// TestChatStartAndEnd 创建会话后删除应成功，重复删除返回404
func TestChatStartAndEnd(t *testing.T) {
	h := newAIHandler(t, "hello")

	c := app.NewContext(16)
	h.HandleChatStart(context.Background(), c)
	require.Equal(t, consts.StatusOK, c.Response.StatusCode())

	var startResp struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(c.Response.Body(), &startResp))
	require.NotEmpty(t, startResp.SessionID)
	assert.NotEmpty(t, startResp.Message)

	c2 := app.NewContext(16)
	c2.Params = append(c2.Params, param.Param{Key: "sessionId", Value: startResp.SessionID})
	h.HandleChatEnd(context.Background(), c2)
	assert.Equal(t, consts.StatusOK, c2.Response.StatusCode())

	c3 := app.NewContext(16)
	c3.Params = append(c3.Params, param.Param{Key: "sessionId", Value: startResp.SessionID})
	h.HandleChatEnd(context.Background(), c3)
	assert.Equal(t, consts.StatusNotFound, c3.Response.StatusCode())
}

// TestChatRequiresMessage 空消息应返回400
func TestChatRequiresMessage(t *testing.T) {
	h := newAIHandler(t, "hello")

	c := app.NewContext(16)
	c.Request.SetBody([]byte(`{"sessionId":"s1","message":"   "}`))
	c.Request.Header.SetContentTypeBytes([]byte("application/json"))
	h.HandleChat(context.Background(), c)
	assert.Equal(t, consts.StatusBadRequest, c.Response.StatusCode())
}

// TestChatReply 普通消息应返回模型回复
func TestChatReply(t *testing.T) {
	h := newAIHandler(t, "Focus on system design fundamentals.")

	c := app.NewContext(16)
	c.Request.SetBody([]byte(`{"sessionId":"","message":"How do I prepare for interviews?"}`))
	c.Request.Header.SetContentTypeBytes([]byte("application/json"))
	h.HandleChat(context.Background(), c)

	require.Equal(t, consts.StatusOK, c.Response.StatusCode())

	var reply types.ChatReply
	require.NoError(t, json.Unmarshal(c.Response.Body(), &reply))
	assert.Equal(t, "Focus on system design fundamentals.", reply.Response)
	assert.NotEmpty(t, reply.SessionID)
}

// TestCareerPathRequiresCompany 缺少company应返回400
func TestCareerPathRequiresCompany(t *testing.T) {
	h := newAIHandler(t, "plan")

	c := app.NewContext(16)
	c.Request.SetBody([]byte(`{"userSkills":["Go"]}`))
	c.Request.Header.SetContentTypeBytes([]byte("application/json"))
	h.HandleCareerPath(context.Background(), c)
	assert.Equal(t, consts.StatusBadRequest, c.Response.StatusCode())
}

// TestSkillGapRequiresJobTitle 缺少jobTitle应返回400
func TestSkillGapRequiresJobTitle(t *testing.T) {
	h := newAIHandler(t, "")

	c := app.NewContext(16)
	c.Request.SetBody([]byte(`{"userSkills":["Go"]}`))
	c.Request.Header.SetContentTypeBytes([]byte("application/json"))
	h.HandleSkillGap(context.Background(), c)
	assert.Equal(t, consts.StatusBadRequest, c.Response.StatusCode())
}

// TestSkillGapAnalysis 正常请求应返回分析结果
func TestSkillGapAnalysis(t *testing.T) {
	h := newAIHandler(t, "")

	c := app.NewContext(16)
	c.Request.SetBody([]byte(`{"jobTitle":"Backend Developer","userSkills":["Go","SQL"],"jobRequirements":["Go","SQL","Docker","Kubernetes"]}`))
	c.Request.Header.SetContentTypeBytes([]byte("application/json"))
	h.HandleSkillGap(context.Background(), c)

	require.Equal(t, consts.StatusOK, c.Response.StatusCode())

	var result types.SkillGapResult
	require.NoError(t, json.Unmarshal(c.Response.Body(), &result))
	assert.Equal(t, 50, result.MatchPercentage)
	assert.Len(t, result.MissingSkills, 2)
}

// TestResumeUploadValidation 缺少或非法的图片应返回400
func TestResumeUploadValidation(t *testing.T) {
	h := newAIHandler(t, "{}")

	c := app.NewContext(16)
	c.Request.SetBody([]byte(`{}`))
	c.Request.Header.SetContentTypeBytes([]byte("application/json"))
	h.HandleResumeUpload(context.Background(), c)
	assert.Equal(t, consts.StatusBadRequest, c.Response.StatusCode())

	c2 := app.NewContext(16)
	c2.Request.SetBody([]byte(`{"imageBase64":"data:application/pdf;base64,AAAA"}`))
	c2.Request.Header.SetContentTypeBytes([]byte("application/json"))
	h.HandleResumeUpload(context.Background(), c2)
	assert.Equal(t, consts.StatusBadRequest, c2.Response.StatusCode())
}
