package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"job-search-go/internal/agent"
	"job-search-go/internal/analysis"
	"job-search-go/internal/logger"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// AIHandler AI相关接口：职业顾问会话、职业规划、技能差距分析、简历图片分析
type AIHandler struct {
	advisor  *agent.Advisor
	analyzer *analysis.Analyzer
}

// NewAIHandler 创建AI处理器
func NewAIHandler(advisor *agent.Advisor, analyzer *analysis.Analyzer) *AIHandler {
	return &AIHandler{
		advisor:  advisor,
		analyzer: analyzer,
	}
}

// ChatRequest 会话消息请求体
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// CareerPathRequest 职业规划请求体
type CareerPathRequest struct {
	CompanyName string   `json:"companyName"`
	UserSkills  []string `json:"userSkills"`
}

// SkillGapRequest 技能差距分析请求体
type SkillGapRequest struct {
	JobTitle        string   `json:"jobTitle"`
	CompanyName     string   `json:"companyName"`
	UserSkills      []string `json:"userSkills"`
	JobRequirements []string `json:"jobRequirements"`
}

// ResumeUploadRequest 简历图片分析请求体
type ResumeUploadRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// HandleChatStart POST /api/v1/ai/chat/start
func (h *AIHandler) HandleChatStart(ctx context.Context, c *app.RequestContext) {
	sessionID, greeting, err := h.advisor.StartSession()
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("创建会话失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to start chat session"})
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"sessionId": sessionID,
		"message":   greeting,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"model":     h.advisor.ModelName(),
	})
}

// HandleChat POST /api/v1/ai/chat
func (h *AIHandler) HandleChat(ctx context.Context, c *app.RequestContext) {
	var req ChatRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "message is required"})
		return
	}

	reply, err := h.advisor.SendMessage(ctx, req.SessionID, req.Message)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("sessionId", req.SessionID).Msg("会话消息处理失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to process chat message"})
		return
	}

	c.JSON(consts.StatusOK, reply)
}

// HandleChatEnd DELETE /api/v1/ai/chat/:sessionId
func (h *AIHandler) HandleChatEnd(ctx context.Context, c *app.RequestContext) {
	sessionID := strings.TrimSpace(c.Param("sessionId"))
	if sessionID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "sessionId is required"})
		return
	}

	existed, err := h.advisor.EndSession(sessionID)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("sessionId", sessionID).Msg("删除会话失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to end chat session"})
		return
	}
	if !existed {
		c.JSON(consts.StatusNotFound, utils.H{"error": "session not found"})
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"sessionId": sessionID,
		"status":    "ended",
	})
}

// HandleCareerPath POST /api/v1/ai/career-path
func (h *AIHandler) HandleCareerPath(ctx context.Context, c *app.RequestContext) {
	var req CareerPathRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "companyName is required"})
		return
	}

	plan, degraded := h.advisor.CareerPath(ctx, req.CompanyName, req.UserSkills)

	c.JSON(consts.StatusOK, utils.H{
		"companyName": req.CompanyName,
		"careerPath":  plan,
		"degraded":    degraded,
	})
}

// HandleSkillGap POST /api/v1/ai/skill-gap-analysis
func (h *AIHandler) HandleSkillGap(ctx context.Context, c *app.RequestContext) {
	var req SkillGapRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "jobTitle is required"})
		return
	}

	result := agent.AnalyzeSkillGap(req.JobTitle, req.CompanyName, req.UserSkills, req.JobRequirements)
	c.JSON(consts.StatusOK, result)
}

// HandleResumeUpload POST /api/v1/ai/resume/upload
func (h *AIHandler) HandleResumeUpload(ctx context.Context, c *app.RequestContext) {
	var req ResumeUploadRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "imageBase64 is required"})
		return
	}

	result, err := h.analyzer.AnalyzeResume(ctx, req.ImageBase64)
	if err != nil {
		if errors.Is(err, analysis.ErrInvalidImage) {
			c.JSON(consts.StatusBadRequest, utils.H{"error": "image must be a base64-encoded image data URI"})
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("简历图片分析失败")
		c.JSON(consts.StatusInternalServerError, utils.H{
			"error": "resume analysis is temporarily unavailable, please try again with a clear image of your resume",
		})
		return
	}

	c.JSON(consts.StatusOK, result)
}
