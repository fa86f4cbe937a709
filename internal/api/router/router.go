package router

import (
	"context"

	"job-search-go/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, jobHandler *handler.JobHandler, aiHandler *handler.AIHandler) {
	api := h.Group("/api/v1")

	// 职位搜索
	jobs := api.Group("/jobs")
	jobs.GET("/search", jobHandler.HandleJobSearch)
	jobs.GET("/company/:companyName", jobHandler.HandleCompanyInfo)

	// AI能力
	ai := api.Group("/ai")
	ai.POST("/chat/start", aiHandler.HandleChatStart)
	ai.POST("/chat", aiHandler.HandleChat)
	ai.DELETE("/chat/:sessionId", aiHandler.HandleChatEnd)
	ai.POST("/career-path", aiHandler.HandleCareerPath)
	ai.POST("/skill-gap-analysis", aiHandler.HandleSkillGap)
	ai.POST("/resume/upload", aiHandler.HandleResumeUpload)

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
