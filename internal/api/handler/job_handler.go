package handler

import (
	"context"
	"strconv"
	"strings"

	"job-search-go/internal/company"
	"job-search-go/internal/constants"
	"job-search-go/internal/logger"
	"job-search-go/internal/pipeline"
	"job-search-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// JobHandler 职位搜索相关接口
type JobHandler struct {
	aggregator      *pipeline.Aggregator
	ranker          *pipeline.Ranker
	companies       *company.Service
	defaultLocation string
	defaultLimit    int
}

// NewJobHandler 创建职位搜索处理器
func NewJobHandler(aggregator *pipeline.Aggregator, ranker *pipeline.Ranker, companies *company.Service, defaultLocation string) *JobHandler {
	if defaultLocation == "" {
		defaultLocation = constants.DefaultSearchLocation
	}
	return &JobHandler{
		aggregator:      aggregator,
		ranker:          ranker,
		companies:       companies,
		defaultLocation: defaultLocation,
		defaultLimit:    constants.DefaultSearchLimit,
	}
}

// HandleJobSearch GET /api/v1/jobs/search
// skills为必填参数，location缺省时使用默认地区。
func (h *JobHandler) HandleJobSearch(ctx context.Context, c *app.RequestContext) {
	skillsParam := strings.TrimSpace(c.Query("skills"))
	if skillsParam == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "skills parameter is required"})
		return
	}

	skills := splitSkills(skillsParam)
	if len(skills) == 0 {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "skills parameter is required"})
		return
	}

	location := strings.TrimSpace(c.Query("location"))
	if location == "" {
		location = h.defaultLocation
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), h.defaultLimit)

	jobs := h.aggregator.Collect(ctx, skills, location)
	ranked := h.ranker.Rank(ctx, jobs, skills, limit)

	logger.Ctx(ctx).Info().
		Str("skills", skillsParam).
		Str("location", location).
		Int("collected", len(jobs)).
		Int("returned", len(ranked)).
		Msg("职位搜索完成")

	// 公司观测异步落库，不阻塞响应
	if h.companies != nil {
		h.companies.RecordSightings(ranked, location)
	}

	c.JSON(consts.StatusOK, types.JobSearchResponse{
		Jobs:         ranked,
		TotalResults: len(ranked),
		Page:         page,
		SearchQuery:  skillsParam,
	})
}

// HandleCompanyInfo GET /api/v1/jobs/company/:companyName
func (h *JobHandler) HandleCompanyInfo(ctx context.Context, c *app.RequestContext) {
	name := strings.TrimSpace(c.Param("companyName"))
	if name == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "companyName is required"})
		return
	}

	info := h.companies.GetCompany(ctx, name)
	c.JSON(consts.StatusOK, utils.H{"company": info})
}

// splitSkills 按逗号拆分技能列表并去掉空白项
func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// parsePositiveInt 解析正整数参数，非法值回退到默认值
func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
