package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
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
	"github.com/google/uuid"
)

// ErrInvalidImage 输入不是合法的图片data URI
var ErrInvalidImage = errors.New("invalid resume image")

var (
	// jsonObjectPattern 从混杂文本中提取最外层JSON对象
	jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
	// nameFieldPattern 兜底解析时提取姓名字段
	nameFieldPattern = regexp.MustCompile(`"name"\s*:\s*"([^"]*)"`)
	// skillsFieldPattern 兜底解析时提取技能数组
	skillsFieldPattern = regexp.MustCompile(`"skills"\s*:\s*\[([^\]]*)\]`)
	quotedPattern      = regexp.MustCompile(`"([^"]*)"`)
)

const resumeVisionInstruction = `You are a resume analysis assistant. You will receive an image of a resume.
Extract the information and respond with ONLY a JSON object in exactly this shape:
{
  "summary": {
    "name": "candidate name",
    "skills": ["skill1", "skill2"],
    "experience": "one paragraph summary of work experience",
    "education": "one paragraph summary of education",
    "projects": ["project description 1", "project description 2"]
  },
  "score": 8.5,
  "recommendations": {
    "companies": ["company1", "company2"],
    "tips": ["tip1", "tip2"]
  }
}
The score is a number between 0 and 10 rating the overall resume quality.
No markdown, no explanation, no code fences.`

// ImageArchive 简历图片的归档存储，上传失败不影响分析流程
type ImageArchive interface {
	UploadResumeImage(ctx context.Context, analysisID, mimeType string, data []byte) (string, error)
}

// Analyzer 调用视觉模型分析简历图片并产出结构化结果。
// 模型输出不可控，解析采用多级降级策略，任何解析失败都以保底结果收尾而不是报错。
type Analyzer struct {
	llmModel model.ToolCallingChatModel
	archive  ImageArchive
	timeout  time.Duration
	logger   *log.Logger
}

// AnalyzerOption Analyzer的配置选项
type AnalyzerOption func(*Analyzer)

// WithAnalysisTimeout 设置视觉分析超时
func WithAnalysisTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAnalyzer 创建简历分析器，archive可以为nil表示不归档
func NewAnalyzer(llmModel model.ToolCallingChatModel, archive ImageArchive, logger *log.Logger, options ...AnalyzerOption) *Analyzer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	a := &Analyzer{
		llmModel: llmModel,
		archive:  archive,
		timeout:  constants.DefaultResumeAnalysisTimeout,
		logger:   logger,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// AnalyzeResume 分析base64编码的简历图片（data URI格式）。
// 图片非法或模型调用失败时返回错误，模型输出不可解析时降级为保底结果。
func (a *Analyzer) AnalyzeResume(ctx context.Context, imageData string) (*types.ResumeAnalysis, error) {
	mimeType, payload, err := splitDataURI(imageData)
	if err != nil {
		return nil, err
	}

	analysisID := uuid.NewString()
	a.archiveImage(analysisID, mimeType, payload)

	if a.llmModel == nil {
		return nil, fmt.Errorf("视觉模型未配置")
	}

	visionCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages := []*einoschema.Message{
		einoschema.SystemMessage(resumeVisionInstruction),
		{
			Role: einoschema.User,
			MultiContent: []einoschema.ChatMessagePart{
				{Type: einoschema.ChatMessagePartTypeText, Text: "Analyze this resume."},
				{
					Type: einoschema.ChatMessagePartTypeImageURL,
					ImageURL: &einoschema.ChatMessageImageURL{
						URL:      imageData,
						MIMEType: mimeType,
					},
				},
			},
		},
	}

	resp, err := a.llmModel.Generate(visionCtx, messages)
	if err != nil {
		return nil, fmt.Errorf("视觉模型调用失败: %w", err)
	}

	analysis := a.parseAnalysis(resp.Content)
	normalizeAnalysis(analysis)
	return analysis, nil
}

// archiveImage 尽力归档简历图片，失败只记录日志
func (a *Analyzer) archiveImage(analysisID, mimeType string, payload string) {
	if a.archive == nil {
		return
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		a.logger.Printf("简历图片base64解码失败，跳过归档: %v", err)
		return
	}
	go func() {
		archiveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := a.archive.UploadResumeImage(archiveCtx, analysisID, mimeType, data); err != nil {
			a.logger.Printf("简历图片归档失败: %v", err)
		}
	}()
}

// parseAnalysis 多级解析模型输出：
// 1. 剥掉代码围栏后做严格JSON解析
// 2. 用正则提取最外层JSON对象再解析
// 3. 完全失败时用字段正则拼出保底结果
func (a *Analyzer) parseAnalysis(content string) *types.ResumeAnalysis {
	cleaned := stripCodeFences(content)

	var analysis types.ResumeAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err == nil {
		return &analysis
	}

	if match := jsonObjectPattern.FindString(content); match != "" {
		if err := json.Unmarshal([]byte(match), &analysis); err == nil {
			return &analysis
		}
	}

	a.logger.Printf("简历分析输出不可解析，使用保底结果: %.120s", content)
	return fallbackAnalysis(content)
}

// fallbackAnalysis 从原始输出中尽量抢救姓名和技能，拼出保底结果
func fallbackAnalysis(content string) *types.ResumeAnalysis {
	summary := types.ResumeSummary{
		Name:       "Candidate",
		Skills:     []string{},
		Experience: "Experience details could not be extracted from the resume.",
		Education:  "Education details could not be extracted from the resume.",
		Projects:   []string{},
	}

	if m := nameFieldPattern.FindStringSubmatch(content); len(m) == 2 && strings.TrimSpace(m[1]) != "" {
		summary.Name = strings.TrimSpace(m[1])
	}
	if m := skillsFieldPattern.FindStringSubmatch(content); len(m) == 2 {
		for _, q := range quotedPattern.FindAllStringSubmatch(m[1], -1) {
			if skill := strings.TrimSpace(q[1]); skill != "" {
				summary.Skills = append(summary.Skills, skill)
			}
		}
	}

	return &types.ResumeAnalysis{
		Summary: summary,
		Score:   7.0,
		Recommendations: types.ResumeRecommendations{
			Companies: []string{},
			Tips: []string{
				"We could not fully parse the analysis result. Please try uploading a clearer image of your resume.",
			},
		},
	}
}

// normalizeAnalysis 补齐nil切片、钳制评分并打上分析时间戳
func normalizeAnalysis(analysis *types.ResumeAnalysis) {
	if analysis.Summary.Skills == nil {
		analysis.Summary.Skills = []string{}
	}
	if analysis.Summary.Projects == nil {
		analysis.Summary.Projects = []string{}
	}
	if analysis.Recommendations.Companies == nil {
		analysis.Recommendations.Companies = []string{}
	}
	if analysis.Recommendations.Tips == nil {
		analysis.Recommendations.Tips = []string{}
	}
	if analysis.Score <= 0 {
		analysis.Score = 7.5
	}
	if analysis.Score > 10 {
		analysis.Score = 10
	}
	analysis.AnalyzedAt = time.Now().UTC().Format(time.RFC3339)
}

// splitDataURI 校验并拆分data URI，只接受图片类型
func splitDataURI(imageData string) (mimeType, payload string, err error) {
	trimmed := strings.TrimSpace(imageData)
	if trimmed == "" {
		return "", "", fmt.Errorf("%w: 简历图片数据不能为空", ErrInvalidImage)
	}

	if !strings.HasPrefix(trimmed, "data:") {
		// 裸base64按PNG处理
		return "image/png", trimmed, nil
	}

	rest := strings.TrimPrefix(trimmed, "data:")
	semicolon := strings.Index(rest, ";base64,")
	if semicolon < 0 {
		return "", "", fmt.Errorf("%w: 非法的data URI格式", ErrInvalidImage)
	}

	mimeType = rest[:semicolon]
	if !strings.HasPrefix(mimeType, "image/") {
		return "", "", fmt.Errorf("%w: 不支持的文件类型 %s，只接受图片", ErrInvalidImage, mimeType)
	}
	return mimeType, rest[semicolon+len(";base64,"):], nil
}

// stripCodeFences 去除```json ... ```风格的代码围栏
func stripCodeFences(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
