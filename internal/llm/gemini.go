package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"job-search-go/internal/tracing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var geminiTracer = otel.Tracer("job-search-go/llm/gemini")

const (
	defaultGeminiAPIURL    = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModelName = "gemini-2.0-flash"
)

// --- Gemini generateContent Request/Response Structures ---

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64编码的原始字节
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" 或 "model"
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiChatModel 实现了 model.ToolCallingChatModel 接口，
// 通过REST方式调用Google Gemini的generateContent接口。
// 支持带内联图片的多模态消息，用于简历图片分析。
type GeminiChatModel struct {
	apiKey     string
	modelName  string
	apiURL     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewGeminiChatModel 创建一个新的 GeminiChatModel 实例
func NewGeminiChatModel(apiKey string, modelName string, apiURL string) (*GeminiChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultGeminiModelName
	}

	baseURL := strings.TrimRight(apiURL, "/")
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGeminiAPIURL
	}

	return &GeminiChatModel{
		apiKey:     apiKey,
		modelName:  mn,
		apiURL:     baseURL,
		httpClient: &http.Client{},
		logger:     log.New(io.Discard, "[GeminiChatModel] ", log.LstdFlags),
	}, nil
}

// Generate 实现 model.ChatModel 接口
func (g *GeminiChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	for _, opt := range options {
		_ = opt // 本模型的选项均通过构造函数配置
	}

	ctx, span := geminiTracer.Start(ctx, "GeminiChatModel.Generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.model", g.modelName),
			attribute.String("llm.prompt", tracing.SafePrompt(firstUserText(messages))),
		))
	defer span.End()

	msg, err := g.generate(ctx, messages)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return msg, nil
}

// generate 执行实际的REST调用
func (g *GeminiChatModel) generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	reqPayload, err := buildGeminiRequest(messages)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.apiURL, g.modelName, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API 请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(bodyBytes, &geminiResp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w。响应体: %s", err, string(bodyBytes))
	}

	if geminiResp.Error != nil {
		return nil, fmt.Errorf("Gemini API 返回错误 (%s): %s", geminiResp.Error.Status, geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("Gemini API 返回空候选: %s", string(bodyBytes))
	}

	var sb strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return schema.AssistantMessage(sb.String(), nil), nil
}

// Stream 实现 model.ChatModel 接口 (placeholder)
func (g *GeminiChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GeminiChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口。
// 当前业务没有工具调用场景，绑定请求仅做记录。
func (g *GeminiChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) > 0 {
		g.logger.Printf("忽略 %d 个工具绑定请求，Gemini REST客户端未启用工具调用", len(tools))
	}
	return nil
}

// WithTools 实现 model.ToolCallingChatModel 接口
func (g *GeminiChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if err := g.BindTools(tools); err != nil {
		return nil, err
	}
	return g, nil
}

// buildGeminiRequest 把eino消息转换为Gemini请求结构。
// system消息合并到system_instruction；assistant映射为"model"角色；
// MultiContent中的data URI图片转为inline_data。
func buildGeminiRequest(messages []*schema.Message) (*geminiRequest, error) {
	req := &geminiRequest{Contents: make([]geminiContent, 0, len(messages))}

	var systemParts []geminiPart
	for _, msg := range messages {
		if msg == nil {
			continue
		}

		parts, err := messageParts(msg)
		if err != nil {
			return nil, err
		}

		switch msg.Role {
		case schema.System:
			systemParts = append(systemParts, parts...)
		case schema.Assistant:
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: parts})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: parts})
		}
	}

	if len(systemParts) > 0 {
		req.SystemInstruction = &geminiContent{Parts: systemParts}
	}
	if len(req.Contents) == 0 {
		return nil, fmt.Errorf("没有可发送的消息内容")
	}
	return req, nil
}

// messageParts 展开单条消息的文本和图片部分
func messageParts(msg *schema.Message) ([]geminiPart, error) {
	if len(msg.MultiContent) == 0 {
		return []geminiPart{{Text: msg.Content}}, nil
	}

	parts := make([]geminiPart, 0, len(msg.MultiContent))
	for _, part := range msg.MultiContent {
		switch part.Type {
		case schema.ChatMessagePartTypeText:
			parts = append(parts, geminiPart{Text: part.Text})
		case schema.ChatMessagePartTypeImageURL:
			if part.ImageURL == nil {
				return nil, fmt.Errorf("图片部分缺少URL")
			}
			mimeType, data, err := parseDataURI(part.ImageURL.URL)
			if err != nil {
				return nil, err
			}
			parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: mimeType, Data: data}})
		default:
			return nil, fmt.Errorf("不支持的消息部分类型: %s", part.Type)
		}
	}
	return parts, nil
}

// firstUserText 提取第一条user消息的文本，用作追踪属性
func firstUserText(messages []*schema.Message) string {
	for _, msg := range messages {
		if msg == nil || msg.Role != schema.User {
			continue
		}
		if msg.Content != "" {
			return msg.Content
		}
		for _, part := range msg.MultiContent {
			if part.Type == schema.ChatMessagePartTypeText && part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// parseDataURI 解析 "data:image/png;base64,...." 形式的data URI。
// 返回MIME类型和base64负载。非data URI输入视为已是裸base64的PNG。
func parseDataURI(uri string) (string, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "image/png", uri, nil
	}

	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", "", fmt.Errorf("data URI缺少base64标记")
	}

	mimeType := rest[:sep]
	if !strings.HasPrefix(mimeType, "image/") {
		return "", "", fmt.Errorf("仅支持图片类型的data URI，收到: %s", mimeType)
	}
	return mimeType, rest[sep+len(";base64,"):], nil
}

var _ model.ChatModel = (*GeminiChatModel)(nil)
var _ model.ToolCallingChatModel = (*GeminiChatModel)(nil)
