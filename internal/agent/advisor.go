package agent

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"job-search-go/internal/types"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// advisorSystemInstruction 职业顾问的系统提示词。
// 输出格式约束较多，否则模型的markdown会破坏前端渲染。
const advisorSystemInstruction = `You are an experienced career advisor helping software professionals with job search, interview preparation, skill development and career growth.

Formatting rules:
- Use clean markdown: short paragraphs, "##" section headings and "-" bullet lists.
- Keep answers focused and practical, under 300 words unless asked for detail.
- Use **bold** only for key terms, never for whole sentences.
- Do not use emojis or horizontal rules.

Always ground advice in the user's stated skills and goals. Ask one clarifying question when the request is ambiguous.`

// advisorGreeting 新会话的开场白
const advisorGreeting = "Hello! I'm your AI career advisor. I can help with job search strategy, interview preparation, resume feedback and career planning. What would you like to talk about?"

// sessionExitWords 终止会话的关键词，不区分大小写
var sessionExitWords = map[string]bool{"exit": true, "quit": true}

// sessionEndedFarewell 会话终止时返回的告别语
const sessionEndedFarewell = "Thanks for chatting! Your session has ended. Start a new conversation anytime you need career advice. Good luck!"

// Advisor 职业顾问服务，封装会话聊天和职业路径生成。
// 会话存储通过 ChatMemory 接口注入，支持内存和Redis两种实现。
type Advisor struct {
	llmModel     model.ToolCallingChatModel
	memory       ChatMemory
	replyTimeout time.Duration
	modelName    string
	logger       *log.Logger
}

// NewAdvisor 创建职业顾问服务
func NewAdvisor(llmModel model.ToolCallingChatModel, memory ChatMemory, replyTimeout time.Duration, modelName string, logger *log.Logger) *Advisor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if replyTimeout <= 0 {
		replyTimeout = 30 * time.Second
	}
	return &Advisor{
		llmModel:     llmModel,
		memory:       memory,
		replyTimeout: replyTimeout,
		modelName:    modelName,
		logger:       logger,
	}
}

// ModelName 返回对外展示的模型名
func (a *Advisor) ModelName() string {
	return a.modelName
}

// StartSession 创建新会话并返回会话ID和开场白
func (a *Advisor) StartSession() (string, string, error) {
	sessionID := uuid.NewString()
	if err := a.memory.AddMessage(sessionID, einoschema.SystemMessage(advisorSystemInstruction)); err != nil {
		return "", "", fmt.Errorf("初始化会话失败: %w", err)
	}
	a.logger.Printf("创建新会话: %s", sessionID)
	return sessionID, advisorGreeting, nil
}

// SendMessage 处理一条会话消息。
// "exit"/"quit"（不区分大小写）终止并删除会话；
// 未知或过期的sessionID会被透明地当作新会话处理，不报错。
func (a *Advisor) SendMessage(ctx context.Context, sessionID, text string) (*types.ChatReply, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("消息内容不能为空")
	}

	if sessionExitWords[strings.ToLower(trimmed)] {
		if sessionID != "" {
			if err := a.memory.ClearHistory(sessionID); err != nil {
				a.logger.Printf("清除会话 %s 失败: %v", sessionID, err)
			}
		}
		return &types.ChatReply{
			Response:     sessionEndedFarewell,
			SessionID:    sessionID,
			SessionEnded: true,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		}, nil
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history, err := a.memory.GetHistory(sessionID)
	if err != nil {
		return nil, fmt.Errorf("读取会话历史失败: %w", err)
	}

	// 空历史意味着新会话或已过期的会话，重新注入系统提示词
	if len(history) == 0 {
		sys := einoschema.SystemMessage(advisorSystemInstruction)
		if err := a.memory.AddMessage(sessionID, sys); err != nil {
			return nil, fmt.Errorf("初始化会话失败: %w", err)
		}
		history = append(history, sys)
	}

	userMsg := einoschema.UserMessage(trimmed)
	messages := append(history, userMsg)

	genCtx, cancel := context.WithTimeout(ctx, a.replyTimeout)
	defer cancel()

	reply, err := a.llmModel.Generate(genCtx, messages)
	if err != nil {
		return nil, fmt.Errorf("模型调用失败: %w", err)
	}

	if err := a.memory.AddMessages(sessionID, []*einoschema.Message{userMsg, reply}); err != nil {
		a.logger.Printf("写入会话 %s 历史失败: %v", sessionID, err)
	}

	return &types.ChatReply{
		Response:  reply.Content,
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Model:     a.modelName,
	}, nil
}

// EndSession 显式终止会话，返回会话此前是否存在
func (a *Advisor) EndSession(sessionID string) (bool, error) {
	existed, err := a.memory.Exists(sessionID)
	if err != nil {
		return false, err
	}
	if !existed {
		return false, nil
	}
	return true, a.memory.ClearHistory(sessionID)
}

// CareerPath 针对目标公司和现有技能生成职业路径建议。
// 模型失败时返回确定性的兜底计划，第二个返回值标记是否为兜底结果。
func (a *Advisor) CareerPath(ctx context.Context, company string, skills []string) (string, bool) {
	prompt := fmt.Sprintf(`As a senior technical recruiter and career coach, create a concrete career path plan for a candidate targeting a software role at %s.

Candidate's current skills: %s

Structure the answer in markdown with these sections:
## Skills to Develop
## Recommended Certifications & Courses
## Project Portfolio Suggestions
## Interview Preparation at %s
## Estimated Timeline

Be specific to %s's known tech stack and hiring process. Keep it under 400 words.`,
		company, strings.Join(skills, ", "), company, company)

	genCtx, cancel := context.WithTimeout(ctx, a.replyTimeout)
	defer cancel()

	reply, err := a.llmModel.Generate(genCtx, []*einoschema.Message{
		einoschema.SystemMessage(advisorSystemInstruction),
		einoschema.UserMessage(prompt),
	})
	if err != nil {
		a.logger.Printf("职业路径生成失败，使用兜底计划: %v", err)
		return fallbackCareerPlan(company, skills), true
	}
	return reply.Content, false
}

// fallbackCareerPlan 模型不可用时的确定性职业路径计划
func fallbackCareerPlan(company string, skills []string) string {
	skillList := strings.Join(skills, ", ")
	if skillList == "" {
		skillList = "your current stack"
	}
	return fmt.Sprintf(`## Skills to Develop
- Deepen your fundamentals in data structures, algorithms and system design.
- Build on %s with production-grade practices: testing, CI/CD and observability.

## Recommended Certifications & Courses
- One cloud certification (AWS, GCP or Azure associate level).
- A system design course with hands-on case studies.

## Project Portfolio Suggestions
- Ship one full-stack project with real users and document it well.
- Contribute fixes to an open-source project used by %s's tech community.

## Interview Preparation at %s
- Practice 50+ coding problems at medium difficulty.
- Prepare behavioral stories using the STAR format.
- Research %s's products and recent engineering blog posts.

## Estimated Timeline
- Months 1-2: fundamentals and coursework.
- Months 3-4: portfolio project and open-source work.
- Months 5-6: interview practice and applications.`,
		skillList, company, company, company)
}
