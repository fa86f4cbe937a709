package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
)

// ChatMemory 定义了聊天记忆存储的接口
type ChatMemory interface {
	// GetHistory 获取指定会话ID的聊天历史记录。
	// 如果会话不存在，应返回一个空的 Message 切片和 nil 错误。
	GetHistory(sessionId string) ([]*schema.Message, error)

	// AddMessage 向指定会话ID的聊天历史记录中添加一条消息。
	AddMessage(sessionId string, message *schema.Message) error

	// AddMessages 向指定会话ID的聊天历史记录中批量添加多条消息。
	AddMessages(sessionId string, messages []*schema.Message) error

	// ClearHistory 清除指定会话ID的所有聊天历史记录。
	// 如果会话不存在，此操作应静默成功。
	ClearHistory(sessionId string) error

	// Exists 判断会话是否存在（未过期）
	Exists(sessionId string) (bool, error)
}

// sessionEntry 内存会话存储中的单个会话
type sessionEntry struct {
	messages   []*schema.Message
	lastAccess time.Time
}

// InMemoryChatMemory 是 ChatMemory 接口的进程内实现。
// 支持会话TTL和容量上限：过期会话在访问时惰性清除，
// 容量满时淘汰最久未使用的会话。不做持久化。
type InMemoryChatMemory struct {
	mu sync.RWMutex
	// sessions map 的键是 sessionId
	sessions map[string]*sessionEntry
	// ttl 为0时会话不过期
	ttl time.Duration
	// maxSessions 为0时不限制容量
	maxSessions int
}

// InMemoryOption InMemoryChatMemory的配置选项
type InMemoryOption func(*InMemoryChatMemory)

// WithSessionTTL 设置会话过期时长
func WithSessionTTL(ttl time.Duration) InMemoryOption {
	return func(m *InMemoryChatMemory) {
		m.ttl = ttl
	}
}

// WithMaxSessions 设置会话容量上限
func WithMaxSessions(n int) InMemoryOption {
	return func(m *InMemoryChatMemory) {
		m.maxSessions = n
	}
}

// NewInMemoryChatMemory 创建一个新的 InMemoryChatMemory 实例
func NewInMemoryChatMemory(options ...InMemoryOption) *InMemoryChatMemory {
	m := &InMemoryChatMemory{
		sessions: make(map[string]*sessionEntry),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// expired 判断会话是否已过期，调用方需持有锁
func (m *InMemoryChatMemory) expired(entry *sessionEntry) bool {
	return m.ttl > 0 && time.Since(entry.lastAccess) > m.ttl
}

// evictIfFull 容量满时淘汰最久未访问的会话，调用方需持有写锁
func (m *InMemoryChatMemory) evictIfFull() {
	if m.maxSessions <= 0 || len(m.sessions) < m.maxSessions {
		return
	}

	var oldestID string
	var oldestAt time.Time
	for id, entry := range m.sessions {
		if oldestID == "" || entry.lastAccess.Before(oldestAt) {
			oldestID = id
			oldestAt = entry.lastAccess
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
	}
}

// GetHistory 实现 ChatMemory 接口
func (m *InMemoryChatMemory) GetHistory(sessionId string) ([]*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionId]
	if !ok {
		return []*schema.Message{}, nil
	}
	if m.expired(entry) {
		delete(m.sessions, sessionId)
		return []*schema.Message{}, nil
	}

	entry.lastAccess = time.Now()
	// 返回副本，防止外部修改内部存储
	cpy := make([]*schema.Message, len(entry.messages))
	copy(cpy, entry.messages)
	return cpy, nil
}

// AddMessage 实现 ChatMemory 接口
func (m *InMemoryChatMemory) AddMessage(sessionId string, message *schema.Message) error {
	if message == nil {
		return fmt.Errorf("cannot add nil message to chat history for session %s", sessionId)
	}
	return m.AddMessages(sessionId, []*schema.Message{message})
}

// AddMessages 实现 ChatMemory 接口
func (m *InMemoryChatMemory) AddMessages(sessionId string, messages []*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}
	for _, msg := range messages {
		if msg == nil {
			return fmt.Errorf("cannot add nil message in a batch to chat history for session %s", sessionId)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionId]
	if ok && m.expired(entry) {
		delete(m.sessions, sessionId)
		ok = false
	}
	if !ok {
		m.evictIfFull()
		entry = &sessionEntry{messages: make([]*schema.Message, 0, len(messages))}
		m.sessions[sessionId] = entry
	}

	entry.messages = append(entry.messages, messages...)
	entry.lastAccess = time.Now()
	return nil
}

// ClearHistory 实现 ChatMemory 接口
func (m *InMemoryChatMemory) ClearHistory(sessionId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionId)
	return nil
}

// Exists 实现 ChatMemory 接口
func (m *InMemoryChatMemory) Exists(sessionId string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionId]
	if !ok {
		return false, nil
	}
	if m.expired(entry) {
		delete(m.sessions, sessionId)
		return false, nil
	}
	return true, nil
}

var _ ChatMemory = (*InMemoryChatMemory)(nil)
