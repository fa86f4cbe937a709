package agent

import (
	"fmt"
	"testing"
	"time"

	einoschema "github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInMemoryChatMemoryBasic 基本的读写和清除
func TestInMemoryChatMemoryBasic(t *testing.T) {
	m := NewInMemoryChatMemory()

	history, err := m.GetHistory("absent")
	require.NoError(t, err)
	assert.Empty(t, history, "不存在的会话应返回空切片")

	require.NoError(t, m.AddMessage("s1", einoschema.UserMessage("hello")))
	require.NoError(t, m.AddMessages("s1", []*einoschema.Message{
		einoschema.AssistantMessage("hi", nil),
	}))

	history, err = m.GetHistory("s1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	require.NoError(t, m.ClearHistory("s1"))
	existed, err := m.Exists("s1")
	require.NoError(t, err)
	assert.False(t, existed)
}

// TestInMemoryChatMemoryTTL 过期会话在访问时被清除
func TestInMemoryChatMemoryTTL(t *testing.T) {
	m := NewInMemoryChatMemory(WithSessionTTL(10 * time.Millisecond))

	require.NoError(t, m.AddMessage("s1", einoschema.UserMessage("hello")))
	time.Sleep(25 * time.Millisecond)

	existed, err := m.Exists("s1")
	require.NoError(t, err)
	assert.False(t, existed, "过期会话应视为不存在")

	history, err := m.GetHistory("s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestInMemoryChatMemoryCapacity 容量满时淘汰最久未使用的会话
func TestInMemoryChatMemoryCapacity(t *testing.T) {
	m := NewInMemoryChatMemory(WithMaxSessions(3))

	for i := 0; i < 3; i++ {
		require.NoError(t, m.AddMessage(fmt.Sprintf("s%d", i), einoschema.UserMessage("hello")))
		time.Sleep(2 * time.Millisecond) // 保证lastAccess可区分
	}

	// 访问s0使其变为最近使用
	_, err := m.GetHistory("s0")
	require.NoError(t, err)

	// 插入第4个会话，应淘汰最久未访问的s1
	require.NoError(t, m.AddMessage("s3", einoschema.UserMessage("hello")))

	existed, _ := m.Exists("s1")
	assert.False(t, existed, "最久未使用的会话应被淘汰")
	for _, id := range []string{"s0", "s2", "s3"} {
		existed, _ := m.Exists(id)
		assert.True(t, existed, "会话 %s 应保留", id)
	}
}

// TestInMemoryChatMemoryNilMessage 写入nil消息应报错
func TestInMemoryChatMemoryNilMessage(t *testing.T) {
	m := NewInMemoryChatMemory()
	assert.Error(t, m.AddMessage("s1", nil))
	assert.Error(t, m.AddMessages("s1", []*einoschema.Message{nil}))
}
