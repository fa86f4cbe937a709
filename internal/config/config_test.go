package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 验证YAML配置能否被正确加载并填充默认值
func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `
server:
  address: ":9090"
gemini:
  model: "gemini-2.0-flash"
  qpm: 120
jsearch:
  api_key: "test-rapid-key"
aggregator:
  default_location: "India"
ranker:
  enabled: true
  timeout: "20s"
chat:
  max_sessions: 50
  session_ttl: "10m"
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	config, err := LoadConfig(configPath)

	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, config, "配置对象不应为 nil")

	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, 120, config.Gemini.QPM)
	assert.Equal(t, "test-rapid-key", config.JSearch.APIKey)
	assert.Equal(t, "India", config.Aggregator.DefaultLocation)
	assert.Equal(t, "20s", config.Ranker.Timeout)
	assert.Equal(t, 50, config.Chat.MaxSessions)

	// 缺省字段应被填充默认值
	assert.Equal(t, "https://jsearch.p.rapidapi.com/search", config.JSearch.APIURL)
	assert.Equal(t, "10s", config.Aggregator.ProviderTimeout)
	assert.Equal(t, "90s", config.Resume.AnalysisTimeout)
}

// TestLoadConfigMissingFileInTest 测试环境下找不到配置文件时应返回默认配置
func TestLoadConfigMissingFileInTest(t *testing.T) {
	config, err := LoadConfig("")

	require.NoError(t, err, "测试环境下缺少配置文件不应报错")
	require.NotNil(t, config)

	assert.Equal(t, ":8080", config.Server.Address)
	assert.Equal(t, "United States", config.Aggregator.DefaultLocation)
	assert.NotEmpty(t, config.Gemini.Model)
}

// TestGetDuration 验证时长解析和默认值回退
func TestGetDuration(t *testing.T) {
	assert.Equal(t, 15*time.Second, GetDuration("15s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("not-a-duration", time.Minute))
}
