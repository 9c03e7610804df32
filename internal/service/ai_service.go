package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fair_exam_backend/internal/config"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// AIService 外部分类服务客户端（OpenAI 兼容的 chat/completions 接口）。
// 进程启动时构造一次并注入到各分析组件，不作为全局状态访问。
// 未配置（BaseURL 或 APIKey 为空）视为服务缺席而非错误。
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetConfig 配置热更新入口（configwatcher 回调触发）
func (s *AIService) SetConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}

// Configured 外部服务是否可用
func (s *AIService) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.BaseURL != "" && s.config.APIKey != ""
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat 单轮对话。system 为空时只发送用户消息。
func (s *AIService) Chat(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return "", fmt.Errorf("AI service not configured")
	}

	messages := []AIChatMessage{}
	if system != "" {
		messages = append(messages, AIChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, AIChatMessage{Role: "user", Content: prompt})

	reqBody := ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}

// StripJSONFence 剥离模型输出中可能存在的 ```json 围栏。
// 返回内容仍是未校验的动态负载，调用方必须在边界处解码并校验到固定枚举。
func StripJSONFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```json") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.ReplaceAll(raw, "```", "")
	} else if strings.HasPrefix(raw, "```") {
		raw = strings.ReplaceAll(raw, "```", "")
	}
	return strings.TrimSpace(raw)
}
