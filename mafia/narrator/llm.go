package narrator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LLMClient はテキスト生成の能力。失敗はエラーで返し、
// フォールバックの判断は呼び出し側（ナレーターサービス）が行う。
type LLMClient interface {
	GenerateText(prompt string, maxTokens int, temperature float64) (string, error)
}

// DeepSeekClient はOpenRouter経由でDeepSeekのchat completions APIを呼ぶクライアント
type DeepSeekClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "deepseek/deepseek-chat"
)

func NewDeepSeekClient(apiKey, baseURL, model string, logger *zap.Logger) *DeepSeekClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &DeepSeekClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			// DeepSeek R1は本文の代わりにreasoningを返すことがある
			Reasoning string `json:"reasoning"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *DeepSeekClient) GenerateText(prompt string, maxTokens int, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("DeepSeek API key is not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Title", "Mafia Online Game")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error connecting to OpenRouter API: %w", err)
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp.StatusCode, &decoded)
	}

	if len(decoded.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	msg := decoded.Choices[0].Message
	if msg.Content != "" {
		return msg.Content, nil
	}
	if msg.Reasoning != "" {
		return msg.Reasoning, nil
	}
	return "", errors.New("no content or reasoning in message")
}

func (c *DeepSeekClient) apiError(status int, decoded *chatResponse) error {
	switch {
	case status == http.StatusUnauthorized:
		return errors.New("invalid API key - check your DeepSeek API credentials")
	case status == http.StatusTooManyRequests:
		return errors.New("rate limit exceeded - too many requests")
	case status == http.StatusInternalServerError:
		return errors.New("DeepSeek API server error - try again later")
	case decoded.Error != nil && decoded.Error.Message != "":
		return fmt.Errorf("DeepSeek API error: %s", decoded.Error.Message)
	default:
		return fmt.Errorf("DeepSeek API error: HTTP %d", status)
	}
}
