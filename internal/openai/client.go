// Package openai OpenAI Responses API 客户端
// 仅覆盖本项目用到的非流式 /v1/responses 调用
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPDoer HTTP 客户端接口，测试时可注入
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError 服务端返回的非 2xx 错误
type APIError struct {
	StatusCode int
	Body       string
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	return fmt.Sprintf("Responses API 错误 (HTTP %d): %s", e.StatusCode, e.Body)
}

// Client Responses API 客户端
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	apiKey     string
}

// NewClient 创建客户端，baseURL 以 /v1 结尾
func NewClient(apiKey, baseURL string, httpClient HTTPDoer) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// CreateResponse 同步创建响应
func (c *Client) CreateResponse(ctx context.Context, apiReq *CreateResponseRequest) (*Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return &apiResp, nil
}
