package openai

// Responses API 请求/响应结构
// go-openai 未覆盖 /v1/responses 端点，这里自行定义所需子集

// Message 输入消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MCPTool 远程 MCP 工具授权描述，工具由服务端按需调用
type MCPTool struct {
	Type              string `json:"type"` // "mcp"
	ServerLabel       string `json:"server_label"`
	ServerDescription string `json:"server_description,omitempty"`
	ServerURL         string `json:"server_url"`
	RequireApproval   string `json:"require_approval,omitempty"`
}

// JSONSchemaFormat strict json_schema 输出约束
// 违反 schema 由服务端拒绝，客户端不做二次校验
type JSONSchemaFormat struct {
	Type   string         `json:"type"` // "json_schema"
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// TextConfig 文本输出配置
type TextConfig struct {
	Format *JSONSchemaFormat `json:"format,omitempty"`
}

// CreateResponseRequest 创建响应请求
type CreateResponseRequest struct {
	Model              string      `json:"model"`
	Input              []Message   `json:"input"`
	PreviousResponseID string      `json:"previous_response_id,omitempty"`
	Tools              []MCPTool   `json:"tools,omitempty"`
	Text               *TextConfig `json:"text,omitempty"`
	Store              bool        `json:"store"`
}

// OutputContent 输出项中的内容段
type OutputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// OutputItem 输出项
type OutputItem struct {
	Type    string          `json:"type"`
	Content []OutputContent `json:"content"`
}

// Response 创建响应结果
type Response struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	OutputText string       `json:"output_text"`
	Output     []OutputItem `json:"output"`
}

// Text 提取模型文本输出
// 优先顶层 output_text 便捷字段，否则扫描输出项取第一段 output_text
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	if r.OutputText != "" {
		return r.OutputText
	}
	for _, item := range r.Output {
		for _, c := range item.Content {
			if c.Type == "output_text" && c.Text != "" {
				return c.Text
			}
		}
	}
	return ""
}
