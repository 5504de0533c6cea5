// Package config 进程级配置，启动时从环境变量加载一次，之后只读
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// 默认值
const (
	DefaultOpenAIModel   = "gpt-5"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultMCPURL        = "http://127.0.0.1:9000/mcp"
	DefaultServerAddr    = ":8000"
	DefaultMCPAddr       = ":9000"
	DefaultDBPath        = "stockai.db"
	DefaultKRRunTime     = "18:30"
	DefaultUSRunTime     = "20:00"
	DefaultNaverPages    = 2
)

// Config 全部运行开关，值传递且不可变
// 模式选择（assistant.SelectMode）是它的纯函数
type Config struct {
	// LLM
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	AIMode        string // "rule" 强制规则模式
	ForceMCP      bool   // LLM 路径预取工具结果作为可信上下文

	// MCP 工具端
	MCPURL       string
	MCPTransport string // "sse" 或空（streamable http）

	// 存储：DATABASE_URL 优先 Postgres，否则 SQLite
	DatabaseURL string
	DBPath      string

	// 服务地址
	ServerAddr string
	MCPAddr    string

	// 采集任务
	DARTAPIKey   string
	KRRunTime    string // KST HH:MM
	USRunTime    string
	NaverPages   int
	LogLevel     string
}

// Load 读取 .env（可选）与环境变量，填充默认值
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getenvDefault("OPENAI_MODEL", DefaultOpenAIModel),
		OpenAIBaseURL: strings.TrimRight(getenvDefault("OPENAI_BASE_URL", DefaultOpenAIBaseURL), "/"),
		AIMode:        strings.ToLower(os.Getenv("AI_MODE")),
		ForceMCP:      parseBool(os.Getenv("FORCE_MCP")),
		MCPURL:        firstNonEmpty(os.Getenv("MCP_SERVER_URL"), os.Getenv("MCP_URL")),
		MCPTransport:  strings.ToLower(os.Getenv("MCP_TRANSPORT")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBPath:        getenvDefault("DB_PATH", DefaultDBPath),
		ServerAddr:    getenvDefault("SERVER_ADDR", DefaultServerAddr),
		MCPAddr:       getenvDefault("MCP_ADDR", DefaultMCPAddr),
		DARTAPIKey:    os.Getenv("DART_API_KEY"),
		KRRunTime:     getenvDefault("KR_DAILY_RUN_TIME", DefaultKRRunTime),
		USRunTime:     getenvDefault("US_DAILY_RUN_TIME", DefaultUSRunTime),
		NaverPages:    getenvInt("NAVER_PAGES", DefaultNaverPages),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
	return cfg
}

// parseBool 与原有脚本保持一致的布尔解析
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
