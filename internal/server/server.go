// Package server REST 网关
// 对前端暴露健康检查、证券搜索、日线查询、公告查询与对话入口
package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/store"
)

var log = logger.New("server")

// Chatter 对话编排入口
type Chatter interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResult, error)
}

// Server REST 服务
type Server struct {
	cfg    config.Config
	store  store.Store
	chat   Chatter
	engine *gin.Engine
}

// New 创建 REST 服务并注册路由
func New(cfg config.Config, st store.Store, chat Chatter) *Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		store:  st,
		chat:   chat,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(cors())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.getHealth)
	s.engine.GET("/instruments/search", s.searchInstruments)
	s.engine.GET("/prices/daily", s.getDailyPrices)
	s.engine.GET("/events/dart", s.getDartEvents)
	s.engine.GET("/events/dart/summary", s.getDartSummary)
	s.engine.POST("/ai/chat", s.postChat)
}

// Start 阻塞监听
func (s *Server) Start() error {
	log.Info("REST 服务监听 %s", s.cfg.ServerAddr)
	return s.engine.Run(s.cfg.ServerAddr)
}

// Engine 暴露路由引擎，测试用
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// requestID 为每个请求注入 X-Request-ID
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// cors 开发期全放行，与前端同机联调
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
