// MCP 工具服务进程：以 Streamable HTTP 暴露行情工具
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/mcpserver"
	"github.com/run-bigpig/stockai/internal/store"
)

var log = logger.New("main")

func main() {
	cfg := config.Load()
	if cfg.LogLevel != "" {
		logger.SetGlobalLevel(logger.ParseLevel(cfg.LogLevel))
	}

	st, err := store.Open(cfg)
	if err != nil {
		log.Error("打开存储失败: %v", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Init(context.Background()); err != nil {
		log.Error("初始化存储失败: %v", err)
		os.Exit(1)
	}

	srv := mcpserver.NewServer(st)
	log.Info("MCP 工具服务监听 %s", cfg.MCPAddr)
	if err := http.ListenAndServe(cfg.MCPAddr, mcpserver.HTTPHandler(srv)); err != nil {
		log.Error("MCP 服务退出: %v", err)
		os.Exit(1)
	}
}
