// REST 网关进程：对话入口与行情查询
package main

import (
	"context"
	"os"

	"github.com/run-bigpig/stockai/internal/assistant"
	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/server"
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

	svc := assistant.New(cfg)
	if err := server.New(cfg, st, svc).Start(); err != nil {
		log.Error("REST 服务退出: %v", err)
		os.Exit(1)
	}
}
