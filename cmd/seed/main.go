// 演示数据写入工具
package main

import (
	"context"
	"os"

	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/ingest"
	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/store"
)

var log = logger.New("main")

func main() {
	cfg := config.Load()

	st, err := store.Open(cfg)
	if err != nil {
		log.Error("打开存储失败: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		log.Error("初始化存储失败: %v", err)
		os.Exit(1)
	}
	if err := ingest.Seed(ctx, st); err != nil {
		log.Error("写入演示数据失败: %v", err)
		os.Exit(1)
	}
}
