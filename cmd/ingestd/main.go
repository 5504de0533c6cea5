// 采集进程：默认常驻调度，-job 指定时单次执行
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/ingest"
	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/store"
)

var log = logger.New("main")

func main() {
	job := flag.String("job", "", "单次任务：sync / kr / us / dart")
	symbol := flag.String("symbol", "", "仅采集指定 KR 标的（配合 -job kr）")
	flag.Parse()

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := st.Init(ctx); err != nil {
		log.Error("初始化存储失败: %v", err)
		os.Exit(1)
	}

	svc := ingest.New(cfg, st)

	switch *job {
	case "":
		if err := ingest.NewScheduler(svc).Run(ctx); err != nil && err != context.Canceled {
			log.Error("调度退出: %v", err)
			os.Exit(1)
		}
	case "sync":
		exitOn(svc.SyncKRInstruments(ctx))
	case "kr":
		if *symbol != "" {
			n, err := svc.IngestKRDailySymbol(ctx, *symbol)
			exitOn(err)
			log.Info("采集 %s 日线 %d 条", *symbol, n)
			return
		}
		exitOn(svc.IngestKRDaily(ctx))
	case "us":
		exitOn(svc.IngestUSDaily(ctx))
	case "dart":
		exitOn(svc.IngestDart(ctx))
	default:
		log.Error("未知任务: %s", *job)
		os.Exit(2)
	}
}

func exitOn(err error) {
	if err != nil {
		log.Error("任务失败: %v", err)
		os.Exit(1)
	}
}
