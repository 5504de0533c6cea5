package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// Scheduler 每日采集调度
// KR 批次与 US 批次各按配置时刻（首尔时区）触发，非交易日跳过
type Scheduler struct {
	svc       *Service
	krRunTime string
	usRunTime string
}

// NewScheduler 创建调度器
func NewScheduler(svc *Service) *Scheduler {
	return &Scheduler{
		svc:       svc,
		krRunTime: svc.cfg.KRRunTime,
		usRunTime: svc.cfg.USRunTime,
	}
}

// Run 阻塞运行，ctx 取消后返回
func (s *Scheduler) Run(ctx context.Context) error {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return fmt.Errorf("加载首尔时区失败: %w", err)
	}

	krCal := calendar.GetCalendar("xkrx")
	usCal := calendar.GetCalendar("xnys")

	go s.runDaily(ctx, loc, s.usRunTime, func(jobCtx context.Context, now time.Time) {
		if usCal != nil && !usCal.IsBusinessDay(now) {
			log.Info("XNYS 非交易日，跳过 US 批次")
			return
		}
		if err := s.svc.IngestUSDaily(jobCtx); err != nil {
			log.Error("US 日线批次失败: %v", err)
		}
	})

	log.Info("调度已启动（Asia/Seoul），KR %s / US %s", s.krRunTime, s.usRunTime)
	s.runDaily(ctx, loc, s.krRunTime, func(jobCtx context.Context, now time.Time) {
		if krCal != nil && !krCal.IsBusinessDay(now) {
			log.Info("XKRX 非交易日，跳过 KR 批次")
			return
		}
		s.svc.RunKRBatch(jobCtx)
	})
	return ctx.Err()
}

// runDaily 每天 runTime 触发一次 job，直到 ctx 取消
func (s *Scheduler) runDaily(ctx context.Context, loc *time.Location, runTime string, job func(context.Context, time.Time)) {
	hour, minute, err := parseRunTime(runTime)
	if err != nil {
		log.Error("运行时刻 %q 无效: %v", runTime, err)
		return
	}

	for {
		now := time.Now().In(loc)
		next := nextRun(now, hour, minute)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			job(ctx, fired.In(loc))
		}
	}
}

// parseRunTime "18:30" → (18, 30)
func parseRunTime(v string) (int, int, error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("须为 HH:MM 格式")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("小时无效")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("分钟无效")
	}
	return hour, minute, nil
}

// nextRun 今天的 hour:minute，已过则取明天
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
