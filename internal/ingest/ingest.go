// Package ingest 行情与公告采集
// KR 日线与市场目录来自 Naver 金融，US 日线来自 stooq，公告来自 DART
package ingest

import (
	"context"
	"time"

	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/store"
)

var log = logger.New("ingest")

// 默认采集窗口
const (
	usWindowDays     = 30
	dartWindowDays   = 7
	compactDayLayout = "20060102"
)

// Service 采集服务
type Service struct {
	cfg   config.Config
	st    store.Store
	naver *NaverClient
	stooq *StooqClient
	dart  *DartClient
}

// New 创建采集服务，未配置 DART_API_KEY 时公告采集不可用
func New(cfg config.Config, st store.Store) *Service {
	s := &Service{
		cfg:   cfg,
		st:    st,
		naver: NewNaverClient(cfg.NaverPages),
		stooq: NewStooqClient(),
	}
	if cfg.DARTAPIKey != "" {
		s.dart = NewDartClient(cfg.DARTAPIKey)
	}
	return s
}

// SyncKRInstruments 同步 KOSPI/KOSDAQ 全部标的目录
func (s *Service) SyncKRInstruments(ctx context.Context) error {
	total := 0
	for _, market := range []string{"KOSPI", "KOSDAQ"} {
		items, err := s.naver.ListInstruments(ctx, market)
		if err != nil {
			return err
		}
		for i := range items {
			if err := s.st.UpsertInstrument(ctx, &items[i]); err != nil {
				return err
			}
		}
		log.Info("同步 %s 标的 %d 个", market, len(items))
		total += len(items)
	}
	log.Info("KR 标的目录同步完成，共 %d 个", total)
	return nil
}

// IngestKRDailySymbol 采集单个 KR 标的的日线
func (s *Service) IngestKRDailySymbol(ctx context.Context, symbol string) (int, error) {
	inst, err := s.st.InstrumentBySymbol(ctx, models.MarketKR, symbol)
	if err != nil {
		return 0, err
	}
	if inst == nil {
		log.Warn("KR 标的 %s 不存在，跳过", symbol)
		return 0, nil
	}
	bars, err := s.naver.FetchDailyBars(ctx, symbol)
	if err != nil {
		return 0, err
	}
	for i := range bars {
		bars[i].InstrumentID = inst.ID
	}
	if err := s.st.UpsertPriceBars(ctx, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// IngestKRDaily 批量采集全部 KR 标的的日线
// 单个标的失败只记日志，不中断整批
func (s *Service) IngestKRDaily(ctx context.Context) error {
	insts, err := s.st.InstrumentsByMarket(ctx, models.MarketKR)
	if err != nil {
		return err
	}
	total := 0
	for _, inst := range insts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := s.IngestKRDailySymbol(ctx, inst.Symbol)
		if err != nil {
			log.Error("采集 %s 日线失败: %v", inst.Symbol, err)
			continue
		}
		total += n
	}
	log.Info("KR 日线采集完成，共 %d 条（%d 个标的）", total, len(insts))
	return nil
}

// IngestUSDaily 批量采集全部 US 标的的日线，窗口为最近 30 天
func (s *Service) IngestUSDaily(ctx context.Context) error {
	insts, err := s.st.InstrumentsByMarket(ctx, models.MarketUS)
	if err != nil {
		return err
	}
	toDay := time.Now().Format(compactDayLayout)
	fromDay := time.Now().AddDate(0, 0, -usWindowDays).Format(compactDayLayout)

	total := 0
	for _, inst := range insts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bars, err := s.stooq.FetchDailyBars(ctx, inst.Symbol, fromDay, toDay)
		if err != nil {
			log.Error("采集 %s 日线失败: %v", inst.Symbol, err)
			continue
		}
		for i := range bars {
			bars[i].InstrumentID = inst.ID
		}
		if err := s.st.UpsertPriceBars(ctx, bars); err != nil {
			return err
		}
		total += len(bars)
	}
	log.Info("US 日线采集完成，共 %d 条（%d 个标的）", total, len(insts))
	return nil
}

// IngestDart 采集公告，窗口为最近 7 天
func (s *Service) IngestDart(ctx context.Context) error {
	if s.dart == nil {
		log.Warn("未配置 DART_API_KEY，跳过公告采集")
		return nil
	}
	toDay := time.Now().Format(compactDayLayout)
	fromDay := time.Now().AddDate(0, 0, -dartWindowDays).Format(compactDayLayout)

	events, err := s.dart.FetchDisclosures(ctx, fromDay, toDay)
	if err != nil {
		return err
	}
	if err := s.st.UpsertCorpEvents(ctx, events); err != nil {
		return err
	}
	log.Info("公告采集完成，共 %d 条（%s~%s）", len(events), fromDay, toDay)
	return nil
}

// RunKRBatch KR 日常批次：目录同步、日线采集、公告采集
func (s *Service) RunKRBatch(ctx context.Context) {
	if err := s.SyncKRInstruments(ctx); err != nil {
		log.Error("同步 KR 标的目录失败: %v", err)
	}
	if err := s.IngestKRDaily(ctx); err != nil {
		log.Error("KR 日线批次失败: %v", err)
	}
	if err := s.IngestDart(ctx); err != nil {
		log.Error("公告批次失败: %v", err)
	}
}
