package ingest

import (
	"context"

	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/store"
)

func f(v float64) *float64 { return &v }
func i(v int64) *int64     { return &v }

// Seed 写入演示数据：AAPL 与三星电子各两天行情
// 全部走 upsert，重复执行安全
func Seed(ctx context.Context, st store.Store) error {
	aapl := models.Instrument{MarketCode: models.MarketUS, Symbol: "AAPL", Name: "Apple Inc.", Currency: "USD"}
	samsung := models.Instrument{MarketCode: models.MarketKR, Symbol: "005930", Name: "삼성전자", Currency: "KRW"}
	if err := st.UpsertInstrument(ctx, &aapl); err != nil {
		return err
	}
	if err := st.UpsertInstrument(ctx, &samsung); err != nil {
		return err
	}

	prices := []models.DailyPrice{
		{InstrumentID: aapl.ID, TradingDate: "2026-01-06", Close: f(200.0), Volume: i(1000000)},
		{InstrumentID: aapl.ID, TradingDate: "2026-01-07", Close: f(202.0), Volume: i(1200000)},
		{InstrumentID: samsung.ID, TradingDate: "2026-01-06", Close: f(70000), Volume: i(15000000)},
		{InstrumentID: samsung.ID, TradingDate: "2026-01-07", Close: f(71000), Volume: i(16000000)},
	}
	if err := st.UpsertDailyPrices(ctx, prices); err != nil {
		return err
	}

	bars := make([]models.PriceBar, 0, len(prices))
	for _, p := range prices {
		bars = append(bars, models.PriceBar{
			InstrumentID: p.InstrumentID,
			Timeframe:    "1d",
			TradingDate:  p.TradingDate,
			Close:        p.Close,
			Volume:       p.Volume,
		})
	}
	if err := st.UpsertPriceBars(ctx, bars); err != nil {
		return err
	}

	log.Info("演示数据写入完成")
	return nil
}
