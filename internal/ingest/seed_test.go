package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/store"
)

// TestSeed 演示数据写入且重复执行安全
func TestSeed(t *testing.T) {
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("打开存储失败: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	if err := Seed(ctx, st); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}
	if err := Seed(ctx, st); err != nil {
		t.Fatalf("重复写入失败: %v", err)
	}

	n, err := st.InstrumentCount(ctx)
	if err != nil || n != 2 {
		t.Fatalf("证券总数不符: %d (%v)", n, err)
	}

	samsung, err := st.InstrumentBySymbol(ctx, models.MarketKR, "005930")
	if err != nil || samsung == nil {
		t.Fatalf("005930 缺失: %v", err)
	}

	prices, err := st.DailyPrices(ctx, samsung.ID, "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("查询日线失败: %v", err)
	}
	if len(prices) != 2 || *prices[1].Close != 71000 {
		t.Fatalf("日线不符: %+v", prices)
	}

	bars, err := st.PriceBars(ctx, samsung.ID, "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("查询 K线失败: %v", err)
	}
	if len(bars) != 2 || bars[0].Timeframe != "1d" {
		t.Fatalf("K线不符: %+v", bars)
	}
}
