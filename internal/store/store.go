// Package store 证券/行情/公告持久层
// DATABASE_URL 配置时使用 Postgres，否则使用本地 SQLite
package store

import (
	"context"

	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/models"
)

// 查询条数上下限
const (
	MinSearchLimit = 1
	MaxSearchLimit = 50
)

// Store 持久层接口，工具服务与 REST 查询共用
type Store interface {
	// Init 建表（幂等）
	Init(ctx context.Context) error

	// SearchInstruments 按代码或名称模糊搜索，market 可选过滤
	SearchInstruments(ctx context.Context, q, market string, limit int) ([]models.Instrument, error)
	// InstrumentBySymbol 按市场+代码精确查找，未找到返回 nil
	InstrumentBySymbol(ctx context.Context, market, symbol string) (*models.Instrument, error)
	// InstrumentsByMarket 某市场全部证券，批量采集用
	InstrumentsByMarket(ctx context.Context, market string) ([]models.Instrument, error)
	// InstrumentCount 证券总数
	InstrumentCount(ctx context.Context) (int64, error)

	// DailyPrices 日线行情，按日期升序，日期为 YYYY-MM-DD
	DailyPrices(ctx context.Context, instrumentID int64, fromDate, toDate string) ([]models.DailyPrice, error)
	// PriceBars 1d K线，按日期升序
	PriceBars(ctx context.Context, instrumentID int64, fromDate, toDate string) ([]models.PriceBar, error)
	// CorpEvents DART 公告，按发布日期降序，stockCode/fromDate/toDate 可为空
	CorpEvents(ctx context.Context, stockCode, fromDate, toDate string, limit int) ([]models.CorpEvent, error)

	// UpsertInstrument 按市场+代码更新或插入，回填 ID
	UpsertInstrument(ctx context.Context, inst *models.Instrument) error
	// UpsertDailyPrices 批量写入日线行情
	UpsertDailyPrices(ctx context.Context, rows []models.DailyPrice) error
	// UpsertPriceBars 批量写入 K线
	UpsertPriceBars(ctx context.Context, rows []models.PriceBar) error
	// UpsertCorpEvents 批量写入公告，按接收编号去重
	UpsertCorpEvents(ctx context.Context, rows []models.CorpEvent) error

	Close() error
}

// Open 按配置选择后端
func Open(cfg config.Config) (Store, error) {
	if cfg.DatabaseURL != "" {
		return OpenPostgres(cfg.DatabaseURL)
	}
	return OpenSQLite(cfg.DBPath)
}

// ClampLimit 限定查询条数在 [MinSearchLimit, MaxSearchLimit]
func ClampLimit(limit int) int {
	if limit < MinSearchLimit {
		return MinSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}
