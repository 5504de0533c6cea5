package models

import "time"

// 市场代码常量
const (
	MarketKR = "KR"
	MarketUS = "US"
)

// Instrument 证券基础信息（instruments 表）
type Instrument struct {
	ID         int64  `json:"id"`
	MarketCode string `json:"market_code"` // KR / US
	Symbol     string `json:"symbol"`      // KR: "005930", US: "AAPL"
	Name       string `json:"name"`
	Currency   string `json:"currency"` // KRW / USD
	Exchange   string `json:"exchange,omitempty"`
}

// DailyPrice 日线行情（daily_prices 表，种子/演示数据）
// OHLCV 均可能缺失，用指针表示 NULL
type DailyPrice struct {
	InstrumentID int64    `json:"instrument_id"`
	TradingDate  string   `json:"trading_date"` // YYYY-MM-DD
	Open         *float64 `json:"open"`
	High         *float64 `json:"high"`
	Low          *float64 `json:"low"`
	Close        *float64 `json:"close"`
	Volume       *int64   `json:"volume"`
}

// PriceBar K线行情（price_bars 表，采集任务写入）
type PriceBar struct {
	InstrumentID int64    `json:"instrument_id"`
	Timeframe    string   `json:"timeframe"` // 目前仅 "1d"
	TradingDate  string   `json:"trading_date"`
	Open         *float64 `json:"open"`
	High         *float64 `json:"high"`
	Low          *float64 `json:"low"`
	Close        *float64 `json:"close"`
	Volume       *int64   `json:"volume"`
}

// CorpEvent DART 公司公告（corp_events 表）
type CorpEvent struct {
	RceptNo     string    `json:"rcept_no"` // 接收编号，主键
	CorpCode    string    `json:"corp_code"`
	StockCode   string    `json:"stock_code,omitempty"`
	CorpName    string    `json:"corp_name"`
	ReportNm    string    `json:"report_nm"`
	PublishedAt time.Time `json:"published_at"`
	SourceURL   string    `json:"source_url,omitempty"`
}
