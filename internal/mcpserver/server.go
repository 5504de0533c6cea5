// Package mcpserver 行情工具的 MCP 服务端
// 暴露 search_instruments / get_daily_prices / get_corp_events 三个工具，
// 既供编排服务的规则路径调用，也可作为 Responses API 的远程工具服务器
package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/store"
)

var log = logger.New("mcpserver")

const (
	serverName    = "stockai-market"
	serverVersion = "0.1.0"

	defaultSearchLimit = 10
	defaultEventLimit  = 20
	defaultPriceDays   = 30
)

// SearchInput search_instruments 入参
type SearchInput struct {
	Q      string `json:"q" jsonschema:"search keyword, symbol or name fragment"`
	Market string `json:"market,omitempty" jsonschema:"optional market filter, KR or US"`
	Limit  int    `json:"limit,omitempty" jsonschema:"max results, 1-50, default 10"`
}

// SearchItem 搜索结果条目
type SearchItem struct {
	ID         int64  `json:"id"`
	MarketCode string `json:"market_code"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Currency   string `json:"currency"`
}

// SearchOutput search_instruments 出参
type SearchOutput struct {
	Items []SearchItem `json:"items"`
}

// PricesInput get_daily_prices 入参
type PricesInput struct {
	InstrumentID int64  `json:"instrument_id" jsonschema:"instrument id from search_instruments"`
	FromDate     string `json:"from_date,omitempty" jsonschema:"YYYY-MM-DD, default 30 days ago"`
	ToDate       string `json:"to_date,omitempty" jsonschema:"YYYY-MM-DD, default today"`
}

// PriceItem 日线条目，未知值为 null
type PriceItem struct {
	TradingDate string   `json:"trading_date"`
	Open        *float64 `json:"open"`
	High        *float64 `json:"high"`
	Low         *float64 `json:"low"`
	Close       *float64 `json:"close"`
	Volume      *int64   `json:"volume"`
}

// PricesOutput get_daily_prices 出参
type PricesOutput struct {
	Items []PriceItem `json:"items"`
}

// EventsInput get_corp_events 入参
type EventsInput struct {
	StockCode string `json:"stock_code,omitempty" jsonschema:"optional 6-digit KRX stock code"`
	FromDate  string `json:"from_date,omitempty" jsonschema:"YYYY-MM-DD"`
	ToDate    string `json:"to_date,omitempty" jsonschema:"YYYY-MM-DD"`
	Limit     int    `json:"limit,omitempty" jsonschema:"max results, default 20"`
}

// EventItem 公告条目
type EventItem struct {
	RceptNo     string `json:"rcept_no"`
	StockCode   string `json:"stock_code"`
	CorpName    string `json:"corp_name"`
	ReportNm    string `json:"report_nm"`
	PublishedAt string `json:"published_at"`
	SourceURL   string `json:"source_url"`
}

// EventsOutput get_corp_events 出参
type EventsOutput struct {
	Items []EventItem `json:"items"`
}

// NewServer 创建 MCP 服务端并注册全部工具
func NewServer(st store.Store) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "search_instruments",
			Description: "Search instruments by symbol or name fragment. Returns candidate instruments with ids.",
		},
		func(ctx context.Context, req *mcp.CallToolRequest, args SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
			return handleSearch(ctx, st, args)
		},
	)

	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "get_daily_prices",
			Description: "Get daily OHLCV prices for an instrument id in a date range, ascending by date.",
		},
		func(ctx context.Context, req *mcp.CallToolRequest, args PricesInput) (*mcp.CallToolResult, PricesOutput, error) {
			return handlePrices(ctx, st, args)
		},
	)

	mcp.AddTool(srv,
		&mcp.Tool{
			Name:        "get_corp_events",
			Description: "Get DART corporate disclosures, newest first. Filter by stock code and date range.",
		},
		func(ctx context.Context, req *mcp.CallToolRequest, args EventsInput) (*mcp.CallToolResult, EventsOutput, error) {
			return handleEvents(ctx, st, args)
		},
	)

	return srv
}

// HTTPHandler 以 Streamable HTTP 形态对外提供
func HTTPHandler(srv *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return srv
	}, nil)
}

func handleSearch(ctx context.Context, st store.Store, args SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := args.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	insts, err := st.SearchInstruments(ctx, args.Q, args.Market, store.ClampLimit(limit))
	if err != nil {
		log.Error("搜索证券失败: %v", err)
		return nil, SearchOutput{}, err
	}
	out := SearchOutput{Items: make([]SearchItem, 0, len(insts))}
	for _, inst := range insts {
		out.Items = append(out.Items, SearchItem{
			ID:         inst.ID,
			MarketCode: inst.MarketCode,
			Symbol:     inst.Symbol,
			Name:       inst.Name,
			Currency:   inst.Currency,
		})
	}
	return nil, out, nil
}

func handlePrices(ctx context.Context, st store.Store, args PricesInput) (*mcp.CallToolResult, PricesOutput, error) {
	toDate := args.ToDate
	if toDate == "" {
		toDate = time.Now().Format(time.DateOnly)
	}
	fromDate := args.FromDate
	if fromDate == "" {
		fromDate = time.Now().AddDate(0, 0, -defaultPriceDays).Format(time.DateOnly)
	}
	prices, err := st.DailyPrices(ctx, args.InstrumentID, fromDate, toDate)
	if err != nil {
		log.Error("查询日线失败: %v", err)
		return nil, PricesOutput{}, err
	}
	out := PricesOutput{Items: make([]PriceItem, 0, len(prices))}
	for _, p := range prices {
		out.Items = append(out.Items, PriceItem{
			TradingDate: p.TradingDate,
			Open:        p.Open,
			High:        p.High,
			Low:         p.Low,
			Close:       p.Close,
			Volume:      p.Volume,
		})
	}
	return nil, out, nil
}

func handleEvents(ctx context.Context, st store.Store, args EventsInput) (*mcp.CallToolResult, EventsOutput, error) {
	limit := args.Limit
	if limit == 0 {
		limit = defaultEventLimit
	}
	events, err := st.CorpEvents(ctx, args.StockCode, args.FromDate, args.ToDate, limit)
	if err != nil {
		log.Error("查询公告失败: %v", err)
		return nil, EventsOutput{}, err
	}
	out := EventsOutput{Items: make([]EventItem, 0, len(events))}
	for _, e := range events {
		out.Items = append(out.Items, eventItem(e))
	}
	return nil, out, nil
}

func eventItem(e models.CorpEvent) EventItem {
	return EventItem{
		RceptNo:     e.RceptNo,
		StockCode:   e.StockCode,
		CorpName:    e.CorpName,
		ReportNm:    e.ReportNm,
		PublishedAt: e.PublishedAt.Format(time.DateOnly),
		SourceURL:   e.SourceURL,
	}
}
