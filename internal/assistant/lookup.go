package assistant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/run-bigpig/stockai/internal/models"
)

// 工具名称常量，与 MCP 服务端一致
const (
	toolSearchInstruments = "search_instruments"
	toolGetDailyPrices    = "get_daily_prices"
)

// 近 30 天主查询窗口
const primaryWindowDays = 30

// 演示数据兜底窗口：数据源可能只有种子数据落在这个区间
// TODO: 种子数据接入真实数据源后改为相对偏移
const (
	demoWindowFrom = "2026-01-01"
	demoWindowTo   = "2026-01-31"
)

// lookupResult 一轮工具查询的结果与完整调用记录
type lookupResult struct {
	instrument *searchHit
	prices     []priceBar
	trace      []models.ToolCall
}

// toolLookup 执行 搜索 → 解析 → 取价 的串行工具调用序列
// 会话按轮次开启，所有退出路径上保证释放；两次取价尝试都会计入记录
func (s *Service) toolLookup(ctx context.Context, msg string) (*lookupResult, error) {
	sess, err := s.openSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	res := &lookupResult{trace: []models.ToolCall{}}

	searchArgs := map[string]any{"q": msg, "limit": maxCandidates}
	searchData, err := sess.Call(ctx, toolSearchInstruments, searchArgs)
	if err != nil {
		return nil, err
	}
	res.trace = append(res.trace, models.ToolCall{
		Tool:   toolSearchInstruments,
		Args:   searchArgs,
		Result: searchData,
	})

	var hits []searchHit
	decodeItems(searchData, &hits)
	res.instrument = pickInstrument(hits, msg)
	if res.instrument == nil {
		return res, nil
	}

	toDate := time.Now()
	fromDate := toDate.AddDate(0, 0, -primaryWindowDays)
	prices, err := s.fetchPrices(ctx, sess, res,
		fromDate.Format(time.DateOnly), toDate.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}

	if len(prices) == 0 {
		prices, err = s.fetchPrices(ctx, sess, res, demoWindowFrom, demoWindowTo)
		if err != nil {
			return nil, err
		}
	}
	res.prices = prices
	return res, nil
}

// fetchPrices 调用 get_daily_prices 并记录，结果按日期升序
func (s *Service) fetchPrices(ctx context.Context, sess ToolSession, res *lookupResult, fromDate, toDate string) ([]priceBar, error) {
	args := map[string]any{
		"instrument_id": res.instrument.ID,
		"from_date":     fromDate,
		"to_date":       toDate,
	}
	data, err := sess.Call(ctx, toolGetDailyPrices, args)
	if err != nil {
		return nil, err
	}
	res.trace = append(res.trace, models.ToolCall{
		Tool:   toolGetDailyPrices,
		Args:   args,
		Result: data,
	})

	var prices []priceBar
	decodeItems(data, &prices)
	return prices, nil
}

// decodeItems 将松散载荷中的 items 列表重解析为目标类型
// 形状不符时静默留空，由未解析/空序列分支兜底
func decodeItems(payload map[string]any, v any) {
	items, ok := payload["items"]
	if !ok || items == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, v)
}

// dataUsed 从调用记录提取工具名列表
func dataUsed(trace []models.ToolCall) []string {
	used := make([]string, 0, len(trace))
	for _, t := range trace {
		used = append(used, t.Tool)
	}
	return used
}
