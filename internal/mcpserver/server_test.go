package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/store"
)

func testStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("打开存储失败: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	samsung := models.Instrument{MarketCode: models.MarketKR, Symbol: "005930", Name: "삼성전자", Currency: "KRW"}
	if err := st.UpsertInstrument(ctx, &samsung); err != nil {
		t.Fatalf("写入证券失败: %v", err)
	}
	c1, c2 := 70000.0, 71000.0
	prices := []models.DailyPrice{
		{InstrumentID: samsung.ID, TradingDate: "2026-01-06", Close: &c1},
		{InstrumentID: samsung.ID, TradingDate: "2026-01-07", Close: &c2},
	}
	if err := st.UpsertDailyPrices(ctx, prices); err != nil {
		t.Fatalf("写入日线失败: %v", err)
	}
	day, _ := time.Parse(time.DateOnly, "2026-08-15")
	events := []models.CorpEvent{{
		RceptNo: "r1", CorpCode: "c1", StockCode: "005930",
		CorpName: "삼성전자", ReportNm: "분기보고서", PublishedAt: day,
	}}
	if err := st.UpsertCorpEvents(ctx, events); err != nil {
		t.Fatalf("写入公告失败: %v", err)
	}
	return st
}

func toolSession(t *testing.T, st store.Store) *mcp.ClientSession {
	t.Helper()
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return NewServer(st) },
		&mcp.StreamableHTTPOptions{Stateless: true},
	)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	session, err := client.Connect(context.Background(), &mcp.StreamableClientTransport{Endpoint: ts.URL}, nil)
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("结果中没有文本内容")
	return ""
}

// TestListTools 三个工具全部注册
func TestListTools(t *testing.T) {
	session := toolSession(t, testStore(t))

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools 失败: %v", err)
	}
	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"search_instruments", "get_daily_prices", "get_corp_events"} {
		if !names[want] {
			t.Errorf("缺少工具 %s", want)
		}
	}
	if len(result.Tools) != 3 {
		t.Fatalf("工具数量不符: %d", len(result.Tools))
	}
}

// TestSearchInstrumentsTool 搜索工具返回命中列表
func TestSearchInstrumentsTool(t *testing.T) {
	session := toolSession(t, testStore(t))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search_instruments",
		Arguments: map[string]any{"q": "삼성"},
	})
	if err != nil {
		t.Fatalf("CallTool 失败: %v", err)
	}
	if result.IsError {
		t.Fatalf("工具返回错误: %+v", result.Content)
	}

	var out SearchOutput
	if err := json.Unmarshal([]byte(extractText(t, result)), &out); err != nil {
		t.Fatalf("解析结果失败: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Symbol != "005930" {
		t.Fatalf("命中不符: %+v", out.Items)
	}
	if out.Items[0].MarketCode != models.MarketKR || out.Items[0].Currency != "KRW" {
		t.Errorf("字段不完整: %+v", out.Items[0])
	}
}

// TestGetDailyPricesTool 取价工具按日期升序返回
func TestGetDailyPricesTool(t *testing.T) {
	st := testStore(t)
	session := toolSession(t, st)

	inst, err := st.InstrumentBySymbol(context.Background(), models.MarketKR, "005930")
	if err != nil || inst == nil {
		t.Fatalf("种子证券缺失: %v", err)
	}

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "get_daily_prices",
		Arguments: map[string]any{
			"instrument_id": inst.ID,
			"from_date":     "2026-01-01",
			"to_date":       "2026-01-31",
		},
	})
	if err != nil {
		t.Fatalf("CallTool 失败: %v", err)
	}

	var out PricesOutput
	if err := json.Unmarshal([]byte(extractText(t, result)), &out); err != nil {
		t.Fatalf("解析结果失败: %v", err)
	}
	if len(out.Items) != 2 {
		t.Fatalf("日线条数不符: %d", len(out.Items))
	}
	if out.Items[0].TradingDate != "2026-01-06" || *out.Items[1].Close != 71000 {
		t.Fatalf("日线内容不符: %+v", out.Items)
	}
	if out.Items[0].Open != nil {
		t.Error("缺失列应为 null")
	}
}

// TestGetCorpEventsTool 公告工具按代码过滤
func TestGetCorpEventsTool(t *testing.T) {
	session := toolSession(t, testStore(t))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_corp_events",
		Arguments: map[string]any{"stock_code": "005930"},
	})
	if err != nil {
		t.Fatalf("CallTool 失败: %v", err)
	}

	var out EventsOutput
	if err := json.Unmarshal([]byte(extractText(t, result)), &out); err != nil {
		t.Fatalf("解析结果失败: %v", err)
	}
	if len(out.Items) != 1 {
		t.Fatalf("公告条数不符: %d", len(out.Items))
	}
	item := out.Items[0]
	if item.RceptNo != "r1" || item.PublishedAt != "2026-08-15" {
		t.Fatalf("公告内容不符: %+v", item)
	}
}
