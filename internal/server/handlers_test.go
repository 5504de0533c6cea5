package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/store"
)

// fakeChatter 直接回放预设结果
type fakeChatter struct {
	lastReq models.ChatRequest
	result  *models.ChatResult
	err     error
}

func (f *fakeChatter) Chat(_ context.Context, req models.ChatRequest) (*models.ChatResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func testServer(t *testing.T, chat Chatter) (*Server, store.Store) {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
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
	if err := st.UpsertDailyPrices(ctx, []models.DailyPrice{
		{InstrumentID: samsung.ID, TradingDate: "2026-01-06", Close: &c1},
		{InstrumentID: samsung.ID, TradingDate: "2026-01-07", Close: &c2},
	}); err != nil {
		t.Fatalf("写入日线失败: %v", err)
	}

	return New(config.Config{ServerAddr: ":0"}, st, chat), st
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Engine().ServeHTTP(w, req)
	return w
}

// TestHealth 健康检查
func TestHealth(t *testing.T) {
	s, _ := testServer(t, &fakeChatter{})
	w := doGet(t, s, "/health")
	if w.Code != 200 {
		t.Fatalf("状态码不符: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("响应体不符: %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("应注入请求 ID")
	}
}

// TestSearchEndpoint 搜索端点
func TestSearchEndpoint(t *testing.T) {
	s, _ := testServer(t, &fakeChatter{})

	t.Run("缺少关键词", func(t *testing.T) {
		if w := doGet(t, s, "/instruments/search"); w.Code != 400 {
			t.Fatalf("缺 q 应返回 400, got %d", w.Code)
		}
	})

	t.Run("正常搜索", func(t *testing.T) {
		w := doGet(t, s, "/instruments/search?q=0059&market=kr")
		if w.Code != 200 {
			t.Fatalf("状态码不符: %d (%s)", w.Code, w.Body.String())
		}
		var body struct {
			Items []models.Instrument `json:"items"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		// market 查询参数大小写不敏感
		if len(body.Items) != 1 || body.Items[0].Symbol != "005930" {
			t.Fatalf("搜索结果不符: %+v", body.Items)
		}
	})
}

// TestDailyPricesEndpoint K线优先，空时回退日线表
func TestDailyPricesEndpoint(t *testing.T) {
	s, st := testServer(t, &fakeChatter{})
	ctx := context.Background()

	inst, _ := st.InstrumentBySymbol(ctx, models.MarketKR, "005930")

	t.Run("参数校验", func(t *testing.T) {
		if w := doGet(t, s, "/prices/daily?instrument_id=abc&from_date=2026-01-01&to_date=2026-01-31"); w.Code != 400 {
			t.Fatalf("无效 ID 应返回 400, got %d", w.Code)
		}
		if w := doGet(t, s, "/prices/daily?instrument_id=1&from_date=0601&to_date=2026-01-31"); w.Code != 400 {
			t.Fatalf("无效日期应返回 400, got %d", w.Code)
		}
	})

	t.Run("回退日线表", func(t *testing.T) {
		w := doGet(t, s, "/prices/daily?instrument_id="+itoa(inst.ID)+"&from_date=2026-01-01&to_date=2026-01-31")
		if w.Code != 200 {
			t.Fatalf("状态码不符: %d", w.Code)
		}
		var body struct {
			Items []models.DailyPrice `json:"items"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		if len(body.Items) != 2 {
			t.Fatalf("回退结果不符: %+v", body.Items)
		}
	})

	t.Run("K线优先", func(t *testing.T) {
		c := 70500.0
		if err := st.UpsertPriceBars(ctx, []models.PriceBar{
			{InstrumentID: inst.ID, Timeframe: "1d", TradingDate: "2026-01-06", Close: &c},
		}); err != nil {
			t.Fatalf("写入 K线失败: %v", err)
		}
		w := doGet(t, s, "/prices/daily?instrument_id="+itoa(inst.ID)+"&from_date=2026-01-01&to_date=2026-01-31")
		var body struct {
			Items []models.PriceBar `json:"items"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		if len(body.Items) != 1 || body.Items[0].Timeframe != "1d" {
			t.Fatalf("应优先返回 K线: %+v", body.Items)
		}
	})
}

// TestDartSummaryEndpoint 公告摘要端点
func TestDartSummaryEndpoint(t *testing.T) {
	s, _ := testServer(t, &fakeChatter{})

	if w := doGet(t, s, "/events/dart/summary"); w.Code != 400 {
		t.Fatalf("缺 stock_code 应返回 400, got %d", w.Code)
	}

	w := doGet(t, s, "/events/dart/summary?stock_code=005930")
	if w.Code != 200 {
		t.Fatalf("状态码不符: %d", w.Code)
	}
	var body struct {
		StockCode string `json:"stock_code"`
		Count     int    `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.StockCode != "005930" || body.Count != 0 {
		t.Fatalf("摘要不符: %+v", body)
	}
}

// TestChatEndpoint 对话端点转发请求体并透传结果
func TestChatEndpoint(t *testing.T) {
	chat := &fakeChatter{result: &models.ChatResult{
		AssistantMessage: "안내 메시지",
		Trace:            []models.ToolCall{},
	}}
	s, _ := testServer(t, chat)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ai/chat",
		strings.NewReader(`{"message": "005930", "previous_response_id": "resp_1"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Engine().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("状态码不符: %d (%s)", w.Code, w.Body.String())
	}
	if chat.lastReq.Message != "005930" || chat.lastReq.PreviousResponseID != "resp_1" {
		t.Fatalf("请求体未透传: %+v", chat.lastReq)
	}

	var body models.ChatResult
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.AssistantMessage != "안내 메시지" {
		t.Fatalf("消息不符: %q", body.AssistantMessage)
	}
	if body.Trace == nil {
		t.Error("调用记录字段应始终存在")
	}

	// 无效请求体
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/ai/chat", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	s.Engine().ServeHTTP(w, req)
	if w.Code != 400 {
		t.Fatalf("无效请求体应返回 400, got %d", w.Code)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
