package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("构造文档失败: %v", err)
	}
	return doc
}

// TestParseDailyTable 日线表格解析，含分隔行与空行
func TestParseDailyTable(t *testing.T) {
	html := `
<table class="type2">
<tr><th>날짜</th><th>종가</th><th>전일비</th><th>시가</th><th>고가</th><th>저가</th><th>거래량</th></tr>
<tr><td colspan="7" class="gray"></td></tr>
<tr>
  <td>2026.01.07</td><td>71,000</td><td>1,000</td>
  <td>70,200</td><td>71,500</td><td>70,100</td><td>16,000,000</td>
</tr>
<tr>
  <td>2026.01.06</td><td>70,000</td><td>500</td>
  <td>69,800</td><td>70,300</td><td>69,500</td><td>15,000,000</td>
</tr>
<tr><td>&nbsp;</td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
</table>`

	bars := parseDailyTable(docFrom(t, html))
	if len(bars) != 2 {
		t.Fatalf("日线条数不符: %d", len(bars))
	}

	first := bars[0]
	if first.TradingDate != "2026-01-07" {
		t.Errorf("日期转换不符: %s", first.TradingDate)
	}
	if *first.Close != 71000 || *first.Open != 70200 || *first.High != 71500 || *first.Low != 70100 {
		t.Errorf("价格解析不符: %+v", first)
	}
	if *first.Volume != 16000000 {
		t.Errorf("成交量解析不符: %d", *first.Volume)
	}
	if first.Timeframe != "1d" {
		t.Errorf("时间框架不符: %s", first.Timeframe)
	}
	t.Logf("解析出 %d 根日线, 最新 %s 收盘 %g", len(bars), first.TradingDate, *first.Close)
}

// TestParseMarketTable 市值目录解析，代码取自链接
func TestParseMarketTable(t *testing.T) {
	html := `
<table class="type_2">
<tr><th>N</th><th>종목명</th><th>현재가</th></tr>
<tr>
  <td>1</td>
  <td><a href="/item/main.naver?code=005930">삼성전자</a></td>
  <td>71,000</td>
</tr>
<tr>
  <td>2</td>
  <td><a href="/item/main.naver?code=000660&extra=1">SK하이닉스</a></td>
  <td>180,000</td>
</tr>
<tr><td colspan="3"></td></tr>
</table>`

	items := parseMarketTable(docFrom(t, html), "KOSPI")
	if len(items) != 2 {
		t.Fatalf("标的数量不符: %d", len(items))
	}
	if items[0].Symbol != "005930" || items[0].Name != "삼성전자" {
		t.Fatalf("首条解析不符: %+v", items[0])
	}
	if items[1].Symbol != "000660" {
		t.Errorf("带额外参数的链接解析不符: %s", items[1].Symbol)
	}
	if items[0].MarketCode != "KR" || items[0].Currency != "KRW" || items[0].Exchange != "KOSPI" {
		t.Errorf("市场字段不符: %+v", items[0])
	}
}

// TestListInstrumentsPageCap 越界页码返回重复内容时翻页必须终止
func TestListInstrumentsPageCap(t *testing.T) {
	// 每页都返回同一条记录，模拟末页内容被重复返回
	page := `
<table class="type_2">
<tr><td><a href="/item/main.naver?code=005930">SAMSUNG</a></td></tr>
</table>`
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(page))
	}))
	defer ts.Close()

	client := NewNaverClient(1)
	client.marketURL = ts.URL + "/sise?sosok=%d&page=%d"

	items, err := client.ListInstruments(context.Background(), "KOSPI")
	if err != nil {
		t.Fatalf("抓取目录失败: %v", err)
	}
	if requests != maxMarketPages {
		t.Fatalf("翻页应在上限处停止, got %d 次请求", requests)
	}
	if len(items) != maxMarketPages {
		t.Fatalf("标的数量不符: %d", len(items))
	}
	if items[0].Symbol != "005930" || items[0].Exchange != "KOSPI" {
		t.Errorf("首条解析不符: %+v", items[0])
	}
}

// TestParseNumber 千分位与异常输入
func TestParseNumber(t *testing.T) {
	if v := parseNumber("1,234,567"); v == nil || *v != 1234567 {
		t.Errorf("千分位解析失败: %v", v)
	}
	if v := parseNumber("  71,000 "); v == nil || *v != 71000 {
		t.Errorf("空白处理失败: %v", v)
	}
	if parseNumber("") != nil || parseNumber("n/a") != nil {
		t.Error("异常输入应返回 nil")
	}
}

// TestParseNaverDate 日期格式转换
func TestParseNaverDate(t *testing.T) {
	got, ok := parseNaverDate("2026.01.07")
	if !ok || got != "2026-01-07" {
		t.Fatalf("日期转换不符: %q (%v)", got, ok)
	}
	if _, ok := parseNaverDate("날짜"); ok {
		t.Error("表头文本不应通过")
	}
}
