package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/run-bigpig/stockai/internal/models"
)

// Naver 金融页面使用 EUC-KR 编码，解析前先转码
const (
	naverDailyURL  = "https://finance.naver.com/item/sise_day.naver?code=%s&page=%d"
	naverMarketURL = "https://finance.naver.com/sise/sise_market_sum.naver?sosok=%d&page=%d"

	naverUserAgent = "Mozilla/5.0 (compatible; stockai/0.1)"
)

// maxMarketPages 目录页翻页上限
// 越界页码可能返回末页内容而非空页，仅靠空页判断会翻不到头
const maxMarketPages = 60

// NaverClient Naver 金融日线与市场目录抓取客户端
type NaverClient struct {
	http      *http.Client
	pages     int
	marketURL string
}

// NewNaverClient pages 为每个标的抓取的分页数，每页 10 条日线
func NewNaverClient(pages int) *NaverClient {
	if pages < 1 {
		pages = 1
	}
	return &NaverClient{
		http:      &http.Client{Timeout: 20 * time.Second},
		pages:     pages,
		marketURL: naverMarketURL,
	}
}

// FetchDailyBars 抓取单个 KR 标的的日线，按日期降序返回（页面自然顺序）
func (n *NaverClient) FetchDailyBars(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	var bars []models.PriceBar
	for page := 1; page <= n.pages; page++ {
		doc, err := n.fetchDoc(ctx, fmt.Sprintf(naverDailyURL, symbol, page))
		if err != nil {
			return nil, fmt.Errorf("抓取 %s 第 %d 页失败: %w", symbol, page, err)
		}
		pageBars := parseDailyTable(doc)
		if len(pageBars) == 0 {
			break
		}
		bars = append(bars, pageBars...)
	}
	return bars, nil
}

// ListInstruments 抓取市场目录页的全部标的
// market 取 KOSPI 或 KOSDAQ，对应 sosok=0/1
func (n *NaverClient) ListInstruments(ctx context.Context, market string) ([]models.Instrument, error) {
	sosok := 0
	if strings.EqualFold(market, "KOSDAQ") {
		sosok = 1
	}

	var out []models.Instrument
	for page := 1; page <= maxMarketPages; page++ {
		doc, err := n.fetchDoc(ctx, fmt.Sprintf(n.marketURL, sosok, page))
		if err != nil {
			return nil, fmt.Errorf("抓取 %s 目录第 %d 页失败: %w", market, page, err)
		}
		items := parseMarketTable(doc, strings.ToUpper(market))
		if len(items) == 0 {
			break
		}
		out = append(out, items...)
	}
	return out, nil
}

func (n *NaverClient) fetchDoc(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", naverUserAgent)

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(euckrReader(resp.Body))
}

// euckrReader 将 EUC-KR 字节流转为 UTF-8
func euckrReader(r io.Reader) io.Reader {
	return transform.NewReader(r, korean.EUCKR.NewDecoder())
}

// parseDailyTable 解析日线表格
// 列顺序：日期 收盘 涨跌 开盘 最高 最低 成交量
func parseDailyTable(doc *goquery.Document) []models.PriceBar {
	var bars []models.PriceBar
	doc.Find("table.type2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}
		tradingDate, ok := parseNaverDate(cells.Eq(0).Text())
		if !ok {
			return
		}
		bar := models.PriceBar{
			Timeframe:   "1d",
			TradingDate: tradingDate,
			Close:       parseNumber(cells.Eq(1).Text()),
			Open:        parseNumber(cells.Eq(3).Text()),
			High:        parseNumber(cells.Eq(4).Text()),
			Low:         parseNumber(cells.Eq(5).Text()),
			Volume:      parseVolume(cells.Eq(6).Text()),
		}
		if bar.Close == nil {
			return
		}
		bars = append(bars, bar)
	})
	return bars
}

// parseMarketTable 解析市值目录表，代码取自 /item/main.naver?code=XXXXXX 链接
func parseMarketTable(doc *goquery.Document, exchange string) []models.Instrument {
	var out []models.Instrument
	doc.Find("table.type_2 td a[href*='/item/main']").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		idx := strings.Index(href, "code=")
		if idx < 0 {
			return
		}
		symbol := href[idx+len("code="):]
		if amp := strings.IndexByte(symbol, '&'); amp >= 0 {
			symbol = symbol[:amp]
		}
		name := strings.TrimSpace(a.Text())
		if symbol == "" || name == "" {
			return
		}
		out = append(out, models.Instrument{
			MarketCode: models.MarketKR,
			Symbol:     symbol,
			Name:       name,
			Currency:   "KRW",
			Exchange:   exchange,
		})
	})
	return out
}

// parseNaverDate "2026.01.07" → "2026-01-07"
func parseNaverDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("2006.01.02", s)
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// parseNumber 去掉千分位逗号后解析，空串或非数字返回 nil
func parseNumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseVolume(s string) *int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
