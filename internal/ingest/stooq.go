package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/run-bigpig/stockai/internal/models"
)

// 美股日线走 stooq 的免费 CSV 导出，列为 Date,Open,High,Low,Close,Volume
const stooqDailyURL = "https://stooq.com/q/d/l/?s=%s.us&d1=%s&d2=%s&i=d"

// StooqClient 美股日线 CSV 客户端
type StooqClient struct {
	http *http.Client
}

// NewStooqClient 创建 stooq 客户端
func NewStooqClient() *StooqClient {
	return &StooqClient{http: &http.Client{Timeout: 20 * time.Second}}
}

// FetchDailyBars 拉取 [fromDay, toDay] 区间日线，日期格式 YYYYMMDD
func (s *StooqClient) FetchDailyBars(ctx context.Context, symbol, fromDay, toDay string) ([]models.PriceBar, error) {
	url := fmt.Sprintf(stooqDailyURL, strings.ToLower(symbol), fromDay, toDay)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 stooq 失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq 返回 HTTP %d", resp.StatusCode)
	}
	return parseStooqCSV(resp.Body)
}

func parseStooqCSV(r io.Reader) ([]models.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var bars []models.PriceBar
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析 CSV 失败: %w", err)
		}
		// 跳过表头
		if first {
			first = false
			continue
		}
		if len(record) < 6 {
			continue
		}
		if _, err := time.Parse(time.DateOnly, record[0]); err != nil {
			continue
		}
		bar := models.PriceBar{
			Timeframe:   "1d",
			TradingDate: record[0],
			Open:        csvFloat(record[1]),
			High:        csvFloat(record[2]),
			Low:         csvFloat(record[3]),
			Close:       csvFloat(record[4]),
			Volume:      csvInt(record[5]),
		}
		if bar.Close == nil {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func csvFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

func csvInt(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
