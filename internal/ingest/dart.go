package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/run-bigpig/stockai/internal/models"
)

const (
	dartListURL   = "https://opendart.fss.or.kr/api/list.json"
	dartDetailURL = "https://dart.fss.or.kr/dsaf001/main.do?rcpNo=%s"

	dartPageCount = 100
	dartStatusOK  = "000"
)

// DartClient 金融监督院 DART 公告列表客户端
type DartClient struct {
	http    *http.Client
	apiKey  string
	listURL string
}

// NewDartClient 创建 DART 客户端
func NewDartClient(apiKey string) *DartClient {
	return &DartClient{
		http:    &http.Client{Timeout: 20 * time.Second},
		apiKey:  apiKey,
		listURL: dartListURL,
	}
}

type dartListResponse struct {
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	TotalCount int        `json:"total_count"`
	List       []dartItem `json:"list"`
}

type dartItem struct {
	RceptNo   string `json:"rcept_no"`
	RceptDt   string `json:"rcept_dt"`
	CorpCode  string `json:"corp_code"`
	StockCode string `json:"stock_code"`
	CorpName  string `json:"corp_name"`
	ReportNm  string `json:"report_nm"`
}

// FetchDisclosures 按日期区间分页拉取公告，日期格式 YYYYMMDD
// 缺失接收编号或日期的条目跳过
func (d *DartClient) FetchDisclosures(ctx context.Context, fromDay, toDay string) ([]models.CorpEvent, error) {
	var events []models.CorpEvent
	for page := 1; ; page++ {
		data, err := d.fetchPage(ctx, fromDay, toDay, page)
		if err != nil {
			return nil, err
		}
		if data.Status != dartStatusOK {
			return nil, fmt.Errorf("DART 接口返回错误: %s", data.Message)
		}
		if len(data.List) == 0 {
			break
		}

		for _, item := range data.List {
			if item.RceptNo == "" || item.RceptDt == "" {
				continue
			}
			publishedAt, err := time.Parse("20060102", item.RceptDt)
			if err != nil {
				continue
			}
			events = append(events, models.CorpEvent{
				RceptNo:     item.RceptNo,
				CorpCode:    item.CorpCode,
				StockCode:   item.StockCode,
				CorpName:    item.CorpName,
				ReportNm:    item.ReportNm,
				PublishedAt: publishedAt,
				SourceURL:   fmt.Sprintf(dartDetailURL, item.RceptNo),
			})
		}

		if page*dartPageCount >= data.TotalCount {
			break
		}
	}
	return events, nil
}

func (d *DartClient) fetchPage(ctx context.Context, fromDay, toDay string, page int) (*dartListResponse, error) {
	params := url.Values{}
	params.Set("crtfc_key", d.apiKey)
	params.Set("bgn_de", fromDay)
	params.Set("end_de", toDay)
	params.Set("page_no", strconv.Itoa(page))
	params.Set("page_count", strconv.Itoa(dartPageCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.listURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 DART 失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DART 返回 HTTP %d", resp.StatusCode)
	}

	var data dartListResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("解析 DART 响应失败: %w", err)
	}
	return &data, nil
}
