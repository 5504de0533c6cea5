package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/run-bigpig/stockai/internal/models"
)

// 各端点的条数默认值与上限
const (
	searchDefaultLimit = 10
	eventDefaultLimit  = 50
	eventMaxLimit      = 200
	summaryDefault     = 5
	summaryMaxLimit    = 50
)

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(200, gin.H{"ok": true})
}

func (s *Server) searchInstruments(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(400, gin.H{"error": "q 参数不能为空"})
		return
	}
	market := strings.ToUpper(c.Query("market"))
	limit := queryInt(c, "limit", searchDefaultLimit)

	items, err := s.store.SearchInstruments(c.Request.Context(), q, market, limit)
	if err != nil {
		log.Error("搜索证券失败: %v", err)
		c.JSON(500, gin.H{"error": "搜索失败"})
		return
	}
	c.JSON(200, gin.H{"items": items})
}

// getDailyPrices 优先读 1d K线，为空时回退日线行情表
func (s *Server) getDailyPrices(c *gin.Context) {
	instrumentID, err := strconv.ParseInt(c.Query("instrument_id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "instrument_id 参数无效"})
		return
	}
	fromDate, toDate := c.Query("from_date"), c.Query("to_date")
	if !validDate(fromDate) || !validDate(toDate) {
		c.JSON(400, gin.H{"error": "from_date/to_date 须为 YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()
	bars, err := s.store.PriceBars(ctx, instrumentID, fromDate, toDate)
	if err != nil {
		log.Error("查询 K线失败: %v", err)
		c.JSON(500, gin.H{"error": "查询失败"})
		return
	}
	if len(bars) > 0 {
		c.JSON(200, gin.H{"items": bars})
		return
	}

	prices, err := s.store.DailyPrices(ctx, instrumentID, fromDate, toDate)
	if err != nil {
		log.Error("查询日线失败: %v", err)
		c.JSON(500, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(200, gin.H{"items": prices})
}

func (s *Server) getDartEvents(c *gin.Context) {
	limit := clampRange(queryInt(c, "limit", eventDefaultLimit), 1, eventMaxLimit)
	items, err := s.store.CorpEvents(c.Request.Context(),
		c.Query("stock_code"), c.Query("from_date"), c.Query("to_date"), limit)
	if err != nil {
		log.Error("查询公告失败: %v", err)
		c.JSON(500, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(200, gin.H{"items": items})
}

func (s *Server) getDartSummary(c *gin.Context) {
	stockCode := c.Query("stock_code")
	if stockCode == "" {
		c.JSON(400, gin.H{"error": "stock_code 参数不能为空"})
		return
	}
	limit := clampRange(queryInt(c, "limit", summaryDefault), 1, summaryMaxLimit)
	items, err := s.store.CorpEvents(c.Request.Context(), stockCode, "", "", limit)
	if err != nil {
		log.Error("查询公告失败: %v", err)
		c.JSON(500, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(200, gin.H{
		"stock_code": stockCode,
		"count":      len(items),
		"items":      items,
	})
}

func (s *Server) postChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "请求体无效"})
		return
	}

	result, err := s.chat.Chat(c.Request.Context(), req)
	if err != nil {
		log.Error("对话处理失败 request_id=%s: %v", c.GetString("request_id"), err)
		c.JSON(500, gin.H{"error": "对话处理失败"})
		return
	}
	c.JSON(200, result)
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func clampRange(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
