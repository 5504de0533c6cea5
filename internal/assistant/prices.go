package assistant

// priceBar get_daily_prices 返回的单根日线，收盘价可能缺失
type priceBar struct {
	TradingDate string   `json:"trading_date"`
	Open        *float64 `json:"open"`
	High        *float64 `json:"high"`
	Low         *float64 `json:"low"`
	Close       *float64 `json:"close"`
	Volume      *int64   `json:"volume"`
}

// priceStats 按日期升序的日线序列归约出的变动统计
type priceStats struct {
	lastClose *float64
	change    *float64
	changePct *float64
	points    int
}

// summarizePrices 过滤缺失收盘价后计算末收盘、区间变动与涨跌幅
// 全部缺失时各字段为 nil 且 points 为 0；首收盘为 0 时涨跌幅缺失
func summarizePrices(bars []priceBar) priceStats {
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.Close != nil {
			closes = append(closes, *b.Close)
		}
	}
	if len(closes) == 0 {
		return priceStats{}
	}

	first := closes[0]
	last := closes[len(closes)-1]
	change := last - first

	stats := priceStats{
		lastClose: &last,
		change:    &change,
		points:    len(closes),
	}
	if first != 0 {
		pct := change / first * 100
		stats.changePct = &pct
	}
	return stats
}
