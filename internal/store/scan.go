package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/run-bigpig/stockai/internal/models"
)

// 两个后端共用的行扫描与空值转换

func scanInstruments(rows *sql.Rows) ([]models.Instrument, error) {
	out := []models.Instrument{}
	for rows.Next() {
		var inst models.Instrument
		if err := rows.Scan(&inst.ID, &inst.MarketCode, &inst.Symbol, &inst.Name, &inst.Currency, &inst.Exchange); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func scanInstrument(row *sql.Row) (*models.Instrument, error) {
	var inst models.Instrument
	err := row.Scan(&inst.ID, &inst.MarketCode, &inst.Symbol, &inst.Name, &inst.Currency, &inst.Exchange)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func scanDailyPrices(rows *sql.Rows) ([]models.DailyPrice, error) {
	out := []models.DailyPrice{}
	for rows.Next() {
		var (
			p             models.DailyPrice
			o, h, l, c    sql.NullFloat64
			v             sql.NullInt64
		)
		if err := rows.Scan(&p.InstrumentID, &p.TradingDate, &o, &h, &l, &c, &v); err != nil {
			return nil, err
		}
		p.Open, p.High, p.Low, p.Close = floatPtr(o), floatPtr(h), floatPtr(l), floatPtr(c)
		p.Volume = intPtr(v)
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPriceBars(rows *sql.Rows) ([]models.PriceBar, error) {
	out := []models.PriceBar{}
	for rows.Next() {
		var (
			b          models.PriceBar
			o, h, l, c sql.NullFloat64
			v          sql.NullInt64
		)
		if err := rows.Scan(&b.InstrumentID, &b.Timeframe, &b.TradingDate, &o, &h, &l, &c, &v); err != nil {
			return nil, err
		}
		b.Open, b.High, b.Low, b.Close = floatPtr(o), floatPtr(h), floatPtr(l), floatPtr(c)
		b.Volume = intPtr(v)
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanCorpEvents(rows *sql.Rows) ([]models.CorpEvent, error) {
	out := []models.CorpEvent{}
	for rows.Next() {
		var (
			e       models.CorpEvent
			pubDate string
		)
		if err := rows.Scan(&e.RceptNo, &e.CorpCode, &e.StockCode, &e.CorpName, &e.ReportNm, &pubDate, &e.SourceURL); err != nil {
			return nil, err
		}
		// Postgres DATE 扫出来可能带时间部分
		if len(pubDate) > 10 {
			pubDate = pubDate[:10]
		}
		t, err := time.Parse(time.DateOnly, pubDate)
		if err != nil {
			return nil, fmt.Errorf("解析公告日期 %q 失败: %w", pubDate, err)
		}
		e.PublishedAt = t
		out = append(out, e)
	}
	return out, rows.Err()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
