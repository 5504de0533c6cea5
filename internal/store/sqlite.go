package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/models"

	_ "modernc.org/sqlite"
)

var sqliteLog = logger.New("store:sqlite")

// SQLiteStore 本地 SQLite 后端，默认选项
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite 打开（必要时创建）本地数据库文件
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("连接 SQLite 失败: %w", err)
	}

	// 写多读少的采集场景用 WAL 更稳
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		sqliteLog.Warn("设置 WAL 失败: %v", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Init 建表（幂等）
func (s *SQLiteStore) Init(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS instruments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			market_code TEXT NOT NULL,
			symbol TEXT NOT NULL,
			name TEXT NOT NULL,
			currency TEXT NOT NULL,
			exchange TEXT,
			UNIQUE (market_code, symbol)
		);`,
		`CREATE TABLE IF NOT EXISTS daily_prices (
			instrument_id INTEGER NOT NULL,
			trading_date TEXT NOT NULL,
			open REAL, high REAL, low REAL, close REAL,
			volume INTEGER,
			PRIMARY KEY (instrument_id, trading_date)
		);`,
		`CREATE TABLE IF NOT EXISTS price_bars (
			instrument_id INTEGER NOT NULL,
			timeframe TEXT NOT NULL,
			trading_date TEXT NOT NULL,
			open REAL, high REAL, low REAL, close REAL,
			volume INTEGER,
			PRIMARY KEY (instrument_id, timeframe, trading_date)
		);`,
		`CREATE TABLE IF NOT EXISTS corp_events (
			rcept_no TEXT PRIMARY KEY,
			corp_code TEXT NOT NULL,
			stock_code TEXT,
			corp_name TEXT NOT NULL,
			report_nm TEXT NOT NULL,
			published_at TEXT NOT NULL,
			source_url TEXT
		);`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}
	return nil
}

// SearchInstruments 按代码或名称模糊搜索
func (s *SQLiteStore) SearchInstruments(ctx context.Context, q, market string, limit int) ([]models.Instrument, error) {
	pattern := "%" + q + "%"
	query := `SELECT id, market_code, symbol, name, currency, COALESCE(exchange, '')
		FROM instruments WHERE (symbol LIKE ? OR name LIKE ?)`
	args := []any{pattern, pattern}
	if market != "" {
		query += ` AND market_code = ?`
		args = append(args, market)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, ClampLimit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstruments(rows)
}

// InstrumentBySymbol 按市场+代码精确查找
func (s *SQLiteStore) InstrumentBySymbol(ctx context.Context, market, symbol string) (*models.Instrument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, market_code, symbol, name, currency, COALESCE(exchange, '')
		FROM instruments WHERE market_code = ? AND symbol = ?`, market, symbol)
	return scanInstrument(row)
}

// InstrumentsByMarket 某市场全部证券
func (s *SQLiteStore) InstrumentsByMarket(ctx context.Context, market string) ([]models.Instrument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, market_code, symbol, name, currency, COALESCE(exchange, '')
		FROM instruments WHERE market_code = ? ORDER BY symbol`, market)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstruments(rows)
}

// InstrumentCount 证券总数
func (s *SQLiteStore) InstrumentCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM instruments`).Scan(&n)
	return n, err
}

// DailyPrices 日线行情，按日期升序
func (s *SQLiteStore) DailyPrices(ctx context.Context, instrumentID int64, fromDate, toDate string) ([]models.DailyPrice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT instrument_id, trading_date, open, high, low, close, volume
		FROM daily_prices
		WHERE instrument_id = ? AND trading_date >= ? AND trading_date <= ?
		ORDER BY trading_date ASC`, instrumentID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDailyPrices(rows)
}

// PriceBars 1d K线，按日期升序
func (s *SQLiteStore) PriceBars(ctx context.Context, instrumentID int64, fromDate, toDate string) ([]models.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT instrument_id, timeframe, trading_date, open, high, low, close, volume
		FROM price_bars
		WHERE instrument_id = ? AND timeframe = '1d' AND trading_date >= ? AND trading_date <= ?
		ORDER BY trading_date ASC`, instrumentID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPriceBars(rows)
}

// CorpEvents DART 公告，按发布日期降序
func (s *SQLiteStore) CorpEvents(ctx context.Context, stockCode, fromDate, toDate string, limit int) ([]models.CorpEvent, error) {
	query := `SELECT rcept_no, corp_code, COALESCE(stock_code, ''), corp_name, report_nm, published_at, COALESCE(source_url, '')
		FROM corp_events WHERE 1=1`
	var args []any
	if stockCode != "" {
		query += ` AND stock_code = ?`
		args = append(args, stockCode)
	}
	if fromDate != "" {
		query += ` AND published_at >= ?`
		args = append(args, fromDate)
	}
	if toDate != "" {
		query += ` AND published_at <= ?`
		args = append(args, toDate)
	}
	query += ` ORDER BY published_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCorpEvents(rows)
}

// UpsertInstrument 按市场+代码更新或插入，回填 ID
func (s *SQLiteStore) UpsertInstrument(ctx context.Context, inst *models.Instrument) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO instruments (market_code, symbol, name, currency, exchange)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (market_code, symbol) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency,
			exchange = excluded.exchange`,
		inst.MarketCode, inst.Symbol, inst.Name, inst.Currency, nullString(inst.Exchange))
	if err != nil {
		return err
	}
	return s.db.QueryRowContext(ctx,
		`SELECT id FROM instruments WHERE market_code = ? AND symbol = ?`,
		inst.MarketCode, inst.Symbol).Scan(&inst.ID)
}

// UpsertDailyPrices 批量写入日线行情
func (s *SQLiteStore) UpsertDailyPrices(ctx context.Context, rowsIn []models.DailyPrice) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO daily_prices (instrument_id, trading_date, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (instrument_id, trading_date) DO UPDATE SET
				open = excluded.open, high = excluded.high, low = excluded.low,
				close = excluded.close, volume = excluded.volume`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rowsIn {
			if _, err := stmt.ExecContext(ctx, r.InstrumentID, r.TradingDate,
				nullFloat(r.Open), nullFloat(r.High), nullFloat(r.Low), nullFloat(r.Close), nullInt(r.Volume)); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertPriceBars 批量写入 K线
func (s *SQLiteStore) UpsertPriceBars(ctx context.Context, rowsIn []models.PriceBar) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO price_bars (instrument_id, timeframe, trading_date, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (instrument_id, timeframe, trading_date) DO UPDATE SET
				open = excluded.open, high = excluded.high, low = excluded.low,
				close = excluded.close, volume = excluded.volume`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rowsIn {
			if _, err := stmt.ExecContext(ctx, r.InstrumentID, r.Timeframe, r.TradingDate,
				nullFloat(r.Open), nullFloat(r.High), nullFloat(r.Low), nullFloat(r.Close), nullInt(r.Volume)); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertCorpEvents 批量写入公告
func (s *SQLiteStore) UpsertCorpEvents(ctx context.Context, rowsIn []models.CorpEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO corp_events (rcept_no, corp_code, stock_code, corp_name, report_nm, published_at, source_url)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (rcept_no) DO UPDATE SET
				corp_code = excluded.corp_code, stock_code = excluded.stock_code,
				corp_name = excluded.corp_name, report_nm = excluded.report_nm,
				published_at = excluded.published_at, source_url = excluded.source_url`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rowsIn {
			if _, err := stmt.ExecContext(ctx, r.RceptNo, r.CorpCode, nullString(r.StockCode),
				r.CorpName, r.ReportNm, r.PublishedAt.Format(time.DateOnly), nullString(r.SourceURL)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx 事务包装
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
