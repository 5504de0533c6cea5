package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/run-bigpig/stockai/internal/models"

	_ "github.com/lib/pq"
)

// PostgresStore 共享部署用的 Postgres 后端
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres 按 DATABASE_URL 连接
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 Postgres 失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("连接 Postgres 失败: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Init 建表（幂等）
func (s *PostgresStore) Init(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS instruments (
			id BIGSERIAL PRIMARY KEY,
			market_code TEXT NOT NULL,
			symbol TEXT NOT NULL,
			name TEXT NOT NULL,
			currency TEXT NOT NULL,
			exchange TEXT,
			UNIQUE (market_code, symbol)
		);`,
		`CREATE TABLE IF NOT EXISTS daily_prices (
			instrument_id BIGINT NOT NULL,
			trading_date DATE NOT NULL,
			open DOUBLE PRECISION, high DOUBLE PRECISION,
			low DOUBLE PRECISION, close DOUBLE PRECISION,
			volume BIGINT,
			PRIMARY KEY (instrument_id, trading_date)
		);`,
		`CREATE TABLE IF NOT EXISTS price_bars (
			instrument_id BIGINT NOT NULL,
			timeframe TEXT NOT NULL,
			trading_date DATE NOT NULL,
			open DOUBLE PRECISION, high DOUBLE PRECISION,
			low DOUBLE PRECISION, close DOUBLE PRECISION,
			volume BIGINT,
			PRIMARY KEY (instrument_id, timeframe, trading_date)
		);`,
		`CREATE TABLE IF NOT EXISTS corp_events (
			rcept_no TEXT PRIMARY KEY,
			corp_code TEXT NOT NULL,
			stock_code TEXT,
			corp_name TEXT NOT NULL,
			report_nm TEXT NOT NULL,
			published_at DATE NOT NULL,
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

// SearchInstruments 按代码或名称模糊搜索（忽略大小写）
func (s *PostgresStore) SearchInstruments(ctx context.Context, q, market string, limit int) ([]models.Instrument, error) {
	pattern := "%" + q + "%"
	query := `SELECT id, market_code, symbol, name, currency, COALESCE(exchange, '')
		FROM instruments WHERE (symbol ILIKE $1 OR name ILIKE $2)`
	args := []any{pattern, pattern}
	if market != "" {
		query += fmt.Sprintf(` AND market_code = $%d`, len(args)+1)
		args = append(args, market)
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args)+1)
	args = append(args, ClampLimit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstruments(rows)
}

// InstrumentBySymbol 按市场+代码精确查找
func (s *PostgresStore) InstrumentBySymbol(ctx context.Context, market, symbol string) (*models.Instrument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, market_code, symbol, name, currency, COALESCE(exchange, '')
		FROM instruments WHERE market_code = $1 AND symbol = $2`, market, symbol)
	return scanInstrument(row)
}

// InstrumentsByMarket 某市场全部证券
func (s *PostgresStore) InstrumentsByMarket(ctx context.Context, market string) ([]models.Instrument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, market_code, symbol, name, currency, COALESCE(exchange, '')
		FROM instruments WHERE market_code = $1 ORDER BY symbol`, market)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstruments(rows)
}

// InstrumentCount 证券总数
func (s *PostgresStore) InstrumentCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM instruments`).Scan(&n)
	return n, err
}

// DailyPrices 日线行情，按日期升序
func (s *PostgresStore) DailyPrices(ctx context.Context, instrumentID int64, fromDate, toDate string) ([]models.DailyPrice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT instrument_id, to_char(trading_date, 'YYYY-MM-DD'), open, high, low, close, volume
		FROM daily_prices
		WHERE instrument_id = $1 AND trading_date >= $2 AND trading_date <= $3
		ORDER BY trading_date ASC`, instrumentID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDailyPrices(rows)
}

// PriceBars 1d K线，按日期升序
func (s *PostgresStore) PriceBars(ctx context.Context, instrumentID int64, fromDate, toDate string) ([]models.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT instrument_id, timeframe, to_char(trading_date, 'YYYY-MM-DD'), open, high, low, close, volume
		FROM price_bars
		WHERE instrument_id = $1 AND timeframe = '1d' AND trading_date >= $2 AND trading_date <= $3
		ORDER BY trading_date ASC`, instrumentID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPriceBars(rows)
}

// CorpEvents DART 公告，按发布日期降序
func (s *PostgresStore) CorpEvents(ctx context.Context, stockCode, fromDate, toDate string, limit int) ([]models.CorpEvent, error) {
	query := `SELECT rcept_no, corp_code, COALESCE(stock_code, ''), corp_name, report_nm,
		to_char(published_at, 'YYYY-MM-DD'), COALESCE(source_url, '')
		FROM corp_events WHERE 1=1`
	var args []any
	if stockCode != "" {
		query += fmt.Sprintf(` AND stock_code = $%d`, len(args)+1)
		args = append(args, stockCode)
	}
	if fromDate != "" {
		query += fmt.Sprintf(` AND published_at >= $%d`, len(args)+1)
		args = append(args, fromDate)
	}
	if toDate != "" {
		query += fmt.Sprintf(` AND published_at <= $%d`, len(args)+1)
		args = append(args, toDate)
	}
	query += fmt.Sprintf(` ORDER BY published_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCorpEvents(rows)
}

// UpsertInstrument 按市场+代码更新或插入，回填 ID
func (s *PostgresStore) UpsertInstrument(ctx context.Context, inst *models.Instrument) error {
	return s.db.QueryRowContext(ctx,
		`INSERT INTO instruments (market_code, symbol, name, currency, exchange)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (market_code, symbol) DO UPDATE SET
			name = EXCLUDED.name,
			currency = EXCLUDED.currency,
			exchange = EXCLUDED.exchange
		RETURNING id`,
		inst.MarketCode, inst.Symbol, inst.Name, inst.Currency, nullString(inst.Exchange)).Scan(&inst.ID)
}

// UpsertDailyPrices 批量写入日线行情
func (s *PostgresStore) UpsertDailyPrices(ctx context.Context, rowsIn []models.DailyPrice) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO daily_prices (instrument_id, trading_date, open, high, low, close, volume)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (instrument_id, trading_date) DO UPDATE SET
				open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
				close = EXCLUDED.close, volume = EXCLUDED.volume`)
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
func (s *PostgresStore) UpsertPriceBars(ctx context.Context, rowsIn []models.PriceBar) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO price_bars (instrument_id, timeframe, trading_date, open, high, low, close, volume)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (instrument_id, timeframe, trading_date) DO UPDATE SET
				open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
				close = EXCLUDED.close, volume = EXCLUDED.volume`)
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
func (s *PostgresStore) UpsertCorpEvents(ctx context.Context, rowsIn []models.CorpEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO corp_events (rcept_no, corp_code, stock_code, corp_name, report_nm, published_at, source_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (rcept_no) DO UPDATE SET
				corp_code = EXCLUDED.corp_code, stock_code = EXCLUDED.stock_code,
				corp_name = EXCLUDED.corp_name, report_nm = EXCLUDED.report_nm,
				published_at = EXCLUDED.published_at, source_url = EXCLUDED.source_url`)
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
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
