package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, scenario, termination, initial_capital, final_equity,
		 total_return, annualized_return, max_drawdown, sharpe, sortino, calmar,
		 trades, wins, losses, win_rate, profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Scenario, r.Termination, r.InitialCapital, r.FinalEquity,
		r.TotalReturn, r.AnnualizedReturn, r.MaxDrawdown, r.Sharpe, r.Sortino, r.Calmar,
		r.Trades, r.Wins, r.Losses, r.WinRate, r.ProfitFactor,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, side, units, entry_time, exit_time, entry_price, exit_price,
		 realized_pl, commission, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Side, t.Units, t.EntryTime, t.ExitTime, t.EntryPrice,
		t.ExitPrice, t.RealizedPL, t.Commission, t.ExitReason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, cash, position_value, equity, drawdown)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Cash, e.PositionValue, e.Equity, e.Drawdown,
	)
	return err
}

// GetRun loads one run summary by ID.
func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	var r RunRecord
	err := j.db.QueryRow(`
		SELECT run_id, created, scenario, termination, initial_capital, final_equity,
		       total_return, annualized_return, max_drawdown, sharpe, sortino, calmar,
		       trades, wins, losses, win_rate, profit_factor
		FROM runs WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.Created, &r.Scenario, &r.Termination, &r.InitialCapital, &r.FinalEquity,
		&r.TotalReturn, &r.AnnualizedReturn, &r.MaxDrawdown, &r.Sharpe, &r.Sortino, &r.Calmar,
		&r.Trades, &r.Wins, &r.Losses, &r.WinRate, &r.ProfitFactor,
	)
	if err == sql.ErrNoRows {
		return r, fmt.Errorf("run %q not found", runID)
	}
	return r, err
}

// ListTradesByRun returns a run's trades in journaling order.
func (j *SQLiteJournal) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, trade_id, side, units, entry_time, exit_time, entry_price,
		       exit_price, realized_pl, commission, exit_reason
		FROM trades WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RunID, &t.TradeID, &t.Side, &t.Units, &t.EntryTime,
			&t.ExitTime, &t.EntryPrice, &t.ExitPrice, &t.RealizedPL, &t.Commission,
			&t.ExitReason); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity curve in bar order.
func (j *SQLiteJournal) ListEquityByRun(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, cash, position_value, equity, drawdown
		FROM equity WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var e EquityRecord
		if err := rows.Scan(&e.RunID, &e.Time, &e.Cash, &e.PositionValue, &e.Equity, &e.Drawdown); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
