package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	created           TIMESTAMP,
	scenario          TEXT,
	termination       TEXT,
	initial_capital   REAL,
	final_equity      REAL,
	total_return      REAL,
	annualized_return REAL,
	max_drawdown      REAL,
	sharpe            REAL,
	sortino           REAL,
	calmar            REAL,
	trades            INTEGER,
	wins              INTEGER,
	losses            INTEGER,
	win_rate          REAL,
	profit_factor     REAL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id      TEXT,
	trade_id    TEXT,
	side        TEXT,
	units       REAL,
	entry_time  TIMESTAMP,
	exit_time   TIMESTAMP,
	entry_price REAL,
	exit_price  REAL,
	realized_pl REAL,
	commission  REAL,
	exit_reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);

CREATE TABLE IF NOT EXISTS equity (
	run_id         TEXT,
	time           TIMESTAMP,
	cash           REAL,
	position_value REAL,
	equity         REAL,
	drawdown       REAL
);

CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id);
`
