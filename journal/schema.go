package journal

const Schema = `
CREATE TABLE IF NOT EXISTS market_bars (
	bar_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	time DATETIME NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume INTEGER NOT NULL,
	source TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_market_bars_symbol_time ON market_bars(symbol, time);

CREATE TABLE IF NOT EXISTS watchlists (
	watchlist_id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	symbols TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS signals (
	signal_id TEXT PRIMARY KEY,
	correlation_id TEXT NOT NULL,
	strategy_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	strength REAL NOT NULL,
	reason TEXT NOT NULL,
	params_hash TEXT NOT NULL,
	target_price REAL,
	stop_loss REAL,
	metadata TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_symbol_time ON signals(symbol, time);

CREATE TABLE IF NOT EXISTS risk_decisions (
	correlation_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	signal_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	rule_id TEXT NOT NULL,
	rule_name TEXT NOT NULL,
	approved INTEGER NOT NULL,
	reason TEXT NOT NULL,
	metadata TEXT NOT NULL,
	time DATETIME NOT NULL,
	PRIMARY KEY (correlation_id, seq)
);
`
