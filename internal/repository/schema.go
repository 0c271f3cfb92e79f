package repository

// Schema returns the DDL applied at startup. ReplacingMergeTree keyed on
// (symbol, ts) lets candle backfills and tick replays overwrite in place.
func Schema() []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS coinpulse`,
		`CREATE TABLE IF NOT EXISTS coinpulse.candles_1d (
            ts     DateTime64(3, 'UTC'),
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            vol    Float64
        ) ENGINE = ReplacingMergeTree()
        PARTITION BY toYYYYMM(ts)
        ORDER BY (symbol, ts)`,
		`CREATE TABLE IF NOT EXISTS coinpulse.candles_1w (
            ts     DateTime64(3, 'UTC'),
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            vol    Float64
        ) ENGINE = ReplacingMergeTree()
        PARTITION BY toYear(ts)
        ORDER BY (symbol, ts)`,
		`CREATE TABLE IF NOT EXISTS coinpulse.candles_1mo (
            ts     DateTime64(3, 'UTC'),
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            vol    Float64
        ) ENGINE = ReplacingMergeTree()
        PARTITION BY toYear(ts)
        ORDER BY (symbol, ts)`,
		`CREATE TABLE IF NOT EXISTS coinpulse.ticks (
            ts       DateTime64(3, 'UTC'),
            symbol   LowCardinality(String),
            price    Float64,
            volume   Float64,
            source   LowCardinality(String),
            event_id String
        ) ENGINE = ReplacingMergeTree()
        PARTITION BY toYYYYMMDD(ts)
        ORDER BY (symbol, ts, event_id)
        TTL toDateTime(ts) + INTERVAL 30 DAY`,
	}
}
