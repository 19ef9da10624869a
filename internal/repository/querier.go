package repository

import (
	"database/sql"
	"time"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so the same repository
// code runs standalone or inside the ingestion transaction.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Timestamps are stored as unix seconds; these helpers keep the conversion
// in one place.

func toUnix(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func unixTime(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}

func fromUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
