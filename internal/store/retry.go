package store

import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	retry "github.com/sethvargo/go-retry"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// #region retry
// appendBackoff is the first wait between AppendLogContext attempts.
var appendBackoff = 50 * time.Millisecond

// AppendLogContext is AppendLog with Fibonacci backoff while another
// connection holds the database lock. Other errors return immediately.
func (s *Store) AppendLogContext(ctx context.Context, runID string, entries []perceptron.LogEntry) error {
	b := retry.WithMaxRetries(5, retry.NewFibonacci(appendBackoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.AppendLog(runID, entries)
		if isBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// isBusy reports whether err carries SQLITE_BUSY or SQLITE_LOCKED, including
// their extended codes.
func isBusy(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
// #endregion retry
