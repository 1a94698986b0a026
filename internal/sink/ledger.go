package sink

import (
	"fmt"
	"sync"
	"time"

	"github.com/bvinc/go-sqlite-lite/sqlite3"
	"go.uber.org/zap"
)

const ledgerSchema = `
create table if not exists kills (
    id          integer primary key autoincrement
  , recorded_at text    not null
  , killer      text    not null
  , victim      text    not null
);
`

// Kill is one row of the ledger.
type Kill struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Killer     string    `json:"killer"`
	Victim     string    `json:"victim"`
}

// Ledger records kills in SQLite. The connection is not safe for concurrent
// use, so every access goes through mu.
type Ledger struct {
	mu   sync.Mutex
	conn *sqlite3.Conn
	log  *zap.Logger
	now  func() time.Time
}

func OpenLedger(path string, log *zap.Logger) (*Ledger, error) {
	conn, err := sqlite3.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	if err := conn.Exec(ledgerSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}

	return &Ledger{conn: conn, log: log.Named("ledger"), now: time.Now}, nil
}

func (l *Ledger) OnKill(killer, victim string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return
	}

	err := l.conn.Exec(`insert into kills(recorded_at, killer, victim) values (?, ?, ?)`,
		l.now().UTC().Format(time.RFC3339Nano), killer, victim)
	if err != nil {
		l.log.Warn("Ledger insert failed", zap.String("killer", killer), zap.String("victim", victim), zap.Error(err))
	}
}

// Recent returns up to limit kills, newest first.
func (l *Ledger) Recent(limit int) ([]Kill, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil, fmt.Errorf("ledger closed")
	}

	stmt, err := l.conn.Prepare(`select id, recorded_at, killer, victim from kills order by id desc limit ?`, limit)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var out []Kill
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}

		var k Kill
		var recorded string
		if err := stmt.Scan(&k.ID, &recorded, &k.Killer, &k.Victim); err != nil {
			return nil, err
		}
		k.RecordedAt, _ = time.Parse(time.RFC3339Nano, recorded)
		out = append(out, k)
	}

	return out, nil
}

// Count returns the number of recorded kills.
func (l *Ledger) Count() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return 0, fmt.Errorf("ledger closed")
	}

	stmt, err := l.conn.Prepare(`select count(*) from kills`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	if _, err := stmt.Step(); err != nil {
		return 0, err
	}

	var n int64
	if err := stmt.Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}

	err := l.conn.Close()
	l.conn = nil
	return err
}
