package probe

import "context"

// DBPinger captures the subset of *sql.DB used for connection attempts. Any
// database/sql driver works, including lib/pq and the clickhouse-go/v2
// "clickhouse" driver.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// NewDBPingProbe creates a Func that asks the pool for a live connection.
// *sql.DB opens connections lazily, so the first ping is the first real dial.
func NewDBPingProbe(name string, db DBPinger) Func {
	return func(ctx context.Context) error {
		if db == nil {
			return nilComponentError(name, "db client")
		}
		if err := db.PingContext(contextOrBackground(ctx)); err != nil {
			return failed(name, err)
		}
		return nil
	}
}
