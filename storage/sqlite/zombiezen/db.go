package zombiezen

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// migrations are applied in file name order. The version of the database is
// the number of applied scripts, kept in PRAGMA user_version.
//
//go:embed sql/*.sql
var migrations embed.FS

// NewPool opens a pool of runtime.NumCPU() connections in WAL mode.
func NewPool(dbPath string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool("file:"+dbPath, sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite pool at %s: %w", dbPath, err)
	}
	return pool, nil
}

// Open opens the doc database at dbPath, creating it or bringing its schema
// up to date.
func Open(dbPath string) (*DocStore, error) {
	pool, err := NewPool(dbPath)
	if err != nil {
		return nil, err
	}

	if err := migrate(context.Background(), pool); err != nil {
		pool.Close()
		return nil, err
	}

	return NewDocStore(pool), nil
}

func migrate(ctx context.Context, pool *sqlitex.Pool) (err error) {
	scripts, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(scripts)

	conn, err := pool.Take(ctx)
	if err != nil {
		return err
	}
	defer pool.Put(conn)

	version, err := userVersion(conn)
	if err != nil {
		return err
	}
	if version > len(scripts) {
		return fmt.Errorf("database version %d is newer than this program (%d)", version, len(scripts))
	}

	for i := version; i < len(scripts); i++ {
		script, err := migrations.ReadFile(scripts[i])
		if err != nil {
			return err
		}

		// the version bump is part of the script so both commit together
		body := string(script) + "\nPRAGMA user_version = " + strconv.Itoa(i+1) + ";"
		if err := sqlitex.ExecuteScript(conn, body, nil); err != nil {
			return fmt.Errorf("applying %s: %w", strings.TrimPrefix(scripts[i], "sql/"), err)
		}
	}

	return nil
}

func userVersion(conn *sqlite.Conn) (int, error) {
	var v int
	err := sqlitex.ExecuteTransient(conn, "PRAGMA user_version;", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			v = stmt.ColumnInt(0)
			return nil
		},
	})
	return v, err
}
