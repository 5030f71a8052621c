package solver

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/framemend/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
)

// ResultStore persists per-child solver results together with the lineage
// maps in a DuckDB file, so governing values stay queryable after the repair
// session itself is gone.
type ResultStore struct {
	db        *sql.DB
	dbPath    string
	batch     []models.MemberResult
	batchSize int
	count     int
	lastError error
}

// NewResultStore creates a result store in the given directory.
func NewResultStore(dir string, sessionID string) (*ResultStore, error) {
	return NewResultStoreAtPath(filepath.Join(dir, fmt.Sprintf("results_%s.duckdb", sessionID)))
}

// NewResultStoreAtPath creates a result store at a specific path.
func NewResultStoreAtPath(dbPath string) (*ResultStore, error) {
	connector, err := duckdb.NewConnector(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating duckdb connector: %w", err)
	}
	db := sql.OpenDB(connector)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			line_id   INTEGER NOT NULL,
			load_case INTEGER NOT NULL,
			iteration INTEGER NOT NULL,
			max_disp  DOUBLE NOT NULL,
			position  DOUBLE
		)
	`); err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("creating results table: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS lineage (
			child_id  INTEGER PRIMARY KEY,
			mother_id INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("creating lineage table: %w", err)
	}

	return &ResultStore{
		db:        db,
		dbPath:    dbPath,
		batchSize: 10000,
		batch:     make([]models.MemberResult, 0, 10000),
	}, nil
}

// PutLineage replaces the stored child-to-mother index.
func (rs *ResultStore) PutLineage(lineage models.Lineage) error {
	if _, err := rs.db.Exec(`DELETE FROM lineage`); err != nil {
		return fmt.Errorf("clearing lineage: %w", err)
	}
	tx, err := rs.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO lineage (child_id, mother_id) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for child, mother := range lineage.ChildToMother {
		if _, err := stmt.Exec(child, mother); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("inserting lineage %d->%d: %w", child, mother, err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

// Add buffers one result for insertion. Results are batched and written with
// the DuckDB appender.
func (rs *ResultStore) Add(result models.MemberResult) {
	rs.batch = append(rs.batch, result)
	rs.count++
	if len(rs.batch) >= rs.batchSize {
		if err := rs.flushBatch(); err != nil {
			rs.lastError = err
			fmt.Printf("[ResultStore] flush error: %v\n", err)
		}
	}
}

// LastError returns the last error that occurred during a batch flush.
func (rs *ResultStore) LastError() error {
	return rs.lastError
}

func (rs *ResultStore) flushBatch() error {
	if len(rs.batch) == 0 {
		return nil
	}

	conn, err := rs.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("getting connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("driver connection is not duckdb")
		}
		appender, err := duckdb.NewAppenderFromConn(dConn, "", "results")
		if err != nil {
			return fmt.Errorf("creating appender: %w", err)
		}
		defer appender.Close()

		for _, r := range rs.batch {
			if err := appender.AppendRow(
				int32(r.LineID),
				int32(r.LoadCase),
				int32(r.Iteration),
				r.MaxDisplacement,
				r.Position,
			); err != nil {
				return fmt.Errorf("appending result for line %d: %w", r.LineID, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return err
	}

	rs.batch = rs.batch[:0]
	return nil
}

// Finalize flushes pending results and indexes the results table.
func (rs *ResultStore) Finalize() error {
	if err := rs.flushBatch(); err != nil {
		return err
	}
	if _, err := rs.db.Exec(`CREATE INDEX IF NOT EXISTS idx_results_line ON results (line_id)`); err != nil {
		return fmt.Errorf("indexing results: %w", err)
	}
	return nil
}

// Len returns the number of stored results.
func (rs *ResultStore) Len() int {
	return rs.count
}

// Governing computes the worst-case displacement per mother straight in SQL:
// every scored child joins its mother through the lineage table and the
// largest magnitude wins.
func (rs *ResultStore) Governing(ctx context.Context) (map[int]models.GoverningResult, error) {
	rows, err := rs.db.QueryContext(ctx, `
		SELECT l.mother_id, r.line_id, r.max_disp
		FROM results r
		JOIN lineage l ON l.child_id = r.line_id
		ORDER BY l.mother_id, r.line_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying governing results: %w", err)
	}
	defer rows.Close()

	governing := make(map[int]models.GoverningResult)
	for rows.Next() {
		var mother, child int
		var disp float64
		if err := rows.Scan(&mother, &child, &disp); err != nil {
			return nil, err
		}
		best, ok := governing[mother]
		if !ok || math.Abs(disp) > math.Abs(best.MaxDisplacement) {
			best.MotherID = mother
			best.GoverningChild = child
			best.MaxDisplacement = disp
		}
		governing[mother] = best
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Child counts come from the lineage table, scored or not.
	counts, err := rs.db.QueryContext(ctx, `SELECT mother_id, COUNT(*) FROM lineage GROUP BY mother_id`)
	if err != nil {
		return nil, err
	}
	defer counts.Close()
	for counts.Next() {
		var mother, n int
		if err := counts.Scan(&mother, &n); err != nil {
			return nil, err
		}
		if g, ok := governing[mother]; ok {
			g.ChildCount = n
			governing[mother] = g
		}
	}
	return governing, counts.Err()
}

// Close closes the database and removes the backing file.
func (rs *ResultStore) Close() error {
	if rs.db != nil {
		rs.db.Close()
		rs.db = nil
	}
	if rs.dbPath != "" {
		os.Remove(rs.dbPath)
	}
	return nil
}
