package catalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/marcboeker/go-duckdb"
	"github.com/witsml-explorer/backend/internal/logging"
	"github.com/witsml-explorer/backend/internal/models"
)

// Options tunes the DuckDB connection.
type Options struct {
	Threads     int
	MemoryLimit string
}

// DuckStore keeps the catalog in a DuckDB file. An empty path opens an in-memory database.
type DuckStore struct {
	db      *sql.DB
	dbPath  string
	writeMu sync.Mutex // one writer at a time
	logger  *log.Logger
}

var _ Store = (*DuckStore)(nil)

var schema = []string{`
CREATE TABLE IF NOT EXISTS logs (
	well_uid     VARCHAR NOT NULL,
	wellbore_uid VARCHAR NOT NULL,
	uid          VARCHAR NOT NULL,
	name         VARCHAR,
	index_type   VARCHAR NOT NULL,
	direction    VARCHAR,
	index_curve  VARCHAR,
	start_index  VARCHAR,
	end_index    VARCHAR,
	index_unit   VARCHAR,
	PRIMARY KEY (well_uid, wellbore_uid, uid)
)`, `
CREATE TABLE IF NOT EXISTS curves (
	well_uid      VARCHAR NOT NULL,
	wellbore_uid  VARCHAR NOT NULL,
	log_uid       VARCHAR NOT NULL,
	seq           INTEGER NOT NULL,
	uid           VARCHAR,
	mnemonic      VARCHAR NOT NULL CHECK (mnemonic <> ''),
	unit          VARCHAR,
	min_index     VARCHAR,
	max_index     VARCHAR,
	min_dt_index  VARCHAR,
	max_dt_index  VARCHAR,
	description   VARCHAR,
	type_log_data VARCHAR,
	null_value    VARCHAR
)`}

// NewDuckStore opens (or creates) the catalog database.
func NewDuckStore(dbPath string, opts Options) (*DuckStore, error) {
	logger := logging.New("catalog")
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	if opts.MemoryLimit == "" {
		opts.MemoryLimit = "1GB"
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				logger.Warnf("pragma %q failed: %v", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating catalog tables: %w", err)
		}
	}

	where := dbPath
	if where == "" {
		where = "memory"
	}
	logger.Infof("catalog opened (%s)", where)

	return &DuckStore{db: db, dbPath: dbPath, logger: logger}, nil
}

// PutLog replaces the log header and its curves in one transaction.
func (s *DuckStore) PutLog(ctx context.Context, lg models.LogObject, curves []models.LogCurveInfo) error {
	ref := lg.Ref()
	if err := ref.Validate(); err != nil {
		return err
	}
	if _, err := lg.Kind(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO logs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			lg.WellUID, lg.WellboreUID, lg.UID, lg.Name, lg.IndexType, lg.Direction,
			lg.IndexCurve, lg.StartIndex, lg.EndIndex, lg.IndexUnit,
		); err != nil {
			return fmt.Errorf("writing log %s: %w", ref, err)
		}
		return replaceCurves(ctx, tx, ref, curves)
	})
	if err != nil {
		return err
	}
	s.logger.Debugf("stored log %s with %d curves", ref, len(curves))
	return nil
}

// inTx runs fn inside a transaction and rolls back when fn fails.
func (s *DuckStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func replaceCurves(ctx context.Context, tx *sql.Tx, ref models.LogRef, curves []models.LogCurveInfo) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM curves WHERE well_uid = ? AND wellbore_uid = ? AND log_uid = ?`,
		ref.WellUID, ref.WellboreUID, ref.LogUID,
	); err != nil {
		return fmt.Errorf("clearing curves of %s: %w", ref, err)
	}
	if len(curves) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO curves VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing curve insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range curves {
		if _, err := stmt.ExecContext(ctx,
			ref.WellUID, ref.WellboreUID, ref.LogUID, int32(i),
			c.UID, c.Mnemonic, c.Unit,
			c.MinIndex, c.MaxIndex, c.MinDateTimeIndex, c.MaxDateTimeIndex,
			c.CurveDescription, c.TypeLogData, c.NullValue,
		); err != nil {
			return fmt.Errorf("writing curve %q of %s: %w", c.Mnemonic, ref, err)
		}
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const logColumns = `well_uid, wellbore_uid, uid, name, index_type, direction, index_curve, start_index, end_index, index_unit`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (models.LogObject, error) {
	var lg models.LogObject
	var name, direction, indexCurve, start, end, unit sql.NullString
	err := row.Scan(&lg.WellUID, &lg.WellboreUID, &lg.UID, &name, &lg.IndexType,
		&direction, &indexCurve, &start, &end, &unit)
	lg.Name = name.String
	lg.Direction = direction.String
	lg.IndexCurve = indexCurve.String
	lg.StartIndex = start.String
	lg.EndIndex = end.String
	lg.IndexUnit = unit.String
	return lg, err
}

// GetLog returns ErrLogNotFound for an unknown UID triple.
func (s *DuckStore) GetLog(ctx context.Context, ref models.LogRef) (*models.LogObject, error) {
	return getLog(ctx, s.db, ref)
}

func getLog(ctx context.Context, q querier, ref models.LogRef) (*models.LogObject, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM logs WHERE well_uid = ? AND wellbore_uid = ? AND uid = ?`,
		ref.WellUID, ref.WellboreUID, ref.LogUID)
	lg, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("reading log %s: %w", ref, err)
	}
	return &lg, nil
}

// GetCurves returns ErrLogNotFound when the log itself does not exist. The header and
// the curves are read from one snapshot.
func (s *DuckStore) GetCurves(ctx context.Context, ref models.LogRef) ([]models.LogCurveInfo, error) {
	var curves []models.LogCurveInfo
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getLog(ctx, tx, ref); err != nil {
			return err
		}
		var err error
		curves, err = scanCurves(ctx, tx, ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	return curves, nil
}

func scanCurves(ctx context.Context, q querier, ref models.LogRef) ([]models.LogCurveInfo, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT uid, mnemonic, unit, min_index, max_index, min_dt_index, max_dt_index,
		       description, type_log_data, null_value
		FROM curves
		WHERE well_uid = ? AND wellbore_uid = ? AND log_uid = ?
		ORDER BY seq`,
		ref.WellUID, ref.WellboreUID, ref.LogUID)
	if err != nil {
		return nil, fmt.Errorf("querying curves of %s: %w", ref, err)
	}
	defer rows.Close()

	curves := make([]models.LogCurveInfo, 0)
	for rows.Next() {
		var c models.LogCurveInfo
		var uid, unit, minIdx, maxIdx, minDt, maxDt, desc, typ, null sql.NullString
		if err := rows.Scan(&uid, &c.Mnemonic, &unit, &minIdx, &maxIdx, &minDt, &maxDt, &desc, &typ, &null); err != nil {
			return nil, fmt.Errorf("scanning curve of %s: %w", ref, err)
		}
		c.UID = uid.String
		c.Unit = unit.String
		c.MinIndex = minIdx.String
		c.MaxIndex = maxIdx.String
		c.MinDateTimeIndex = minDt.String
		c.MaxDateTimeIndex = maxDt.String
		c.CurveDescription = desc.String
		c.TypeLogData = typ.String
		c.NullValue = null.String
		curves = append(curves, c)
	}
	return curves, rows.Err()
}

// UpdateCurves returns ErrLogNotFound when the log does not exist.
func (s *DuckStore) UpdateCurves(ctx context.Context, ref models.LogRef, curves []models.LogCurveInfo) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getLog(ctx, tx, ref); err != nil {
			return err
		}
		return replaceCurves(ctx, tx, ref, curves)
	})
}

// ListLogs returns the logs of a wellbore ordered by UID.
func (s *DuckStore) ListLogs(ctx context.Context, wellUID, wellboreUID string) ([]models.LogObject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM logs WHERE well_uid = ? AND wellbore_uid = ? ORDER BY uid`,
		wellUID, wellboreUID)
	if err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.LogObject, 0)
	for rows.Next() {
		lg, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning log: %w", err)
		}
		logs = append(logs, lg)
	}
	return logs, rows.Err()
}

// DeleteLog removes a log and its curves.
func (s *DuckStore) DeleteLog(ctx context.Context, ref models.LogRef) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM logs WHERE well_uid = ? AND wellbore_uid = ? AND uid = ?`,
			ref.WellUID, ref.WellboreUID, ref.LogUID)
		if err != nil {
			return fmt.Errorf("deleting log %s: %w", ref, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrLogNotFound, ref)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM curves WHERE well_uid = ? AND wellbore_uid = ? AND log_uid = ?`,
			ref.WellUID, ref.WellboreUID, ref.LogUID); err != nil {
			return fmt.Errorf("deleting curves of %s: %w", ref, err)
		}
		return nil
	})
}

// Close releases the database.
func (s *DuckStore) Close() error {
	return s.db.Close()
}
