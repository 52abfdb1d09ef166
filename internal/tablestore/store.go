// Package tablestore persists interpolation tables in SQLite, keyed by
// configuration fingerprint and purpose name.
package tablestore

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/eloss/internal/logging"
	"github.com/danielpatrickdp/eloss/internal/numeric"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS interpolation_tables (
	fingerprint   TEXT NOT NULL,
	name          TEXT NOT NULL,
	dims          INTEGER NOT NULL,
	meta_json     TEXT NOT NULL,
	x_nodes       BLOB NOT NULL,
	y_nodes       BLOB,
	node_values   BLOB NOT NULL,
	build_id      TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	PRIMARY KEY (fingerprint, name)
);
`
// #endregion schema

// #region store-struct
// Store manages persisted tables in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection serialises writers from concurrent table builds
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema + logging.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region save
// Save persists a 1D table under key, replacing any previous entry, and
// returns the record with a fresh build id.
func (s *Store) Save(key Key, snap numeric.Snapshot) (TableRecord, error) {
	meta, err := json.Marshal(snap.Def)
	if err != nil {
		return TableRecord{}, fmt.Errorf("marshal definition: %w", err)
	}
	return s.save(key, 1, meta, snap.Def.X.Points(), nil, snap.Values)
}

// Save2D persists a 2D table under key.
func (s *Store) Save2D(key Key, snap numeric.Snapshot2D) (TableRecord, error) {
	meta, err := json.Marshal(snap.Def)
	if err != nil {
		return TableRecord{}, fmt.Errorf("marshal definition: %w", err)
	}
	return s.save(key, 2, meta, snap.Def.X.Points(), snap.Def.Y.Points(), snap.Values)
}

func (s *Store) save(key Key, dims int, meta []byte, xs, ys, values []float64) (TableRecord, error) {
	rec := TableRecord{
		Key:       key,
		Dims:      dims,
		Nodes:     len(values),
		BuildID:   uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}

	var yBlob interface{}
	if ys != nil {
		yBlob = encodeFloats(ys)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return TableRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO interpolation_tables (fingerprint, name, dims, meta_json, x_nodes, y_nodes, node_values, build_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint, name) DO UPDATE SET
		   dims = excluded.dims, meta_json = excluded.meta_json, x_nodes = excluded.x_nodes,
		   y_nodes = excluded.y_nodes, node_values = excluded.node_values,
		   build_id = excluded.build_id, created_at = excluded.created_at`,
		key.Hex(), key.Name, dims, string(meta), encodeFloats(xs), yBlob, encodeFloats(values),
		rec.BuildID, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return TableRecord{}, fmt.Errorf("insert table %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return TableRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}
// #endregion save

// #region load
// Load reads a 1D table. ok is false when no table is stored under key.
func (s *Store) Load(key Key) (snap numeric.Snapshot, ok bool, err error) {
	meta, values, ok, err := s.load(key, 1)
	if err != nil || !ok {
		return numeric.Snapshot{}, ok, err
	}
	if err := json.Unmarshal(meta, &snap.Def); err != nil {
		return numeric.Snapshot{}, false, fmt.Errorf("unmarshal definition: %w", err)
	}
	snap.Values = values
	return snap, true, nil
}

// Load2D reads a 2D table.
func (s *Store) Load2D(key Key) (snap numeric.Snapshot2D, ok bool, err error) {
	meta, values, ok, err := s.load(key, 2)
	if err != nil || !ok {
		return numeric.Snapshot2D{}, ok, err
	}
	if err := json.Unmarshal(meta, &snap.Def); err != nil {
		return numeric.Snapshot2D{}, false, fmt.Errorf("unmarshal definition: %w", err)
	}
	snap.Values = values
	return snap, true, nil
}

func (s *Store) load(key Key, dims int) ([]byte, []float64, bool, error) {
	var meta string
	var blob []byte
	var storedDims int
	err := s.db.QueryRow(
		`SELECT dims, meta_json, node_values FROM interpolation_tables WHERE fingerprint = ? AND name = ?`,
		key.Hex(), key.Name,
	).Scan(&storedDims, &meta, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("get table %s: %w", key, err)
	}
	if storedDims != dims {
		return nil, nil, false, fmt.Errorf("table %s has %d dimensions, want %d", key, storedDims, dims)
	}
	return []byte(meta), decodeFloats(blob), true, nil
}
// #endregion load

// #region list
// List returns the most recently stored tables.
func (s *Store) List(limit int) ([]TableRecord, error) {
	rows, err := s.db.Query(
		`SELECT fingerprint, name, dims, length(node_values) / 8, build_id, created_at
		 FROM interpolation_tables ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var records []TableRecord
	for rows.Next() {
		var rec TableRecord
		var fp, createdStr string
		if err := rows.Scan(&fp, &rec.Key.Name, &rec.Dims, &rec.Nodes, &rec.BuildID, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Key.Fingerprint, err = strconv.ParseUint(fp, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse fingerprint %q: %w", fp, err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list

// #region delete
// Delete removes the table stored under key.
func (s *Store) Delete(key Key) error {
	res, err := s.db.Exec(`DELETE FROM interpolation_tables WHERE fingerprint = ? AND name = ?`, key.Hex(), key.Name)
	if err != nil {
		return fmt.Errorf("delete table %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete table %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("table %s not found", key)
	}
	return nil
}
// #endregion delete

// #region float-encoding
func encodeFloats(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeFloats(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}
// #endregion float-encoding
