// Package datarecording stores generated bundles and simulator logs in a
// SQLite database.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder keeps rows of flat structs in named tables.
type DataRecorder interface {
	// CreateTable creates a table with one column per field of sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData queues a row for a table created earlier. The row must have
	// the type of the table's sample entry.
	InsertData(tableName string, entry any)

	// ListTables returns the table names in order.
	ListTables() []string

	// Flush writes the queued rows in one transaction.
	Flush()

	// Close flushes and releases the database.
	Close() error
}

// ErrDatabaseExists is returned when the recording file is already present.
var ErrDatabaseExists = errors.New("database file already exists")

// flushThreshold is the number of queued rows that triggers a flush.
const flushThreshold = 100000

// New creates the recording file path + ".sqlite3". An empty path picks a
// unique name. Queued rows are flushed when the program exits through
// atexit.
func New(path string) (DataRecorder, error) {
	if path == "" {
		path = "ramgen_recording_" + xid.New().String()
	}

	file := path + ".sqlite3"

	if _, err := os.Stat(file); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseExists, file)
	}

	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}

	return NewWithDB(db), nil
}

// NewWithDB records into an open database.
func NewWithDB(db *sql.DB) DataRecorder {
	s := &sqliteStore{
		db:     db,
		tables: make(map[string]*tableSchema),
	}

	atexit.Register(s.Flush)

	return s
}

// tableSchema is a created table and the rows waiting for it.
type tableSchema struct {
	rowType   reflect.Type
	insertSQL string
	queued    [][]any
}

type sqliteStore struct {
	db     *sql.DB
	tables map[string]*tableSchema
	queued int
	closed bool
}

var storableKinds = map[reflect.Kind]bool{
	reflect.Bool:    true,
	reflect.Int:     true,
	reflect.Int8:    true,
	reflect.Int16:   true,
	reflect.Int32:   true,
	reflect.Int64:   true,
	reflect.Uint:    true,
	reflect.Uint8:   true,
	reflect.Uint16:  true,
	reflect.Uint32:  true,
	reflect.Uint64:  true,
	reflect.Float32: true,
	reflect.Float64: true,
	reflect.String:  true,
}

// rowTypeOf returns the type of entry when every field maps to a column.
func rowTypeOf(entry any) (reflect.Type, error) {
	rowType := reflect.TypeOf(entry)
	if rowType == nil || rowType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entry of type %T is not a struct", entry)
	}

	for i := 0; i < rowType.NumField(); i++ {
		f := rowType.Field(i)
		if !f.IsExported() || !storableKinds[f.Type.Kind()] {
			return nil, fmt.Errorf("field %s of %s cannot be stored", f.Name, rowType)
		}
	}

	return rowType, nil
}

func (s *sqliteStore) CreateTable(tableName string, sampleEntry any) {
	rowType, err := rowTypeOf(sampleEntry)
	if err != nil {
		panic(err)
	}

	if _, exists := s.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	columns := structs.Names(sampleEntry)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	s.mustExec(fmt.Sprintf("CREATE TABLE %s (\n\t%s\n);",
		tableName, strings.Join(columns, ",\n\t")))

	s.tables[tableName] = &tableSchema{
		rowType:   rowType,
		insertSQL: fmt.Sprintf("INSERT INTO %s VALUES (%s)", tableName, placeholders),
	}
}

func (s *sqliteStore) InsertData(tableName string, entry any) {
	t, exists := s.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.rowType {
		panic(fmt.Sprintf("entry of type %T does not match table %s",
			entry, tableName))
	}

	t.queued = append(t.queued, structs.Values(entry))

	s.queued++
	if s.queued >= flushThreshold {
		s.Flush()
	}
}

func (s *sqliteStore) ListTables() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (s *sqliteStore) Flush() {
	if s.queued == 0 || s.closed {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		panic(err)
	}

	for _, name := range s.ListTables() {
		t := s.tables[name]
		if len(t.queued) == 0 {
			continue
		}

		if err := insertRows(tx, t); err != nil {
			_ = tx.Rollback()
			panic(fmt.Errorf("flushing table %s: %w", name, err))
		}

		t.queued = nil
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	s.queued = 0
}

func insertRows(tx *sql.Tx, t *tableSchema) error {
	stmt, err := tx.Prepare(t.insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.queued {
		if _, err := stmt.Exec(row...); err != nil {
			return err
		}
	}

	return nil
}

func (s *sqliteStore) Close() error {
	if s.closed {
		return nil
	}

	s.Flush()
	s.closed = true

	return s.db.Close()
}

func (s *sqliteStore) mustExec(query string) {
	if _, err := s.db.Exec(query); err != nil {
		panic(fmt.Errorf("failed to execute %q: %w", query, err))
	}
}
