package plotstore

import (
	"database/sql"
	"log/slog"
	"path/filepath"
)

// NewSQLiteDB opens barplot.db under dataDir with the driver picked at build
// time.
func NewSQLiteDB(dataDir string) (*sql.DB, error) {
	dbPath := filepath.Join(dataDir, "barplot.db")
	slog.Info("opening SQLite DB", "dbPath", dbPath, "driver", SQLiteDriverName)
	db, err := sql.Open(SQLiteDriverName, dbPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
