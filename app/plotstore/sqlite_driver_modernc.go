//go:build native_sqlite

package plotstore

import (
	_ "modernc.org/sqlite"
)

const SQLiteDriverName = "sqlite"
