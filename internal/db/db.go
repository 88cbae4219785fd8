package db

import "database/sql"

// DB wraps the shared sql handle so packages depend on ours, not database/sql.
type DB struct {
	*sql.DB
}
