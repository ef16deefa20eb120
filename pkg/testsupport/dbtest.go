package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var dbSeq atomic.Int64

// NewSQLiteMemoryDB opens a private named in-memory database. Each call gets
// its own schema so parallel tests cannot observe one another's tables.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := dbSeq.Add(1)
	return sql.Open("sqlite3", fmt.Sprintf("file:wikitest_%d?mode=memory&cache=shared", name))
}
