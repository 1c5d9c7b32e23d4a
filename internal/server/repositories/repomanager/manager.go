package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/puffkeeper/internal/dbx"
	"github.com/dmitrijs2005/puffkeeper/internal/server/repositories/extrapuffs"
	"github.com/dmitrijs2005/puffkeeper/internal/server/repositories/trackerstate"
)

// RepositoryManager vends repositories bound to a connection or a
// transaction, so a service can run several of them inside one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	TrackerState(db dbx.DBTX) trackerstate.Repository
	ExtraPuffs(db dbx.DBTX) extrapuffs.Repository
}
