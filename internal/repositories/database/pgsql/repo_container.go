package pgsql

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, retryAttempts int, retryBackoff time.Duration) portsrepo.RepositoryProvider {
	ledgerStore := newPgxLedgerStore(dbPool, retryAttempts, retryBackoff)
	brandRepo := newPgxBrandRepository(dbPool)

	return portsrepo.RepositoryProvider{
		Ledger: ledgerStore,
		Brands: brandRepo,
	}
}
