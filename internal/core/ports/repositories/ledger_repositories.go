package repositories

import (
	"context"

	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
)

// LedgerReader defines read operations over the three ledger collections.
type LedgerReader interface {
	// FindCustomerByID retrieves a customer by id. Returns apperrors.ErrNotFound when absent.
	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)

	// ListCustomers retrieves all customers ordered by name.
	ListCustomers(ctx context.Context) ([]domain.Customer, error)

	// FindInventoryItemByBrand retrieves the inventory item for a brand.
	// Returns apperrors.ErrNotFound when the brand has no inventory record.
	FindInventoryItemByBrand(ctx context.Context, brand string) (*domain.InventoryItem, error)

	// ListInventoryItems retrieves all inventory items ordered by brand.
	ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error)

	// FindTransactionByID retrieves a single transaction record.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)

	// ListTransactionsByCustomer retrieves a customer's records ordered by date descending.
	ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.TransactionRecord, error)
}

// LedgerWriter defines write operations staged inside an atomic operation.
type LedgerWriter interface {
	// SaveCustomer creates or replaces a customer.
	SaveCustomer(ctx context.Context, customer domain.Customer) error

	// DeleteCustomer removes a customer. The customer's transaction records are
	// retained; reversals of them skip the balance step.
	DeleteCustomer(ctx context.Context, customerID string) error

	// SaveInventoryItem creates or replaces an inventory item, batches included.
	SaveInventoryItem(ctx context.Context, item domain.InventoryItem) error

	// DeleteInventoryItem removes an inventory item outright.
	DeleteInventoryItem(ctx context.Context, brand string) error

	// SaveTransaction persists a new transaction record.
	SaveTransaction(ctx context.Context, record domain.TransactionRecord) error

	// DeleteTransaction removes a transaction record.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// AtomicOperation is the view of the store handed to a RunAtomic callback.
// Within one attempt all reads must complete before the first write: the store
// may re-execute the whole callback on a conflicting concurrent commit, so
// callbacks must be pure functions of their reads.
type AtomicOperation interface {
	LedgerReader
	LedgerWriter
}

// LedgerStore is the persistence port for the transaction engine. Reads outside
// RunAtomic observe the latest committed state; all mutation goes through
// RunAtomic, which commits every staged write together or none at all.
type LedgerStore interface {
	LedgerReader

	// RunAtomic executes fn as one atomic read-modify-write operation under
	// optimistic concurrency. Conflicts are retried transparently up to the
	// store's bound, then surfaced as apperrors.ErrStoreConflict. Any error
	// returned by fn aborts the attempt with zero side effects.
	RunAtomic(ctx context.Context, fn func(ctx context.Context, op AtomicOperation) error) error
}

// BrandReader is the read-only port onto the product catalog collaborator.
type BrandReader interface {
	// FindBrandByName retrieves one catalog entry. Returns apperrors.ErrNotFound when absent.
	FindBrandByName(ctx context.Context, name string) (*domain.Brand, error)

	// ListBrands retrieves the full catalog ordered by name.
	ListBrands(ctx context.Context) ([]domain.Brand, error)
}
