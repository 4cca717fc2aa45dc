package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
	"github.com/shopkhata/shopkhata_backend/internal/models"
	"github.com/shopkhata/shopkhata_backend/internal/utils/mapping"
)

// PgxLedgerStore implements the LedgerStore port on PostgreSQL. Atomic
// operations run inside serializable transactions; serialization conflicts
// are retried with jittered backoff before surfacing as a store conflict.
type PgxLedgerStore struct {
	BaseRepository
	maxAttempts int
	backoff     time.Duration
}

// newPgxLedgerStore creates a ledger store backed by the given pool.
func newPgxLedgerStore(pool *pgxpool.Pool, maxAttempts int, backoff time.Duration) *PgxLedgerStore {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &PgxLedgerStore{
		BaseRepository: BaseRepository{Pool: pool},
		maxAttempts:    maxAttempts,
		backoff:        backoff,
	}
}

var _ portsrepo.LedgerStore = (*PgxLedgerStore)(nil)

// RunAtomic executes fn inside a serializable transaction, retrying on
// serialization failures. The callback must be side-effect free outside
// the operation because it may run more than once.
func (s *PgxLedgerStore) RunAtomic(ctx context.Context, fn func(ctx context.Context, op portsrepo.AtomicOperation) error) error {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay(s.backoff, attempt)):
			}
		}
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: atomic operation gave up after %d attempts: %v", apperrors.ErrStoreConflict, s.maxAttempts, lastErr)
}

func (s *PgxLedgerStore) runOnce(ctx context.Context, fn func(ctx context.Context, op portsrepo.AtomicOperation) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	op := &pgxAtomicOp{q: tx}
	if err := fn(ctx, op); err != nil {
		_ = s.Rollback(ctx, tx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		_ = s.Rollback(ctx, tx)
		if isRetryableTxError(err) {
			return err
		}
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// retryDelay grows linearly with the attempt number plus jitter, so
// concurrent writers back off at different moments.
func retryDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 25 * time.Millisecond
	}
	return time.Duration(attempt)*base + time.Duration(rand.Int63n(int64(base)))
}

func (s *PgxLedgerStore) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return findCustomerByID(ctx, s.Pool, customerID)
}

func (s *PgxLedgerStore) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return listCustomers(ctx, s.Pool)
}

func (s *PgxLedgerStore) FindInventoryItemByBrand(ctx context.Context, brand string) (*domain.InventoryItem, error) {
	return findInventoryItemByBrand(ctx, s.Pool, brand)
}

func (s *PgxLedgerStore) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return listInventoryItems(ctx, s.Pool)
}

func (s *PgxLedgerStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	return findTransactionByID(ctx, s.Pool, transactionID)
}

func (s *PgxLedgerStore) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.TransactionRecord, error) {
	return listTransactionsByCustomer(ctx, s.Pool, customerID)
}

// pgxAtomicOp exposes reads and writes bound to one open transaction.
type pgxAtomicOp struct {
	q querier
}

var _ portsrepo.AtomicOperation = (*pgxAtomicOp)(nil)

func (t *pgxAtomicOp) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return findCustomerByID(ctx, t.q, customerID)
}

func (t *pgxAtomicOp) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return listCustomers(ctx, t.q)
}

func (t *pgxAtomicOp) FindInventoryItemByBrand(ctx context.Context, brand string) (*domain.InventoryItem, error) {
	return findInventoryItemByBrand(ctx, t.q, brand)
}

func (t *pgxAtomicOp) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return listInventoryItems(ctx, t.q)
}

func (t *pgxAtomicOp) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	return findTransactionByID(ctx, t.q, transactionID)
}

func (t *pgxAtomicOp) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.TransactionRecord, error) {
	return listTransactionsByCustomer(ctx, t.q, customerID)
}

func (t *pgxAtomicOp) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	m := mapping.ToModelCustomer(customer)
	query := `
		INSERT INTO customers (customer_id, name, phone, balance, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (customer_id) DO UPDATE
		SET name = EXCLUDED.name, phone = EXCLUDED.phone, balance = EXCLUDED.balance, last_updated_at = EXCLUDED.last_updated_at;
	`
	_, err := t.q.Exec(ctx, query, m.CustomerID, m.Name, m.Phone, m.Balance, m.CreatedAt, m.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save customer %s: %w", m.CustomerID, err)
	}
	return nil
}

func (t *pgxAtomicOp) DeleteCustomer(ctx context.Context, customerID string) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM customers WHERE customer_id = $1;`, customerID)
	if err != nil {
		return fmt.Errorf("failed to delete customer %s: %w", customerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s: %w", customerID, apperrors.ErrNotFound)
	}
	return nil
}

func (t *pgxAtomicOp) SaveInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	m := mapping.ToModelInventoryItem(item)
	batchesJSON, err := json.Marshal(m.Batches)
	if err != nil {
		return fmt.Errorf("failed to marshal batches for %s: %w", m.Brand, err)
	}
	query := `
		INSERT INTO inventory_items (brand, count, batches, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (brand) DO UPDATE
		SET count = EXCLUDED.count, batches = EXCLUDED.batches, last_updated = EXCLUDED.last_updated;
	`
	if _, err := t.q.Exec(ctx, query, m.Brand, m.Count, batchesJSON, m.LastUpdated); err != nil {
		return fmt.Errorf("failed to save inventory item %s: %w", m.Brand, err)
	}
	return nil
}

func (t *pgxAtomicOp) DeleteInventoryItem(ctx context.Context, brand string) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM inventory_items WHERE brand = $1;`, brand)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item %s: %w", brand, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory item %s: %w", brand, apperrors.ErrNotFound)
	}
	return nil
}

func (t *pgxAtomicOp) SaveTransaction(ctx context.Context, record domain.TransactionRecord) error {
	m := mapping.ToModelTransaction(record)
	details, err := marshalDetails(m)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO transactions (transaction_id, customer_id, type, amount, date, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (transaction_id) DO UPDATE
		SET customer_id = EXCLUDED.customer_id, type = EXCLUDED.type, amount = EXCLUDED.amount, date = EXCLUDED.date, details = EXCLUDED.details;
	`
	if _, err := t.q.Exec(ctx, query, m.TransactionID, m.CustomerID, m.Type, m.Amount, m.Date, details); err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

func (t *pgxAtomicOp) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	return nil
}

func findCustomerByID(ctx context.Context, q querier, customerID string) (*domain.Customer, error) {
	query := `SELECT customer_id, name, phone, balance, created_at, last_updated_at FROM customers WHERE customer_id = $1;`
	var m models.Customer
	err := q.QueryRow(ctx, query, customerID).Scan(&m.CustomerID, &m.Name, &m.Phone, &m.Balance, &m.CreatedAt, &m.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", customerID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find customer %s: %w", customerID, err)
	}
	d := mapping.ToDomainCustomer(m)
	return &d, nil
}

func listCustomers(ctx context.Context, q querier) ([]domain.Customer, error) {
	query := `SELECT customer_id, name, phone, balance, created_at, last_updated_at FROM customers ORDER BY name;`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var m models.Customer
		if err := rows.Scan(&m.CustomerID, &m.Name, &m.Phone, &m.Balance, &m.CreatedAt, &m.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, mapping.ToDomainCustomer(m))
	}
	return customers, rows.Err()
}

func findInventoryItemByBrand(ctx context.Context, q querier, brand string) (*domain.InventoryItem, error) {
	query := `SELECT brand, count, batches, last_updated FROM inventory_items WHERE brand = $1;`
	var m models.InventoryItem
	var batchesJSON []byte
	err := q.QueryRow(ctx, query, brand).Scan(&m.Brand, &m.Count, &batchesJSON, &m.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %s: %w", brand, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find inventory item %s: %w", brand, err)
	}
	if err := unmarshalBatches(batchesJSON, &m); err != nil {
		return nil, err
	}
	d := mapping.ToDomainInventoryItem(m)
	return &d, nil
}

func listInventoryItems(ctx context.Context, q querier) ([]domain.InventoryItem, error) {
	query := `SELECT brand, count, batches, last_updated FROM inventory_items ORDER BY brand;`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0)
	for rows.Next() {
		var m models.InventoryItem
		var batchesJSON []byte
		if err := rows.Scan(&m.Brand, &m.Count, &batchesJSON, &m.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		if err := unmarshalBatches(batchesJSON, &m); err != nil {
			return nil, err
		}
		items = append(items, mapping.ToDomainInventoryItem(m))
	}
	return items, rows.Err()
}

func findTransactionByID(ctx context.Context, q querier, transactionID string) (*domain.TransactionRecord, error) {
	query := `SELECT transaction_id, customer_id, type, amount, date, details FROM transactions WHERE transaction_id = $1;`
	var m models.TransactionRecord
	var details []byte
	err := q.QueryRow(ctx, query, transactionID).Scan(&m.TransactionID, &m.CustomerID, &m.Type, &m.Amount, &m.Date, &details)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if err := unmarshalDetails(details, &m); err != nil {
		return nil, err
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

func listTransactionsByCustomer(ctx context.Context, q querier, customerID string) ([]domain.TransactionRecord, error) {
	query := `SELECT transaction_id, customer_id, type, amount, date, details FROM transactions WHERE customer_id = $1 ORDER BY date DESC;`
	rows, err := q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	records := make([]domain.TransactionRecord, 0)
	for rows.Next() {
		var m models.TransactionRecord
		var details []byte
		if err := rows.Scan(&m.TransactionID, &m.CustomerID, &m.Type, &m.Amount, &m.Date, &details); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		if err := unmarshalDetails(details, &m); err != nil {
			return nil, err
		}
		records = append(records, mapping.ToDomainTransaction(m))
	}
	return records, rows.Err()
}

func marshalDetails(m models.TransactionRecord) ([]byte, error) {
	switch m.Type {
	case models.Sale:
		if m.Sale == nil {
			return nil, fmt.Errorf("transaction %s: SALE without sale details: %w", m.TransactionID, apperrors.ErrValidation)
		}
		return json.Marshal(m.Sale)
	case models.Payment:
		if m.Payment == nil {
			return nil, fmt.Errorf("transaction %s: PAYMENT without payment details: %w", m.TransactionID, apperrors.ErrValidation)
		}
		return json.Marshal(m.Payment)
	default:
		return nil, fmt.Errorf("transaction %s: unknown type %q: %w", m.TransactionID, m.Type, apperrors.ErrValidation)
	}
}

func unmarshalBatches(batchesJSON []byte, m *models.InventoryItem) error {
	if len(batchesJSON) == 0 {
		return nil
	}
	if err := json.Unmarshal(batchesJSON, &m.Batches); err != nil {
		return fmt.Errorf("inventory item %s has unreadable batches: %w", m.Brand, apperrors.ErrMalformedRecord)
	}
	return nil
}

// unmarshalDetails decodes the details payload according to the row's type.
// A payload that cannot be decoded marks the record as malformed rather
// than failing the whole query path with a generic error.
func unmarshalDetails(details []byte, m *models.TransactionRecord) error {
	switch m.Type {
	case models.Sale:
		var sale models.SaleDetails
		if err := json.Unmarshal(details, &sale); err != nil {
			return fmt.Errorf("transaction %s has unreadable sale details: %w", m.TransactionID, apperrors.ErrMalformedRecord)
		}
		m.Sale = &sale
	case models.Payment:
		var payment models.PaymentDetails
		if err := json.Unmarshal(details, &payment); err != nil {
			return fmt.Errorf("transaction %s has unreadable payment details: %w", m.TransactionID, apperrors.ErrMalformedRecord)
		}
		m.Payment = &payment
	default:
		return fmt.Errorf("transaction %s has unknown type %q: %w", m.TransactionID, m.Type, apperrors.ErrMalformedRecord)
	}
	return nil
}
