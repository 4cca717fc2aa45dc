// Package memory provides an in-memory LedgerStore. It backs the service
// test suites and doubles as a storage mode for local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
)

// Store holds all ledger state in maps guarded by a single mutex.
// RunAtomic operates on a deep copy and swaps it in on success, so a
// failed operation leaves the committed state untouched.
type Store struct {
	mu           sync.Mutex
	customers    map[string]domain.Customer
	inventory    map[string]domain.InventoryItem
	transactions map[string]domain.TransactionRecord
	brands       map[string]domain.Brand
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		customers:    make(map[string]domain.Customer),
		inventory:    make(map[string]domain.InventoryItem),
		transactions: make(map[string]domain.TransactionRecord),
		brands:       make(map[string]domain.Brand),
	}
}

var (
	_ portsrepo.LedgerStore = (*Store)(nil)
	_ portsrepo.BrandReader = (*Store)(nil)
)

// SeedBrand adds a brand to the catalog. Intended for startup seeding
// and tests.
func (s *Store) SeedBrand(b domain.Brand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands[b.Name] = b
}

// RunAtomic executes fn against a private copy of the store state and
// commits the copy only when fn succeeds.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context, op portsrepo.AtomicOperation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &atomicOp{
		customers:    cloneCustomers(s.customers),
		inventory:    cloneInventory(s.inventory),
		transactions: cloneTransactions(s.transactions),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.customers = tx.customers
	s.inventory = tx.inventory
	s.transactions = tx.transactions
	return nil
}

func (s *Store) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findCustomer(s.customers, customerID)
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listCustomers(s.customers), nil
}

func (s *Store) FindInventoryItemByBrand(ctx context.Context, brand string) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findInventoryItem(s.inventory, brand)
}

func (s *Store) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listInventoryItems(s.inventory), nil
}

func (s *Store) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findTransaction(s.transactions, transactionID)
}

func (s *Store) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listTransactionsByCustomer(s.transactions, customerID), nil
}

func (s *Store) FindBrandByName(ctx context.Context, name string) (*domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.brands[name]
	if !ok {
		return nil, fmt.Errorf("brand %s: %w", name, apperrors.ErrNotFound)
	}
	return &b, nil
}

func (s *Store) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	brands := make([]domain.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool { return brands[i].Name < brands[j].Name })
	return brands, nil
}

// atomicOp is the mutable view handed to RunAtomic callbacks. It owns
// its maps outright, so writes never leak into the store until commit.
type atomicOp struct {
	customers    map[string]domain.Customer
	inventory    map[string]domain.InventoryItem
	transactions map[string]domain.TransactionRecord
}

var _ portsrepo.AtomicOperation = (*atomicOp)(nil)

func (t *atomicOp) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return findCustomer(t.customers, customerID)
}

func (t *atomicOp) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return listCustomers(t.customers), nil
}

func (t *atomicOp) FindInventoryItemByBrand(ctx context.Context, brand string) (*domain.InventoryItem, error) {
	return findInventoryItem(t.inventory, brand)
}

func (t *atomicOp) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return listInventoryItems(t.inventory), nil
}

func (t *atomicOp) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	return findTransaction(t.transactions, transactionID)
}

func (t *atomicOp) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.TransactionRecord, error) {
	return listTransactionsByCustomer(t.transactions, customerID), nil
}

func (t *atomicOp) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	t.customers[customer.CustomerID] = copyCustomer(customer)
	return nil
}

func (t *atomicOp) DeleteCustomer(ctx context.Context, customerID string) error {
	if _, ok := t.customers[customerID]; !ok {
		return fmt.Errorf("customer %s: %w", customerID, apperrors.ErrNotFound)
	}
	delete(t.customers, customerID)
	return nil
}

func (t *atomicOp) SaveInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	t.inventory[item.Brand] = copyInventoryItem(item)
	return nil
}

func (t *atomicOp) DeleteInventoryItem(ctx context.Context, brand string) error {
	if _, ok := t.inventory[brand]; !ok {
		return fmt.Errorf("inventory item %s: %w", brand, apperrors.ErrNotFound)
	}
	delete(t.inventory, brand)
	return nil
}

func (t *atomicOp) SaveTransaction(ctx context.Context, record domain.TransactionRecord) error {
	t.transactions[record.TransactionID] = copyTransaction(record)
	return nil
}

func (t *atomicOp) DeleteTransaction(ctx context.Context, transactionID string) error {
	if _, ok := t.transactions[transactionID]; !ok {
		return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	delete(t.transactions, transactionID)
	return nil
}

func findCustomer(customers map[string]domain.Customer, customerID string) (*domain.Customer, error) {
	c, ok := customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", customerID, apperrors.ErrNotFound)
	}
	cp := copyCustomer(c)
	return &cp, nil
}

func listCustomers(customers map[string]domain.Customer) []domain.Customer {
	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		out = append(out, copyCustomer(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func findInventoryItem(inventory map[string]domain.InventoryItem, brand string) (*domain.InventoryItem, error) {
	item, ok := inventory[brand]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", brand, apperrors.ErrNotFound)
	}
	cp := copyInventoryItem(item)
	return &cp, nil
}

func listInventoryItems(inventory map[string]domain.InventoryItem) []domain.InventoryItem {
	out := make([]domain.InventoryItem, 0, len(inventory))
	for _, item := range inventory {
		out = append(out, copyInventoryItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Brand < out[j].Brand })
	return out
}

func findTransaction(transactions map[string]domain.TransactionRecord, transactionID string) (*domain.TransactionRecord, error) {
	r, ok := transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	cp := copyTransaction(r)
	return &cp, nil
}

func listTransactionsByCustomer(transactions map[string]domain.TransactionRecord, customerID string) []domain.TransactionRecord {
	var out []domain.TransactionRecord
	for _, r := range transactions {
		if r.CustomerID == customerID {
			out = append(out, copyTransaction(r))
		}
	}
	// Newest first, matching the SQL store's ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func copyCustomer(c domain.Customer) domain.Customer {
	return c
}

func copyInventoryItem(item domain.InventoryItem) domain.InventoryItem {
	cp := item
	cp.Batches = append([]domain.Batch(nil), item.Batches...)
	return cp
}

func copyTransaction(r domain.TransactionRecord) domain.TransactionRecord {
	cp := r
	if r.Sale != nil {
		sale := *r.Sale
		sale.BatchesUsed = append([]domain.BatchUsage(nil), r.Sale.BatchesUsed...)
		cp.Sale = &sale
	}
	if r.Payment != nil {
		payment := *r.Payment
		cp.Payment = &payment
	}
	return cp
}

func cloneCustomers(src map[string]domain.Customer) map[string]domain.Customer {
	dst := make(map[string]domain.Customer, len(src))
	for k, v := range src {
		dst[k] = copyCustomer(v)
	}
	return dst
}

func cloneInventory(src map[string]domain.InventoryItem) map[string]domain.InventoryItem {
	dst := make(map[string]domain.InventoryItem, len(src))
	for k, v := range src {
		dst[k] = copyInventoryItem(v)
	}
	return dst
}

func cloneTransactions(src map[string]domain.TransactionRecord) map[string]domain.TransactionRecord {
	dst := make(map[string]domain.TransactionRecord, len(src))
	for k, v := range src {
		dst[k] = copyTransaction(v)
	}
	return dst
}
