package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/shopkhata/shopkhata_backend/internal/apperrors"
	"github.com/shopkhata/shopkhata_backend/internal/core/domain"
	portssvc "github.com/shopkhata/shopkhata_backend/internal/core/ports/services"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
	"github.com/shopkhata/shopkhata_backend/internal/handlers"
	"github.com/shopkhata/shopkhata_backend/internal/platform/config"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*domain.TransactionRecord, *domain.TransactionRecord, error) {
	args := m.Called(ctx, req)
	var sale, partial *domain.TransactionRecord
	if args.Get(0) != nil {
		sale = args.Get(0).(*domain.TransactionRecord)
	}
	if args.Get(1) != nil {
		partial = args.Get(1).(*domain.TransactionRecord)
	}
	return sale, partial, args.Error(2)
}

func (m *MockLedgerService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.TransactionRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionRecord), args.Error(1)
}

func (m *MockLedgerService) RecordAdjustment(ctx context.Context, req dto.RecordAdjustmentRequest) (*domain.TransactionRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionRecord), args.Error(1)
}

func (m *MockLedgerService) ReverseTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockLedgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionRecord), args.Error(1)
}

func (m *MockLedgerService) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.TransactionRecord, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionRecord), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock CustomerService ---
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*domain.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID string) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

var _ portssvc.CustomerSvcFacade = (*MockCustomerService)(nil)

// --- Mock InventoryService ---
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) AddStock(ctx context.Context, req dto.AddStockRequest) (*domain.InventoryItem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryService) GetItemByBrand(ctx context.Context, brand string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, brand)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryService) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Brand), args.Error(1)
}

func (m *MockInventoryService) DeleteItem(ctx context.Context, brand string) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}

var _ portssvc.InventorySvcFacade = (*MockInventoryService)(nil)

// --- Suite ---
type TransactionHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockLedger    *MockLedgerService
	mockCustomer  *MockCustomerService
	mockInventory *MockInventoryService
}

func (s *TransactionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockLedger = new(MockLedgerService)
	s.mockCustomer = new(MockCustomerService)
	s.mockInventory = new(MockInventoryService)

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, &config.Config{}, &portssvc.ServiceContainer{
		Customer:  s.mockCustomer,
		Inventory: s.mockInventory,
		Ledger:    s.mockLedger,
	})
}

func (s *TransactionHandlerTestSuite) perform(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *TransactionHandlerTestSuite) TestRecordSaleSuccess() {
	sale := &domain.TransactionRecord{
		TransactionID: "txn-1",
		CustomerID:    "cust-1",
		Type:          domain.Sale,
		Amount:        decimal.NewFromInt(140),
		Date:          time.Now(),
		Sale: &domain.SaleDetails{
			Brand: "BrandA", Bags: 7,
			PricePerBag: decimal.NewFromInt(20),
			Profit:      decimal.NewFromInt(66),
		},
	}
	partial := &domain.TransactionRecord{
		TransactionID: "txn-2",
		CustomerID:    "cust-1",
		Type:          domain.Payment,
		Amount:        decimal.NewFromInt(100),
		Date:          time.Now(),
		Payment:       &domain.PaymentDetails{IsPartialPayment: true, LinkedSaleID: "txn-1"},
	}
	s.mockLedger.On("RecordSale", mock.Anything, mock.AnythingOfType("dto.RecordSaleRequest")).Return(sale, partial, nil)

	w := s.perform(http.MethodPost, "/api/v1/transactions/sale", gin.H{
		"customerID":  "cust-1",
		"brand":       "BrandA",
		"bags":        7,
		"pricePerBag": "20",
		"paidNow":     "100",
	})

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.RecordSaleResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("txn-1", resp.Sale.TransactionID)
	s.Require().NotNil(resp.PartialPayment)
	s.Equal("txn-1", resp.PartialPayment.Payment.LinkedSaleID)
	s.mockLedger.AssertExpectations(s.T())
}

func (s *TransactionHandlerTestSuite) TestRecordSaleMissingFields() {
	w := s.perform(http.MethodPost, "/api/v1/transactions/sale", gin.H{"brand": "BrandA"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.mockLedger.AssertNotCalled(s.T(), "RecordSale")
}

func (s *TransactionHandlerTestSuite) TestRecordSaleInsufficientStock() {
	s.mockLedger.On("RecordSale", mock.Anything, mock.Anything).
		Return(nil, nil, apperrors.NewInsufficientStockError("BrandA", 3, 7))

	w := s.perform(http.MethodPost, "/api/v1/transactions/sale", gin.H{
		"customerID": "cust-1", "brand": "BrandA", "bags": 7, "pricePerBag": "20",
	})

	s.Equal(http.StatusConflict, w.Code)
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(float64(3), body["available"])
	s.Equal(float64(7), body["requested"])
}

func (s *TransactionHandlerTestSuite) TestRecordSaleUnknownCustomer() {
	s.mockLedger.On("RecordSale", mock.Anything, mock.Anything).
		Return(nil, nil, apperrors.ErrCustomerNotFound)

	w := s.perform(http.MethodPost, "/api/v1/transactions/sale", gin.H{
		"customerID": "missing", "brand": "BrandA", "bags": 1, "pricePerBag": "20",
	})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *TransactionHandlerTestSuite) TestRecordSaleStoreConflict() {
	s.mockLedger.On("RecordSale", mock.Anything, mock.Anything).
		Return(nil, nil, apperrors.ErrStoreConflict)

	w := s.perform(http.MethodPost, "/api/v1/transactions/sale", gin.H{
		"customerID": "cust-1", "brand": "BrandA", "bags": 1, "pricePerBag": "20",
	})
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *TransactionHandlerTestSuite) TestRecordPaymentSuccess() {
	payment := &domain.TransactionRecord{
		TransactionID: "txn-3",
		CustomerID:    "cust-1",
		Type:          domain.Payment,
		Amount:        decimal.NewFromInt(60),
		Date:          time.Now(),
		Payment:       &domain.PaymentDetails{Notes: "weekly"},
	}
	s.mockLedger.On("RecordPayment", mock.Anything, mock.AnythingOfType("dto.RecordPaymentRequest")).Return(payment, nil)

	w := s.perform(http.MethodPost, "/api/v1/transactions/payment", gin.H{
		"customerID": "cust-1", "amount": "60", "notes": "weekly",
	})

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("PAYMENT", resp.Type)
}

func (s *TransactionHandlerTestSuite) TestRecordAdjustmentValidation() {
	s.mockLedger.On("RecordAdjustment", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrValidation)

	w := s.perform(http.MethodPost, "/api/v1/transactions/adjustment", gin.H{
		"customerID": "cust-1", "amount": "-5",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TransactionHandlerTestSuite) TestReverseTransaction() {
	s.mockLedger.On("ReverseTransaction", mock.Anything, "txn-1").Return(nil)

	w := s.perform(http.MethodDelete, "/api/v1/transactions/txn-1", nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.mockLedger.AssertExpectations(s.T())
}

func (s *TransactionHandlerTestSuite) TestReverseMalformedTransaction() {
	s.mockLedger.On("ReverseTransaction", mock.Anything, "broken").Return(apperrors.ErrMalformedRecord)

	w := s.perform(http.MethodDelete, "/api/v1/transactions/broken", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *TransactionHandlerTestSuite) TestGetTransactionNotFound() {
	s.mockLedger.On("GetTransactionByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	w := s.perform(http.MethodGet, "/api/v1/transactions/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestTransactionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
