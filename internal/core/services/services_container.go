package services

import (
	portsrepo "github.com/shopkhata/shopkhata_backend/internal/core/ports/repositories"
	portssvc "github.com/shopkhata/shopkhata_backend/internal/core/ports/services"
	"github.com/shopkhata/shopkhata_backend/internal/platform/notify"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, notifier notify.Notifier) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Customer:  NewCustomerService(repos.Ledger, notifier),
		Inventory: NewInventoryService(repos.Ledger, repos.Brands, notifier),
		Ledger:    NewLedgerService(repos.Ledger, repos.Brands, notifier),
	}
}

// Compile-time interface implementation checks
var (
	_ portssvc.CustomerSvcFacade  = (*CustomerService)(nil)
	_ portssvc.InventorySvcFacade = (*InventoryService)(nil)
	_ portssvc.LedgerSvcFacade    = (*LedgerService)(nil)
)
