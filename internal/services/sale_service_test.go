package services

import (
	"errors"
	"testing"
	"time"

	"sari_pos_backend/internal/models"
)

var checkoutTime = time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

type saleTestEnv struct {
	store    *fakeStore
	saleRepo *fakeSaleRepo
	svc      SaleService
}

func newSaleTestEnv(opts SaleServiceOptions) *saleTestEnv {
	store := newFakeStore()
	saleRepo := &fakeSaleRepo{store: store}
	if opts.Now == nil {
		opts.Now = func() time.Time { return checkoutTime }
	}
	svc := NewSaleService(
		saleRepo,
		&fakeProductRepo{store: store},
		&fakeInventoryLogRepo{store: store},
		&fakeTxManager{store: store},
		opts,
	)
	return &saleTestEnv{store: store, saleRepo: saleRepo, svc: svc}
}

func TestCreateSaleHappyPath(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "CIG001", Name: "Cigarettes", Price: 15.00, Quantity: 50, MinStock: 10, IsActive: true,
	})

	sale, err := env.svc.CreateSale(7, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  100,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	if sale.SaleNumber != "SALE202608280001" {
		t.Errorf("expected sale number SALE202608280001, got %s", sale.SaleNumber)
	}
	if sale.Subtotal != 75 {
		t.Errorf("expected subtotal 75, got %v", sale.Subtotal)
	}
	if sale.Tax != 9 {
		t.Errorf("expected tax 9, got %v", sale.Tax)
	}
	if sale.TotalAmount != 84 {
		t.Errorf("expected total 84, got %v", sale.TotalAmount)
	}
	if sale.ChangeAmount != 16 {
		t.Errorf("expected change 16, got %v", sale.ChangeAmount)
	}
	if sale.Status != models.SaleStatusCompleted {
		t.Errorf("expected status completed, got %s", sale.Status)
	}
	if len(sale.Items) != 1 || sale.Items[0].ProductCode != "CIG001" || sale.Items[0].TotalPrice != 75 {
		t.Errorf("unexpected sale items: %+v", sale.Items)
	}

	if got := env.store.products[product.ID].Quantity; got != 45 {
		t.Errorf("expected stock 45 after sale, got %d", got)
	}
	if len(env.store.logs) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(env.store.logs))
	}
	entry := env.store.logs[0]
	if entry.ActionType != models.ActionSale || entry.QuantityChange != -5 {
		t.Errorf("unexpected ledger entry: %+v", entry)
	}
	if entry.PreviousQuantity != 50 || entry.NewQuantity != 45 {
		t.Errorf("expected ledger 50 -> 45, got %d -> %d", entry.PreviousQuantity, entry.NewQuantity)
	}
	if entry.ReferenceID == nil || *entry.ReferenceID != sale.ID ||
		entry.ReferenceType == nil || *entry.ReferenceType != models.ReferenceSale {
		t.Errorf("ledger entry not linked to sale: %+v", entry)
	}
}

func TestCreateSaleInsufficientStockAppliesNothing(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	plenty := env.store.addProduct(models.Product{
		Code: "SOAP01", Name: "Soap", Price: 20, Quantity: 100, IsActive: true,
	})
	scarce := env.store.addProduct(models.Product{
		Code: "EGG01", Name: "Eggs", Price: 8, Quantity: 3, IsActive: true,
	})

	_, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  500,
		Items: []CreateSaleItemRequest{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 10},
		},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if got := env.store.products[plenty.ID].Quantity; got != 100 {
		t.Errorf("stock of first item changed despite failed sale: %d", got)
	}
	if len(env.store.sales) != 0 || len(env.store.saleItems) != 0 || len(env.store.logs) != 0 {
		t.Errorf("failed sale left partial state: %d sales, %d items, %d logs",
			len(env.store.sales), len(env.store.saleItems), len(env.store.logs))
	}
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})

	_, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		Items:         []CreateSaleItemRequest{{ProductID: 99, Quantity: 1}},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCreateSaleInactiveProductRejected(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "OLD01", Name: "Discontinued", Price: 5, Quantity: 10, IsActive: false,
	})

	_, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for inactive product, got %v", err)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "MILK01", Name: "Milk", Price: 90, Quantity: 10, IsActive: true,
	})

	if _, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: "bitcoin",
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	}); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Errorf("expected ErrInvalidPaymentMethod, got %v", err)
	}

	if _, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty cart, got %v", err)
	}

	if _, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 0}},
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for zero quantity, got %v", err)
	}

	if _, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		Discount:      -5,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for negative discount, got %v", err)
	}
}

func TestCreateSaleDiscountAfterTaxDefault(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "RICE01", Name: "Rice", Price: 10, Quantity: 100, IsActive: true,
	})

	sale, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentGcash,
		Discount:      10,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	// Tax on the full subtotal; discount only reduces the final total.
	if sale.Tax != 12 {
		t.Errorf("expected tax 12, got %v", sale.Tax)
	}
	if sale.TotalAmount != 102 {
		t.Errorf("expected total 102, got %v", sale.TotalAmount)
	}
}

func TestCreateSaleDiscountBeforeTax(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{DiscountBeforeTax: true})
	product := env.store.addProduct(models.Product{
		Code: "RICE01", Name: "Rice", Price: 10, Quantity: 100, IsActive: true,
	})

	sale, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentGcash,
		Discount:      10,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	if sale.Tax != 10.8 {
		t.Errorf("expected tax 10.8, got %v", sale.Tax)
	}
	if sale.TotalAmount != 100.8 {
		t.Errorf("expected total 100.8, got %v", sale.TotalAmount)
	}
}

func TestCreateSaleCartPriceOverridesCatalog(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "BREAD1", Name: "Bread", Price: 15, Quantity: 20, IsActive: true,
	})

	sale, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  50,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 2, Price: 12.50}},
	})
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}
	if sale.Items[0].UnitPrice != 12.50 || sale.Subtotal != 25 {
		t.Errorf("cart price not honored: unit %v subtotal %v", sale.Items[0].UnitPrice, sale.Subtotal)
	}
}

func TestSaleNumbersAreSequentialPerDay(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "COKE01", Name: "Cola", Price: 25, Quantity: 100, IsActive: true,
	})

	req := CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  100,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	}
	first, err := env.svc.CreateSale(1, req)
	if err != nil {
		t.Fatalf("first sale failed: %v", err)
	}
	second, err := env.svc.CreateSale(1, req)
	if err != nil {
		t.Fatalf("second sale failed: %v", err)
	}

	if first.SaleNumber != "SALE202608280001" || second.SaleNumber != "SALE202608280002" {
		t.Errorf("expected sequential numbers, got %s then %s", first.SaleNumber, second.SaleNumber)
	}
}

func TestCreateSaleHonorsSuppliedNumber(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "COKE01", Name: "Cola", Price: 25, Quantity: 100, IsActive: true,
	})

	supplied := "SALE202608280777"
	sale, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  100,
		SaleNumber:    &supplied,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}
	if sale.SaleNumber != supplied {
		t.Errorf("expected supplied sale number %s, got %s", supplied, sale.SaleNumber)
	}
}

func TestCreateSaleRetriesOnNumberCollision(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "COKE01", Name: "Cola", Price: 25, Quantity: 100, IsActive: true,
	})
	env.saleRepo.forcedDuplicates = 2

	sale, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  100,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("expected retries to succeed, got %v", err)
	}
	if sale.SaleNumber == "" {
		t.Error("expected a sale number after retry")
	}
	// The two aborted attempts must leave no trace.
	if got := env.store.products[product.ID].Quantity; got != 99 {
		t.Errorf("expected stock 99, got %d", got)
	}
	if len(env.store.logs) != 1 {
		t.Errorf("expected 1 ledger entry, got %d", len(env.store.logs))
	}
}

func TestCreateSaleGivesUpAfterMaxCollisions(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "COKE01", Name: "Cola", Price: 25, Quantity: 100, IsActive: true,
	})
	env.saleRepo.forcedDuplicates = saleNumberMaxAttempts

	_, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  100,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrSaleNumberExhausted) {
		t.Fatalf("expected ErrSaleNumberExhausted, got %v", err)
	}
	if got := env.store.products[product.ID].Quantity; got != 100 {
		t.Errorf("exhausted sale changed stock: %d", got)
	}
}

func TestCancelSaleRestoresStock(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "CIG001", Name: "Cigarettes", Price: 15, Quantity: 50, IsActive: true,
	})

	sale, err := env.svc.CreateSale(7, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  100,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	cancelled, err := env.svc.CancelSale(9, sale.ID)
	if err != nil {
		t.Fatalf("CancelSale failed: %v", err)
	}

	if cancelled.Status != models.SaleStatusCancelled {
		t.Errorf("expected status cancelled, got %s", cancelled.Status)
	}
	if got := env.store.products[product.ID].Quantity; got != 50 {
		t.Errorf("expected stock restored to 50, got %d", got)
	}

	if len(env.store.logs) != 2 {
		t.Fatalf("expected 2 ledger entries (sale + return), got %d", len(env.store.logs))
	}
	ret := env.store.logs[1]
	if ret.ActionType != models.ActionReturn || ret.QuantityChange != 5 || ret.UserID != 9 {
		t.Errorf("unexpected return entry: %+v", ret)
	}
	if ret.ReferenceType == nil || *ret.ReferenceType != models.ReferenceSaleCancellation {
		t.Errorf("return entry missing cancellation reference: %+v", ret)
	}

	// The ledger nets to zero, the history of both movements remains.
	net := 0
	for _, e := range env.store.logs {
		net += e.QuantityChange
	}
	if net != 0 {
		t.Errorf("expected ledger to net to zero, got %d", net)
	}
}

func TestCancelSaleTwice(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	product := env.store.addProduct(models.Product{
		Code: "CIG001", Name: "Cigarettes", Price: 15, Quantity: 50, IsActive: true,
	})
	sale, err := env.svc.CreateSale(1, CreateSaleRequest{
		PaymentMethod: models.PaymentCash,
		CashReceived:  100,
		Items:         []CreateSaleItemRequest{{ProductID: product.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	if _, err := env.svc.CancelSale(1, sale.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if _, err := env.svc.CancelSale(1, sale.ID); !errors.Is(err, ErrInvalidSaleState) {
		t.Fatalf("expected ErrInvalidSaleState on second cancel, got %v", err)
	}
	// Stock must not be restored twice.
	if got := env.store.products[product.ID].Quantity; got != 50 {
		t.Errorf("expected stock 50, got %d", got)
	}
}

func TestCancelSaleNotFound(t *testing.T) {
	env := newSaleTestEnv(SaleServiceOptions{})
	if _, err := env.svc.CancelSale(1, 42); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}
