package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/repositories"
	"sari_pos_backend/internal/sessions"
)

// fakeStore is the in-memory state shared by the fake repositories. The fake
// transaction manager snapshots it on Begin and restores the snapshot on
// Rollback, so workflow tests exercise real all-or-nothing behavior.
type fakeStore struct {
	products  map[int64]models.Product
	sales     map[int64]models.Sale
	saleItems []models.SaleItem
	logs      []models.InventoryLogEntry
	users     map[int64]models.User
	messages  []models.ChatMessage

	nextProductID int64
	nextSaleID    int64
	nextItemID    int64
	nextLogID     int64
	nextUserID    int64
	nextMessageID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[int64]models.Product),
		sales:    make(map[int64]models.Sale),
		users:    make(map[int64]models.User),
	}
}

func (s *fakeStore) addProduct(p models.Product) models.Product {
	s.nextProductID++
	p.ID = s.nextProductID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = p
	return p
}

func (s *fakeStore) snapshot() *fakeStore {
	clone := &fakeStore{
		products:      make(map[int64]models.Product, len(s.products)),
		sales:         make(map[int64]models.Sale, len(s.sales)),
		saleItems:     append([]models.SaleItem(nil), s.saleItems...),
		logs:          append([]models.InventoryLogEntry(nil), s.logs...),
		users:         make(map[int64]models.User, len(s.users)),
		messages:      append([]models.ChatMessage(nil), s.messages...),
		nextProductID: s.nextProductID,
		nextSaleID:    s.nextSaleID,
		nextItemID:    s.nextItemID,
		nextLogID:     s.nextLogID,
		nextUserID:    s.nextUserID,
		nextMessageID: s.nextMessageID,
	}
	for id, p := range s.products {
		clone.products[id] = p
	}
	for id, sale := range s.sales {
		clone.sales[id] = sale
	}
	for id, u := range s.users {
		clone.users[id] = u
	}
	return clone
}

func (s *fakeStore) restore(from *fakeStore) {
	s.products = from.products
	s.sales = from.sales
	s.saleItems = from.saleItems
	s.logs = from.logs
	s.users = from.users
	s.messages = from.messages
	s.nextProductID = from.nextProductID
	s.nextSaleID = from.nextSaleID
	s.nextItemID = from.nextItemID
	s.nextLogID = from.nextLogID
	s.nextUserID = from.nextUserID
	s.nextMessageID = from.nextMessageID
}

// --- fake transaction manager ---

type fakeTx struct {
	store    *fakeStore
	saved    *fakeStore
	finished bool
}

func (t *fakeTx) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (t *fakeTx) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (t *fakeTx) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }

func (t *fakeTx) Commit() error {
	t.finished = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.finished {
		t.store.restore(t.saved)
		t.finished = true
	}
	return nil
}

type fakeTxManager struct {
	store    *fakeStore
	beginErr error
}

func (m *fakeTxManager) Begin() (repositories.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &fakeTx{store: m.store, saved: m.store.snapshot()}, nil
}

// --- fake ProductRepository ---

type fakeProductRepo struct {
	store *fakeStore
}

func (r *fakeProductRepo) CreateProduct(_ repositories.SQLExecutor, product *models.Product) (int64, error) {
	for _, p := range r.store.products {
		if p.Code == product.Code {
			return 0, repositories.ErrDuplicateKey
		}
	}
	stored := r.store.addProduct(*product)
	*product = stored
	return stored.ID, nil
}

func (r *fakeProductRepo) GetProductByID(id int64) (*models.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) GetProductByCode(code string) (*models.Product, error) {
	for _, p := range r.store.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeProductRepo) GetProducts(filters models.ProductFilters) ([]models.Product, int, error) {
	products := []models.Product{}
	for _, p := range r.store.products {
		if filters.Active != nil && p.IsActive != *filters.Active {
			continue
		}
		if filters.Category != nil && p.Category != *filters.Category {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, len(products), nil
}

func (r *fakeProductRepo) UpdateProduct(_ repositories.SQLExecutor, product *models.Product) error {
	if _, ok := r.store.products[product.ID]; !ok {
		return repositories.ErrNotFound
	}
	for _, p := range r.store.products {
		if p.Code == product.Code && p.ID != product.ID {
			return repositories.ErrDuplicateKey
		}
	}
	stored := *product
	stored.UpdatedAt = time.Now()
	r.store.products[product.ID] = stored
	return nil
}

func (r *fakeProductRepo) DeactivateProduct(_ repositories.SQLExecutor, id int64) error {
	p, ok := r.store.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.IsActive = false
	r.store.products[id] = p
	return nil
}

func (r *fakeProductRepo) GetLowStockProducts() ([]models.Product, error) {
	products := []models.Product{}
	for _, p := range r.store.products {
		if p.IsActive && p.Quantity <= p.MinStock {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *fakeProductRepo) GetProductForUpdate(_ repositories.SQLExecutor, id int64) (*models.Product, error) {
	p, ok := r.store.products[id]
	if !ok || !p.IsActive {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) AdjustQuantity(_ repositories.SQLExecutor, productID int64, delta int) (int, int, error) {
	p, ok := r.store.products[productID]
	if !ok || !p.IsActive {
		return 0, 0, repositories.ErrNotFound
	}
	if p.Quantity+delta < 0 {
		return 0, 0, repositories.ErrStockConflict
	}
	previous := p.Quantity
	p.Quantity += delta
	p.UpdatedAt = time.Now()
	r.store.products[productID] = p
	return previous, p.Quantity, nil
}

// --- fake SaleRepository ---

type fakeSaleRepo struct {
	store *fakeStore

	// forcedDuplicates makes the next N CreateSale calls fail with
	// ErrDuplicateKey, simulating sale-number races lost to another cashier.
	forcedDuplicates int
}

func (r *fakeSaleRepo) CreateSale(_ repositories.SQLExecutor, sale *models.Sale) (int64, error) {
	if r.forcedDuplicates > 0 {
		r.forcedDuplicates--
		return 0, repositories.ErrDuplicateKey
	}
	for _, existing := range r.store.sales {
		if existing.SaleNumber == sale.SaleNumber {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.store.nextSaleID++
	sale.ID = r.store.nextSaleID
	r.store.sales[sale.ID] = *sale
	return sale.ID, nil
}

func (r *fakeSaleRepo) CreateSaleItem(_ repositories.SQLExecutor, item *models.SaleItem) (int64, error) {
	r.store.nextItemID++
	item.ID = r.store.nextItemID
	item.CreatedAt = time.Now()
	r.store.saleItems = append(r.store.saleItems, *item)
	return item.ID, nil
}

func (r *fakeSaleRepo) GetSaleByID(_ repositories.SQLExecutor, saleID int64) (*models.Sale, error) {
	sale, ok := r.store.sales[saleID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &sale, nil
}

func (r *fakeSaleRepo) GetSaleItemsBySaleID(_ repositories.SQLExecutor, saleID int64) ([]models.SaleItem, error) {
	items := []models.SaleItem{}
	for _, item := range r.store.saleItems {
		if item.SaleID == saleID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *fakeSaleRepo) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	sales := []models.Sale{}
	for _, sale := range r.store.sales {
		if filters.Status != nil && sale.Status != *filters.Status {
			continue
		}
		if filters.UserID != nil && sale.UserID != *filters.UserID {
			continue
		}
		sales = append(sales, sale)
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].ID > sales[j].ID })
	return sales, len(sales), nil
}

func (r *fakeSaleRepo) UpdateSaleStatus(_ repositories.SQLExecutor, saleID int64, fromStatus, toStatus string) (int64, error) {
	sale, ok := r.store.sales[saleID]
	if !ok || sale.Status != fromStatus {
		return 0, nil
	}
	sale.Status = toStatus
	sale.UpdatedAt = time.Now()
	r.store.sales[saleID] = sale
	return 1, nil
}

func (r *fakeSaleRepo) LastSaleNumberForDate(_ repositories.SQLExecutor, datePrefix string) (string, error) {
	last := ""
	for _, sale := range r.store.sales {
		if strings.HasPrefix(sale.SaleNumber, datePrefix) && sale.SaleNumber > last {
			last = sale.SaleNumber
		}
	}
	if last == "" {
		return "", repositories.ErrNotFound
	}
	return last, nil
}

// --- fake InventoryLogRepository ---

type fakeInventoryLogRepo struct {
	store *fakeStore
}

func (r *fakeInventoryLogRepo) CreateEntry(_ repositories.SQLExecutor, entry *models.InventoryLogEntry) (int64, error) {
	r.store.nextLogID++
	entry.ID = r.store.nextLogID
	entry.CreatedAt = time.Now()
	r.store.logs = append(r.store.logs, *entry)
	return entry.ID, nil
}

func (r *fakeInventoryLogRepo) GetEntries(filters models.InventoryLogFilters) ([]models.InventoryLogEntry, int, error) {
	entries := []models.InventoryLogEntry{}
	for _, e := range r.store.logs {
		if filters.ProductID != nil && e.ProductID != *filters.ProductID {
			continue
		}
		if filters.ActionType != nil && e.ActionType != *filters.ActionType {
			continue
		}
		entries = append(entries, e)
	}
	return entries, len(entries), nil
}

// --- fake AuthRepository ---

type fakeAuthRepo struct {
	store *fakeStore
}

func (r *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) (int64, error) {
	for _, u := range r.store.users {
		if u.Username == user.Username {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.store.nextUserID++
	user.ID = r.store.nextUserID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.store.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeAuthRepo) GetUserByUsername(username string) (*models.User, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAuthRepo) GetUserByID(id int64) (*models.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

// --- fake ChatRepository ---

type fakeChatRepo struct {
	store *fakeStore
}

func (r *fakeChatRepo) CreateMessage(_ repositories.SQLExecutor, message *models.ChatMessage) (int64, error) {
	r.store.nextMessageID++
	message.ID = r.store.nextMessageID
	message.CreatedAt = time.Now()
	r.store.messages = append(r.store.messages, *message)
	return message.ID, nil
}

func (r *fakeChatRepo) GetMessages(afterID int64, limit int) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	for _, m := range r.store.messages {
		if m.ID > afterID {
			messages = append(messages, m)
		}
		if len(messages) == limit {
			break
		}
	}
	return messages, nil
}

// --- fake TokenStore ---

type fakeTokenStore struct {
	tokens map[string]int64
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]int64)}
}

func (s *fakeTokenStore) Save(_ context.Context, token string, userID int64, _ time.Duration) error {
	s.tokens[token] = userID
	return nil
}

func (s *fakeTokenStore) Lookup(_ context.Context, token string) (int64, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return 0, sessions.ErrTokenNotFound
	}
	return userID, nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}
