package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/apperr"
	authdom "storefront/internal/domain/auth"
	cartdom "storefront/internal/domain/cart"
	categorydom "storefront/internal/domain/category"
	commentdom "storefront/internal/domain/comment"
	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	"storefront/internal/domain/permission"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

// memStore is an in-memory stand-in for the PostgreSQL adapters. WithinTx
// serializes transactions and restores a snapshot when fn fails, which
// gives the same all-or-nothing behavior the usecases rely on.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users      map[string]userdom.User
	categories map[string]categorydom.Category
	products   map[string]productdom.Product
	comments   map[string]commentdom.Comment
	carts      map[string]cartdom.Cart // header only, keyed by cart id
	cartByUser map[string]string
	lines      map[string]cartdom.Line
	orders     map[string]orderdom.Order // header only
	items      map[string]orderdom.Item

	fail map[string]error
	seq  int
}

type inTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]userdom.User{},
		categories: map[string]categorydom.Category{},
		products:   map[string]productdom.Product{},
		comments:   map[string]commentdom.Comment{},
		carts:      map[string]cartdom.Cart{},
		cartByUser: map[string]string{},
		lines:      map[string]cartdom.Line{},
		orders:     map[string]orderdom.Order{},
		items:      map[string]orderdom.Item{},
		fail:       map[string]error{},
	}
}

type snapshot struct {
	users      map[string]userdom.User
	categories map[string]categorydom.Category
	products   map[string]productdom.Product
	comments   map[string]commentdom.Comment
	carts      map[string]cartdom.Cart
	cartByUser map[string]string
	lines      map[string]cartdom.Line
	orders     map[string]orderdom.Order
	items      map[string]orderdom.Item
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		users: cloneMap(s.users), categories: cloneMap(s.categories), products: cloneMap(s.products),
		comments: cloneMap(s.comments), carts: cloneMap(s.carts), cartByUser: cloneMap(s.cartByUser),
		lines: cloneMap(s.lines), orders: cloneMap(s.orders), items: cloneMap(s.items),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.categories, s.products = snap.users, snap.categories, snap.products
	s.comments, s.carts, s.cartByUser = snap.comments, snap.carts, snap.cartByUser
	s.lines, s.orders, s.items = snap.lines, snap.orders, snap.items
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, inTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// failAt makes the named operation return err.
func (s *memStore) failAt(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *memStore) failure(op string) error {
	return s.fail[op]
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%04d", prefix, s.seq)
}

// ---- seeding helpers ----

func (s *memStore) seedUser(t *testing.T, username string, staff bool) permission.Actor {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("u")
	u, err := userdom.New(id, username, username+"@example.com", "", "", time.Now())
	require.NoError(t, err)
	u.IsStaff = staff
	require.NoError(t, u.SetPassword("c0rrect-h0rse"))
	s.users[id] = u
	return permission.Actor{UserID: id, Username: username, IsStaff: staff}
}

func (s *memStore) seedCategory(t *testing.T, title string, active bool) categorydom.Category {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := categorydom.New(s.nextID("c"), title, strings.ToLower(strings.ReplaceAll(title, " ", "-")), "", active, time.Now())
	require.NoError(t, err)
	s.categories[c.ID] = c
	return c
}

func (s *memStore) seedProduct(t *testing.T, cat categorydom.Category, title, price string, stock int, active bool) productdom.Product {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("p")
	p, err := productdom.New(id, cat.ID, title, "seeded product", id, decimal.RequireFromString(price), stock, active, time.Now())
	require.NoError(t, err)
	p.CategoryTitle = cat.Title
	s.products[id] = p
	return p
}

func (s *memStore) stockOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) lineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// ============================================================
// users
// ============================================================

type memUsers struct{ s *memStore }

func (r memUsers) GetByID(_ context.Context, id string) (userdom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	return u, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (userdom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return userdom.User{}, userdom.ErrNotFound
}

func (r memUsers) ExistsUsername(_ context.Context, username, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID != excludeID && u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) ExistsEmail(_ context.Context, email, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) Create(_ context.Context, u userdom.User) (userdom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUsers) Save(_ context.Context, u userdom.User) (userdom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	r.s.users[u.ID] = u
	return u, nil
}

// ============================================================
// categories
// ============================================================

type memCategories struct{ s *memStore }

func (r memCategories) GetByID(_ context.Context, id string) (categorydom.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return categorydom.Category{}, categorydom.ErrNotFound
	}
	return c, nil
}

func (r memCategories) List(_ context.Context, f categorydom.Filter, page common.Page) (common.PageResult[categorydom.Category], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []categorydom.Category
	for _, c := range r.s.categories {
		if f.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return common.Paginate(out, page), nil
}

func (r memCategories) Create(_ context.Context, c categorydom.Category) (categorydom.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.Title == c.Title {
			return categorydom.Category{}, categorydom.ErrTitleTaken
		}
		if other.Slug == c.Slug {
			return categorydom.Category{}, categorydom.ErrSlugTaken
		}
	}
	r.s.categories[c.ID] = c
	return c, nil
}

func (r memCategories) Save(_ context.Context, c categorydom.Category) (categorydom.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[c.ID] = c
	return c, nil
}

func (r memCategories) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return categorydom.ErrHasProducts
		}
	}
	delete(r.s.categories, id)
	return nil
}

// ============================================================
// products
// ============================================================

type memProducts struct{ s *memStore }

func (r memProducts) GetByID(_ context.Context, id string) (productdom.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (r memProducts) List(_ context.Context, f productdom.Filter, page common.Page) (common.PageResult[productdom.Product], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []productdom.Product
	for _, p := range r.s.products {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Description), q) {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return common.Paginate(out, page), nil
}

func (r memProducts) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.products {
		if other.Slug == p.Slug {
			return productdom.Product{}, productdom.ErrSlugTaken
		}
	}
	r.s.products[p.ID] = p
	return p, nil
}

func (r memProducts) Save(_ context.Context, p productdom.Product) (productdom.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	if c, ok := r.s.categories[p.CategoryID]; ok {
		p.CategoryTitle = c.Title
	}
	r.s.products[p.ID] = p
	return p, nil
}

// Delete mirrors the FK actions: cart lines cascade, order lines detach.
func (r memProducts) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return productdom.ErrNotFound
	}
	delete(r.s.products, id)
	for lid, l := range r.s.lines {
		if l.ProductID == id {
			delete(r.s.lines, lid)
		}
	}
	for iid, it := range r.s.items {
		if it.ProductID != nil && *it.ProductID == id {
			it.ProductID = nil
			r.s.items[iid] = it
		}
	}
	return nil
}

func (r memProducts) CountByCategory(_ context.Context, categoryID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r memProducts) LockForUpdate(_ context.Context, ids []string) ([]productdom.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var out []productdom.Product
	for _, id := range sorted {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) DecreaseStock(_ context.Context, id string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("products.DecreaseStock"); err != nil {
		return err
	}
	p, ok := r.s.products[id]
	if !ok || p.Stock < qty {
		return productdom.ErrInsufficientStock
	}
	p.Stock -= qty
	r.s.products[id] = p
	return nil
}

// ============================================================
// comments
// ============================================================

type memComments struct{ s *memStore }

func (r memComments) GetByID(_ context.Context, id string) (commentdom.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return commentdom.Comment{}, commentdom.ErrNotFound
	}
	return c, nil
}

func (r memComments) List(_ context.Context, f commentdom.Filter, page common.Page) (common.PageResult[commentdom.Comment], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []commentdom.Comment
	for _, c := range r.s.comments {
		if f.ProductID != "" && c.ProductID != f.ProductID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return common.Paginate(out, page), nil
}

func (r memComments) Create(_ context.Context, c commentdom.Comment) (commentdom.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.comments {
		if other.ProductID == c.ProductID && other.UserID == c.UserID {
			return commentdom.Comment{}, commentdom.ErrAlreadyReviewed
		}
	}
	r.s.comments[c.ID] = c
	return c, nil
}

func (r memComments) Save(_ context.Context, c commentdom.Comment) (commentdom.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comments[c.ID] = c
	return c, nil
}

func (r memComments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return commentdom.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r memComments) DeleteByProduct(_ context.Context, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.comments {
		if c.ProductID == productID {
			delete(r.s.comments, id)
		}
	}
	return nil
}

// ============================================================
// carts
// ============================================================

type memCarts struct{ s *memStore }

func (r memCarts) GetOrCreate(_ context.Context, userID string, _ bool) (cartdom.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.cartByUser[userID]
	if !ok {
		id = r.s.nextID("cart")
		now := time.Now()
		r.s.carts[id] = cartdom.Cart{ID: id, UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.s.cartByUser[userID] = id
	}
	c := r.s.carts[id]
	for _, l := range r.s.lines {
		if l.CartID != id {
			continue
		}
		if p, ok := r.s.products[l.ProductID]; ok {
			l.ProductTitle = p.Title
			l.UnitPrice = p.Price
		}
		c.Lines = append(c.Lines, l)
	}
	sort.Slice(c.Lines, func(i, j int) bool { return c.Lines[i].ID < c.Lines[j].ID })
	return c, nil
}

func (r memCarts) InsertLine(_ context.Context, l cartdom.Line) (cartdom.Line, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.lines {
		if other.CartID == l.CartID && other.ProductID == l.ProductID {
			return cartdom.Line{}, apperr.New(apperr.KindConflict, "duplicate cart line")
		}
	}
	r.s.lines[l.ID] = l
	return l, nil
}

func (r memCarts) UpdateLineQuantity(_ context.Context, cartID, lineID string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lines[lineID]
	if !ok || l.CartID != cartID {
		return cartdom.ErrLineNotFound
	}
	l.Quantity = qty
	r.s.lines[lineID] = l
	return nil
}

func (r memCarts) DeleteLine(_ context.Context, cartID, lineID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lines[lineID]
	if !ok || l.CartID != cartID {
		return cartdom.ErrLineNotFound
	}
	delete(r.s.lines, lineID)
	return nil
}

func (r memCarts) Clear(_ context.Context, cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("carts.Clear"); err != nil {
		return err
	}
	for id, l := range r.s.lines {
		if l.CartID == cartID {
			delete(r.s.lines, id)
		}
	}
	return nil
}

// ============================================================
// orders
// ============================================================

type memOrders struct{ s *memStore }

func (r memOrders) load(id string) (orderdom.Order, bool) {
	o, ok := r.s.orders[id]
	if !ok {
		return orderdom.Order{}, false
	}
	o.Items = nil
	for _, it := range r.s.items {
		if it.OrderID == id {
			if it.ProductID != nil {
				if p, ok := r.s.products[*it.ProductID]; ok {
					it.Product = &orderdom.ItemProduct{ID: p.ID, Title: p.Title, Price: p.Price, ImageURL: p.ImageURL, CategoryTitle: p.CategoryTitle}
				}
			} else {
				it.Product = nil
			}
			o.Items = append(o.Items, it)
		}
	}
	sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].ID < o.Items[j].ID })
	if u, ok := r.s.users[o.UserID]; ok {
		o.Username = u.Username
	}
	return o, true
}

func (r memOrders) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.load(id)
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (r memOrders) GetForUpdate(ctx context.Context, id string) (orderdom.Order, error) {
	return r.GetByID(ctx, id)
}

func (r memOrders) List(_ context.Context, f orderdom.Filter, page common.Page) (common.PageResult[orderdom.Order], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []orderdom.Order
	for id, o := range r.s.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		full, _ := r.load(id)
		out = append(out, full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return common.Paginate(out, page), nil
}

func (r memOrders) Create(_ context.Context, o orderdom.Order) (orderdom.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.Items = nil
	r.s.orders[o.ID] = o
	return o, nil
}

func (r memOrders) AddItem(_ context.Context, it orderdom.Item) (orderdom.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[it.OrderID]; !ok {
		return orderdom.Item{}, orderdom.ErrNotFound
	}
	r.s.items[it.ID] = it
	return it, nil
}

func (r memOrders) SetTotal(_ context.Context, id string, total decimal.Decimal, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("orders.SetTotal"); err != nil {
		return err
	}
	o, ok := r.s.orders[id]
	if !ok {
		return orderdom.ErrNotFound
	}
	o.Total = total
	o.UpdatedAt = now
	r.s.orders[id] = o
	return nil
}

func (r memOrders) UpdateStatus(_ context.Context, id string, status orderdom.Status, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return orderdom.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = now
	r.s.orders[id] = o
	return nil
}

// ============================================================
// collaborators
// ============================================================

type recordingNotifier struct {
	mu     sync.Mutex
	orders []string
	err    error
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, o orderdom.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o.ID)
	return n.err
}

type fakeTokens struct{ n int }

func (f *fakeTokens) IssuePair(s authdom.Subject) (authdom.TokenPair, error) {
	f.n++
	return authdom.TokenPair{
		Access:  "access|" + s.UserID + "|" + strconv.Itoa(f.n),
		Refresh: "refresh|" + s.UserID + "|" + strconv.Itoa(f.n),
	}, nil
}

func (f *fakeTokens) IssueAccess(s authdom.Subject) (string, error) {
	f.n++
	return "access|" + s.UserID + "|" + strconv.Itoa(f.n), nil
}

// Parse accepts "<type>|<user>|<jti>".
func (f *fakeTokens) Parse(raw string, want authdom.TokenType) (authdom.Claims, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 || authdom.TokenType(parts[0]) != want {
		return authdom.Claims{}, authdom.ErrInvalidToken
	}
	return authdom.Claims{
		ID:        parts[0] + "-" + parts[2],
		Subject:   parts[1],
		Type:      want,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemRevoker() *memRevoker { return &memRevoker{revoked: map[string]time.Time{}} }

func (m *memRevoker) Revoke(_ context.Context, jti string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = exp
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
