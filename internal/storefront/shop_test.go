package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/apiclient"
	"github.com/you/storefront/internal/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type shopUser struct {
	password string
	token    string
	profile  domain.UserProfile
}

type seenRequest struct {
	Method string
	Path   string
	Auth   string
	Cart   string
}

// fakeShop is an in-memory storefront API. Responses are computed when the
// request arrives; a gate only delays writing them.
type fakeShop struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	users     map[string]*shopUser
	tokens    map[string]string
	products  map[string]domain.Product
	carts     map[string][]domain.CartLine
	wishlists map[string][]domain.WishlistLine
	orders    []domain.Order
	guests    int
	requests  []seenRequest
	failNext  map[string][]int
	gates     map[string][]*shopGate
	allGates  []*shopGate
	// merge decides the quantity when a product already in the cart is added again
	merge   func(existing, added int) int
	dupCart bool
}

func newFakeShop(t *testing.T) *fakeShop {
	t.Helper()
	s := &fakeShop{
		t:         t,
		users:     make(map[string]*shopUser),
		tokens:    make(map[string]string),
		carts:     make(map[string][]domain.CartLine),
		wishlists: make(map[string][]domain.WishlistLine),
		failNext:  make(map[string][]int),
		gates:     make(map[string][]*shopGate),
		merge:     func(existing, added int) int { return existing + added },
		products: map[string]domain.Product{
			"p1": {ProductID: "p1", Name: "Robe wax", Price: 15000, Stock: 10, Category: "mode", Images: []string{"p1.jpg"}},
			"p2": {ProductID: "p2", Name: "Savon karite", Price: 8000, Stock: 3, Category: "beaute", Images: []string{"p2.jpg"}},
			"p3": {ProductID: "p3", Name: "Bissap", Price: 2500, Stock: 50, Category: "epicerie", Images: []string{"p3.jpg"}},
		},
	}
	s.addUser("a@b.com", "pw", "T1", domain.UserProfile{ID: "u1", Name: "Awa", Role: domain.RoleCustomer})
	s.addUser("b@b.com", "pw2", "T2", domain.UserProfile{ID: "u2", Name: "Bamba", Role: domain.RoleCustomer})
	s.addUser("admin@shop.sn", "admin", "TA", domain.UserProfile{ID: "u-admin", Name: "Admin", Role: domain.RoleAdmin})

	s.srv = httptest.NewServer(s)
	t.Cleanup(func() {
		s.releaseAll()
		s.srv.Close()
	})
	return s
}

func (s *fakeShop) URL() string { return s.srv.URL + "/api" }

func (s *fakeShop) addUser(email, password, token string, p domain.UserProfile) {
	p.Email = email
	s.users[email] = &shopUser{password: password, token: token, profile: p}
}

// revoke forgets a token server-side
func (s *fakeShop) revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// fail makes the next request on key ("METHOD /path") fail with status.
// Status 0 drops the connection.
func (s *fakeShop) fail(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[key] = append(s.failNext[key], status)
}

type shopGate struct {
	ch   chan struct{}
	once sync.Once
}

func (g *shopGate) release() { g.once.Do(func() { close(g.ch) }) }

// gate holds the response of the next request on key until release is called
func (s *fakeShop) gate(key string) (release func()) {
	g := &shopGate{ch: make(chan struct{})}
	s.mu.Lock()
	s.gates[key] = append(s.gates[key], g)
	s.allGates = append(s.allGates, g)
	s.mu.Unlock()
	return g.release
}

func (s *fakeShop) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.allGates {
		g.release()
	}
}

func (s *fakeShop) setCart(owner string, lines ...domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[owner] = lines
}

func (s *fakeShop) seen() []seenRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]seenRequest(nil), s.requests...)
}

func (s *fakeShop) count(key string) int {
	n := 0
	for _, r := range s.seen() {
		if r.Method+" "+r.Path == key {
			n++
		}
	}
	return n
}

func (s *fakeShop) last() seenRequest {
	reqs := s.seen()
	require.NotEmpty(s.t, reqs)
	return reqs[len(reqs)-1]
}

// waitFor blocks until n requests on key have arrived
func (s *fakeShop) waitFor(key string, n int) {
	s.t.Helper()
	require.Eventually(s.t, func() bool { return s.count(key) >= n }, 2*time.Second, 5*time.Millisecond)
}

type reply struct {
	status int
	body   any
	header http.Header
}

func detail(status int, msg string) reply {
	return reply{status: status, body: map[string]string{"detail": msg}}
}

func ok(body any) reply { return reply{status: http.StatusOK, body: body} }

func (s *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	key := r.Method + " " + path

	s.mu.Lock()
	s.requests = append(s.requests, seenRequest{
		Method: r.Method,
		Path:   path,
		Auth:   r.Header.Get("Authorization"),
		Cart:   r.Header.Get(apiclient.CartSessionHeader),
	})
	var gate *shopGate
	if gs := s.gates[key]; len(gs) > 0 {
		gate, s.gates[key] = gs[0], gs[1:]
	}
	var rep reply
	if fs := s.failNext[key]; len(fs) > 0 {
		status := fs[0]
		s.failNext[key] = fs[1:]
		if status == 0 {
			s.mu.Unlock()
			hijackClose(w)
			return
		}
		rep = detail(status, "injected failure")
	} else {
		rep = s.route(r, path)
	}
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate.ch:
		case <-r.Context().Done():
			return
		}
	}

	for k, v := range rep.header {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	if rep.body != nil {
		_ = json.NewEncoder(w).Encode(rep.body)
	}
}

func hijackClose(w http.ResponseWriter) {
	if hj, ok := w.(http.Hijacker); ok {
		if conn, _, err := hj.Hijack(); err == nil {
			conn.Close()
		}
	}
}

// user resolves the bearer token; ok is false for a missing or unknown token
func (s *fakeShop) user(r *http.Request) (*shopUser, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	email, found := s.tokens[token]
	if !found {
		return nil, false
	}
	return s.users[email], true
}

func (s *fakeShop) cartOwner(r *http.Request) (string, http.Header) {
	if u, ok := s.user(r); ok {
		return u.profile.ID, nil
	}
	if sid := r.Header.Get(apiclient.CartSessionHeader); sid != "" {
		return sid, nil
	}
	s.guests++
	sid := fmt.Sprintf("guest-%d", s.guests)
	return sid, http.Header{apiclient.CartSessionHeader: {sid}}
}

func decode[T any](r *http.Request) (T, error) {
	var v T
	err := json.NewDecoder(r.Body).Decode(&v)
	return v, err
}

func (s *fakeShop) route(r *http.Request, path string) reply {
	switch {
	case r.Method == http.MethodGet && path == "/auth/me":
		u, found := s.user(r)
		if !found {
			return detail(http.StatusUnauthorized, "Non authentifié")
		}
		return ok(u.profile)

	case r.Method == http.MethodPost && path == "/auth/login":
		req, err := decode[domain.LoginRequest](r)
		if err != nil {
			return detail(http.StatusUnprocessableEntity, err.Error())
		}
		u, found := s.users[req.Email]
		if !found || u.password != req.Password {
			return detail(http.StatusUnauthorized, "Email ou mot de passe incorrect")
		}
		s.tokens[u.token] = req.Email
		return ok(domain.AuthResult{Token: u.token, UserProfile: u.profile})

	case r.Method == http.MethodPost && path == "/auth/register":
		req, err := decode[domain.RegisterRequest](r)
		if err != nil || !strings.Contains(req.Email, "@") {
			return detail(http.StatusUnprocessableEntity, "value is not a valid email address")
		}
		if _, exists := s.users[req.Email]; exists {
			return detail(http.StatusConflict, "Cet email est déjà utilisé")
		}
		id := fmt.Sprintf("u%d", len(s.users)+1)
		s.addUser(req.Email, req.Password, "T-"+id, domain.UserProfile{ID: id, Name: req.Name, Phone: req.Phone, Role: domain.RoleCustomer})
		u := s.users[req.Email]
		s.tokens[u.token] = req.Email
		return ok(domain.AuthResult{Token: u.token, UserProfile: u.profile})

	case r.Method == http.MethodPost && path == "/auth/logout":
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		delete(s.tokens, token)
		return ok(map[string]string{"message": "Déconnexion réussie"})

	case path == "/cart" || strings.HasPrefix(path, "/cart/"):
		return s.routeCart(r, path)

	case path == "/wishlist" || strings.HasPrefix(path, "/wishlist/"):
		return s.routeWishlist(r, path)

	case r.Method == http.MethodGet && path == "/products":
		q := r.URL.Query()
		var out []domain.Product
		for _, p := range s.products {
			if c := q.Get("category"); c != "" && p.Category != c {
				continue
			}
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
		return ok(out)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/products/"):
		p, found := s.products[strings.TrimPrefix(path, "/products/")]
		if !found {
			return detail(http.StatusNotFound, "Produit non trouvé")
		}
		return ok(p)

	case r.Method == http.MethodGet && path == "/categories":
		return ok([]domain.Category{{ID: "mode", Name: "Mode"}, {ID: "beaute", Name: "Beauté"}})

	case r.Method == http.MethodPost && path == "/orders":
		req, err := decode[domain.OrderRequest](r)
		if err != nil {
			return detail(http.StatusUnprocessableEntity, err.Error())
		}
		o := domain.Order{
			OrderID:       fmt.Sprintf("ORD-%04d", len(s.orders)+1),
			Items:         req.Items,
			Shipping:      req.Shipping,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: "pending",
			OrderStatus:   "pending",
			Subtotal:      req.Subtotal,
			ShippingCost:  req.ShippingCost,
			Total:         req.Total,
			CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		if u, found := s.user(r); found {
			o.UserID = u.profile.ID
			delete(s.carts, u.profile.ID)
		}
		s.orders = append(s.orders, o)
		return ok(o)

	case r.Method == http.MethodGet && path == "/orders":
		u, found := s.user(r)
		if !found {
			return detail(http.StatusUnauthorized, "Non authentifié")
		}
		out := []domain.Order{}
		for _, o := range s.orders {
			if o.UserID == u.profile.ID {
				out = append(out, o)
			}
		}
		return ok(out)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/orders/"):
		id := strings.TrimPrefix(path, "/orders/")
		for _, o := range s.orders {
			if o.OrderID == id {
				return ok(o)
			}
		}
		return detail(http.StatusNotFound, "Commande non trouvée")

	case r.Method == http.MethodGet && path == "/admin/stats":
		u, found := s.user(r)
		if !found || u.profile.Role != domain.RoleAdmin {
			return detail(http.StatusForbidden, "Accès admin requis")
		}
		var revenue int64
		for _, o := range s.orders {
			revenue += o.Total
		}
		return ok(domain.AdminStats{
			TotalOrders:   int64(len(s.orders)),
			PendingOrders: int64(len(s.orders)),
			TotalProducts: int64(len(s.products)),
			TotalUsers:    int64(len(s.users)),
			TotalRevenue:  revenue,
		})
	}
	return detail(http.StatusNotFound, "Not Found")
}

func (s *fakeShop) routeCart(r *http.Request, path string) reply {
	owner, header := s.cartOwner(r)
	withHeader := func(rep reply) reply {
		rep.header = header
		return rep
	}
	lines := s.carts[owner]

	switch {
	case r.Method == http.MethodGet && path == "/cart":
		items := append([]domain.CartLine{}, lines...)
		if s.dupCart && len(items) > 0 {
			items = append(items, items[0])
		}
		var total int64
		for _, l := range items {
			total += l.Price * int64(l.Quantity)
		}
		return withHeader(ok(domain.Cart{Items: items, Total: total}))

	case r.Method == http.MethodPost && path == "/cart/add":
		req, err := decode[lineQuantity](r)
		if err != nil {
			return detail(http.StatusUnprocessableEntity, err.Error())
		}
		p, found := s.products[req.ProductID]
		if !found {
			return detail(http.StatusNotFound, "Produit non trouvé")
		}
		if p.Stock < req.Quantity {
			return detail(http.StatusBadRequest, "Stock insuffisant")
		}
		for i, l := range lines {
			if l.ProductID == req.ProductID {
				lines[i].Quantity = s.merge(l.Quantity, req.Quantity)
				s.carts[owner] = lines
				return withHeader(ok(map[string]string{"message": "Produit ajouté au panier"}))
			}
		}
		s.carts[owner] = append(lines, domain.CartLine{
			ProductID: p.ProductID, Name: p.Name, Price: p.Price, Quantity: req.Quantity, Image: p.Images[0], Stock: p.Stock,
		})
		return withHeader(ok(map[string]string{"message": "Produit ajouté au panier"}))

	case r.Method == http.MethodPut && path == "/cart/update":
		req, err := decode[lineQuantity](r)
		if err != nil {
			return detail(http.StatusUnprocessableEntity, err.Error())
		}
		for i, l := range lines {
			if l.ProductID == req.ProductID {
				if req.Quantity <= 0 {
					s.carts[owner] = append(lines[:i:i], lines[i+1:]...)
				} else {
					lines[i].Quantity = req.Quantity
				}
				return ok(map[string]string{"message": "Panier mis à jour"})
			}
		}
		return detail(http.StatusNotFound, "Produit non trouvé dans le panier")

	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/cart/remove/"):
		id := strings.TrimPrefix(path, "/cart/remove/")
		for i, l := range lines {
			if l.ProductID == id {
				s.carts[owner] = append(lines[:i:i], lines[i+1:]...)
				return ok(map[string]string{"message": "Produit retiré du panier"})
			}
		}
		return detail(http.StatusNotFound, "Produit non trouvé dans le panier")

	case r.Method == http.MethodDelete && path == "/cart/clear":
		delete(s.carts, owner)
		return ok(map[string]string{"message": "Panier vidé"})
	}
	return detail(http.StatusNotFound, "Not Found")
}

func (s *fakeShop) routeWishlist(r *http.Request, path string) reply {
	u, found := s.user(r)
	if !found {
		return detail(http.StatusUnauthorized, "Non authentifié")
	}
	owner := u.profile.ID
	lines := s.wishlists[owner]

	switch {
	case r.Method == http.MethodGet && path == "/wishlist":
		return ok(domain.Wishlist{Items: append([]domain.WishlistLine{}, lines...)})

	case r.Method == http.MethodPost && strings.HasPrefix(path, "/wishlist/add/"):
		id := strings.TrimPrefix(path, "/wishlist/add/")
		p, exists := s.products[id]
		if !exists {
			return detail(http.StatusNotFound, "Produit non trouvé")
		}
		for _, l := range lines {
			if l.ProductID == id {
				return ok(map[string]string{"message": "Déjà dans la liste"})
			}
		}
		s.wishlists[owner] = append(lines, domain.WishlistLine{
			ProductID: id, Name: p.Name, Price: p.Price, Image: p.Images[0], Stock: p.Stock,
			AddedAt: time.Date(2026, 1, 1, 0, 0, len(lines), 0, time.UTC),
		})
		return ok(map[string]string{"message": "Ajouté à la liste de souhaits"})

	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/wishlist/remove/"):
		id := strings.TrimPrefix(path, "/wishlist/remove/")
		for i, l := range lines {
			if l.ProductID == id {
				s.wishlists[owner] = append(lines[:i:i], lines[i+1:]...)
				break
			}
		}
		return ok(map[string]string{"message": "Produit retiré de la liste de souhaits"})
	}
	return detail(http.StatusNotFound, "Not Found")
}

// harness wires the managers the way the application container does
type harness struct {
	shop     *fakeShop
	store    *mocks.MockTokenStore
	events   *mocks.MockEventSink
	api      *apiclient.Client
	session  *SessionManager
	cart     *Cart
	wishlist *Wishlist
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, mocks.NewMockTokenStore())
}

func newHarnessWithStore(t *testing.T, store *mocks.MockTokenStore) *harness {
	t.Helper()
	shop := newFakeShop(t)
	api, err := apiclient.New(shop.URL(), store, apiclient.WithTimeout(5*time.Second))
	require.NoError(t, err)

	events := mocks.NewMockEventSink()
	logger := zap.NewNop()
	session := NewSessionManager(api, store, events, logger)
	api.OnUnauthorized(session.HandleUnauthorized)

	h := &harness{
		shop:     shop,
		store:    store,
		events:   events,
		api:      api,
		session:  session,
		cart:     NewCart(api, session, events, logger),
		wishlist: NewWishlist(api, session, events, logger),
	}
	t.Cleanup(func() {
		h.cart.Close()
		h.wishlist.Close()
	})
	return h
}

func (h *harness) login(t *testing.T, email, password string) *domain.UserProfile {
	t.Helper()
	user, err := h.session.Login(context.Background(), email, password)
	require.NoError(t, err)
	return user
}
