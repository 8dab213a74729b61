package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/vnb-store/internal/cache"
	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/httpx"
	"github.com/MikeMC777/vnb-store/internal/intake"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/memstore"
	"github.com/MikeMC777/vnb-store/internal/notify"
	"github.com/MikeMC777/vnb-store/internal/order"
	"github.com/MikeMC777/vnb-store/internal/product"
	"github.com/MikeMC777/vnb-store/internal/user"
)

//
// ---------- FIXTURE ----------
//

type testEnv struct {
	r      *gin.Engine
	store  *memstore.Store
	tokens *user.Tokens
	events *notify.Memory
	disp   *notify.Dispatcher
	catID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logx.Nop()
	st := memstore.New()
	mem := &notify.Memory{}
	disp := notify.NewDispatcher(mem, log)
	kv := cache.NewMemory(time.Hour)
	tokens := user.NewTokens("test-secret-0123456789", "vnb-test", time.Hour)

	cat := &product.Category{Name: "Sandals", Description: "Hand-made footwear", IsActive: true}
	if err := st.Products().CreateCategory(context.Background(), cat); err != nil {
		t.Fatalf("category: %v", err)
	}

	carts := cart.NewService(st.Carts(), st.Products(), log)
	a := &app{
		log:      log,
		products: st.Products(),
		tokens:   tokens,
		carts:    carts,
		orders:   order.NewService(st.Orders(), carts, disp, log, order.WithIdempotency(kv)),
		accounts: user.NewService(st.Users(), tokens, kv, disp, log),
		intake:   intake.NewService(st.Intake(), disp, log),
	}
	return &testEnv{r: newRouter(a), store: st, tokens: tokens, events: mem, disp: disp, catID: cat.ID}
}

func (e *testEnv) product(t *testing.T, name, price string, stock int) *product.Product {
	t.Helper()
	p := &product.Product{
		CategoryID:    e.catID,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := e.store.Products().Create(context.Background(), p); err != nil {
		t.Fatalf("product: %v", err)
	}
	return p
}

func (e *testEnv) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.StockQuantity
}

// bearer creates an account and returns a token for it.
func (e *testEnv) bearer(t *testing.T, email string, staff bool) (string, string) {
	t.Helper()
	u := &user.User{Email: email, FirstName: "Test", IsStaff: staff}
	p := user.DefaultProfile("")
	if err := e.store.Users().Create(context.Background(), u, &p); err != nil {
		t.Fatalf("create user: %v", err)
	}
	tok, _, err := e.tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return "Bearer " + tok, u.ID
}

type hdr map[string]string

func (e *testEnv) do(method, path string, body any, headers hdr) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
	return out
}

var checkoutBody = map[string]string{
	"email": "ana@example.com", "first_name": "Ana", "last_name": "Lima", "phone": "555-0101",
	"address": "1 Vine St", "city": "Napa", "state": "CA", "zip_code": "94558", "country": "United States",
}

type orderJSON struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Subtotal    string `json:"subtotal"`
	Shipping    string `json:"shipping"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
	Items       []struct {
		ProductName string `json:"product_name"`
		ProductSKU  string `json:"product_sku"`
		Price       string `json:"price"`
		Quantity    int    `json:"quantity"`
		Subtotal    string `json:"subtotal"`
	} `json:"items"`
}

//
// ---------- CART + CHECKOUT ----------
//

func TestCheckout_AnonymousSession(t *testing.T) {
	e := newTestEnv(t)
	p := e.product(t, "Cedar Sandal", "10.00", 5)
	sess := hdr{httpx.SessionHeader: "sess-1"}

	w := e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 2}, sess)
	if w.Code != http.StatusOK {
		t.Fatalf("add_item status=%d body=%s", w.Code, w.Body.String())
	}
	view := decode[cart.View](t, w)
	if view.Total != "20.00" || view.ItemCount != 2 {
		t.Fatalf("cart total=%s count=%d", view.Total, view.ItemCount)
	}

	w = e.do(http.MethodPost, "/api/orders/orders", checkoutBody, sess)
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout status=%d body=%s", w.Code, w.Body.String())
	}
	o := decode[orderJSON](t, w)
	if o.Subtotal != "20.00" || o.Shipping != "0.00" || o.Tax != "1.60" || o.Total != "21.60" {
		t.Fatalf("totals %+v", o)
	}
	if o.Status != "pending" || len(o.Items) != 1 || o.Items[0].ProductName != "Cedar Sandal" || o.Items[0].Price != "10.00" || o.Items[0].Quantity != 2 {
		t.Fatalf("order %+v", o)
	}
	if got := e.stock(t, p.ID); got != 3 {
		t.Fatalf("stock=%d, want 3", got)
	}

	w = e.do(http.MethodGet, "/api/orders/cart/current", nil, sess)
	if v := decode[cart.View](t, w); len(v.Items) != 0 || v.Total != "0.00" {
		t.Fatalf("cart not emptied: %+v", v)
	}

	_ = e.disp.Close()
	if got := len(e.events.OfType(notify.TypeOrderPlaced)); got != 1 {
		t.Fatalf("order events=%d", got)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodPost, "/api/orders/orders", checkoutBody, hdr{httpx.SessionHeader: "empty"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decode[httpx.ErrorBody](t, w); got.Error != "Cart is empty" {
		t.Fatalf("error=%q", got.Error)
	}
}

func TestCheckout_StockChangedSinceAdd(t *testing.T) {
	e := newTestEnv(t)
	p := e.product(t, "Olive Belt", "20.00", 2)
	sess := hdr{httpx.SessionHeader: "sess-2"}

	if w := e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 2}, sess); w.Code != http.StatusOK {
		t.Fatalf("add_item status=%d", w.Code)
	}
	p.StockQuantity = 1
	if err := e.store.Products().Update(context.Background(), p); err != nil {
		t.Fatalf("update: %v", err)
	}

	w := e.do(http.MethodPost, "/api/orders/orders", checkoutBody, sess)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decode[httpx.ErrorBody](t, w); got.Error != "Insufficient stock for Olive Belt" {
		t.Fatalf("error=%q", got.Error)
	}
	if got := e.stock(t, p.ID); got != 1 {
		t.Fatalf("stock=%d, want 1", got)
	}
	if v := decode[cart.View](t, e.do(http.MethodGet, "/api/orders/cart/current", nil, sess)); len(v.Items) != 1 {
		t.Fatalf("cart should be untouched: %+v", v)
	}
}

func TestCheckout_FieldValidation(t *testing.T) {
	e := newTestEnv(t)
	p := e.product(t, "Clay Mug", "8.00", 5)
	sess := hdr{httpx.SessionHeader: "sess-3"}
	_ = e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": p.ID}, sess)

	w := e.do(http.MethodPost, "/api/orders/orders", map[string]string{"email": "not-an-email", "first_name": "Ana"}, sess)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decode[httpx.ErrorBody](t, w)
	if body.Fields["email"] != "email" || body.Fields["city"] != "required" {
		t.Fatalf("fields=%v", body.Fields)
	}
	if _, ok := body.Fields["first_name"]; ok {
		t.Fatalf("first_name was valid: %v", body.Fields)
	}
	if got := e.stock(t, p.ID); got != 5 {
		t.Fatalf("stock=%d", got)
	}
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	e := newTestEnv(t)
	p := e.product(t, "Linen Scarf", "9.00", 5)
	sess := hdr{httpx.SessionHeader: "sess-4", httpx.IdempotencyHeader: "retry-1"}
	_ = e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 1}, sess)

	first := e.do(http.MethodPost, "/api/orders/orders", checkoutBody, sess)
	if first.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", first.Code, first.Body.String())
	}
	again := e.do(http.MethodPost, "/api/orders/orders", checkoutBody, sess)
	if again.Code != http.StatusOK {
		t.Fatalf("replay status=%d body=%s", again.Code, again.Body.String())
	}
	if a, b := decode[orderJSON](t, first), decode[orderJSON](t, again); a.ID != b.ID || a.OrderNumber != b.OrderNumber {
		t.Fatalf("replay returned another order: %s vs %s", a.ID, b.ID)
	}
	if got := e.stock(t, p.ID); got != 4 {
		t.Fatalf("stock=%d, want 4", got)
	}
}

func TestCart_AddItemErrors(t *testing.T) {
	e := newTestEnv(t)
	p := e.product(t, "Reed Basket", "40.00", 1)
	sess := hdr{httpx.SessionHeader: "sess-5"}

	// over stock
	{
		w := e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 2}, sess)
		if w.Code != http.StatusBadRequest || decode[httpx.ErrorBody](t, w).Error != "Insufficient stock" {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}
	// unknown product
	{
		w := e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": "missing"}, sess)
		if w.Code != http.StatusNotFound || decode[httpx.ErrorBody](t, w).Error != "Product not found" {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}
	// quantity below one
	{
		w := e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 0}, sess)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}
	// unknown line
	{
		w := e.do(http.MethodPost, "/api/orders/cart/remove_item", map[string]any{"item_id": "nope"}, sess)
		if w.Code != http.StatusNotFound || decode[httpx.ErrorBody](t, w).Error != "Cart item not found" {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	e := newTestEnv(t)
	p := e.product(t, "Fig Tote", "12.25", 10)
	sess := hdr{httpx.SessionHeader: "sess-6"}

	v := decode[cart.View](t, e.do(http.MethodPost, "/api/orders/cart/add_item",
		map[string]any{"product_id": p.ID, "quantity": 1, "size": "M", "color": "Olive"}, sess))
	if len(v.Items) != 1 {
		t.Fatalf("items=%d", len(v.Items))
	}
	itemID := v.Items[0].ID

	v = decode[cart.View](t, e.do(http.MethodPost, "/api/orders/cart/update_item", map[string]any{"item_id": itemID, "quantity": 4}, sess))
	if v.Total != "49.00" || v.ItemCount != 4 {
		t.Fatalf("after update %+v", v)
	}
	{ // negative quantity drops the line
		w := e.do(http.MethodPost, "/api/orders/cart/update_item", map[string]any{"item_id": itemID, "quantity": -1}, sess)
		if w.Code != http.StatusOK {
			t.Fatalf("negative update status=%d body=%s", w.Code, w.Body.String())
		}
		if v = decode[cart.View](t, w); len(v.Items) != 0 || v.Total != "0.00" {
			t.Fatalf("after negative update %+v", v)
		}
	}
	v = decode[cart.View](t, e.do(http.MethodPost, "/api/orders/cart/add_item",
		map[string]any{"product_id": p.ID, "quantity": 1, "size": "M", "color": "Olive"}, sess))
	itemID = v.Items[0].ID
	v = decode[cart.View](t, e.do(http.MethodPost, "/api/orders/cart/remove_item", map[string]any{"item_id": itemID}, sess))
	if len(v.Items) != 0 {
		t.Fatalf("after remove %+v", v)
	}
	_ = e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": p.ID}, sess)
	v = decode[cart.View](t, e.do(http.MethodPost, "/api/orders/cart/clear", nil, sess))
	if len(v.Items) != 0 || v.Total != "0.00" {
		t.Fatalf("after clear %+v", v)
	}
}

func TestSessionKeyIsMinted(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/api/orders/cart/current", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	key := w.Header().Get(httpx.SessionHeader)
	if key == "" {
		t.Fatalf("no %s in response", httpx.SessionHeader)
	}
	first := decode[cart.View](t, w)

	w = e.do(http.MethodGet, "/api/orders/cart/current", nil, hdr{httpx.SessionHeader: key})
	if w.Header().Get(httpx.SessionHeader) != key {
		t.Fatalf("session key not echoed")
	}
	if decode[cart.View](t, w).ID != first.ID {
		t.Fatalf("same session should reuse its cart")
	}
}

//
// ---------- ORDERS ----------
//

func TestOrders_VisibilityAndStatus(t *testing.T) {
	e := newTestEnv(t)
	p := e.product(t, "Cedar Sandal", "10.00", 5)
	owner, _ := e.bearer(t, "ana@example.com", false)
	other, _ := e.bearer(t, "bo@example.com", false)
	staff, _ := e.bearer(t, "staff@example.com", true)

	_ = e.do(http.MethodPost, "/api/orders/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 2}, hdr{"Authorization": owner})
	w := e.do(http.MethodPost, "/api/orders/orders", checkoutBody, hdr{"Authorization": owner})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	o := decode[orderJSON](t, w)

	if w := e.do(http.MethodGet, "/api/orders/orders/"+o.ID, nil, hdr{"Authorization": owner}); w.Code != http.StatusOK {
		t.Fatalf("owner get status=%d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/orders/orders/"+o.ID, nil, hdr{"Authorization": other}); w.Code != http.StatusNotFound {
		t.Fatalf("other get status=%d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/orders/orders/"+o.ID, nil, hdr{"Authorization": staff}); w.Code != http.StatusOK {
		t.Fatalf("staff get status=%d", w.Code)
	}
	if list := decode[[]orderJSON](t, e.do(http.MethodGet, "/api/orders/orders", nil, hdr{"Authorization": owner})); len(list) != 1 {
		t.Fatalf("owner list=%d", len(list))
	}
	if list := decode[[]orderJSON](t, e.do(http.MethodGet, "/api/orders/orders", nil, nil)); len(list) != 0 {
		t.Fatalf("anonymous list=%d", len(list))
	}

	path := fmt.Sprintf("/api/admin/orders/%s/status", o.ID)
	if w := e.do(http.MethodPut, path, map[string]string{"status": "canceled"}, hdr{"Authorization": owner}); w.Code != http.StatusForbidden {
		t.Fatalf("non-staff status change=%d", w.Code)
	}
	if w := e.do(http.MethodPut, path, map[string]string{"status": "delivered"}, hdr{"Authorization": staff}); w.Code != http.StatusBadRequest {
		t.Fatalf("pending->delivered=%d", w.Code)
	}
	w = e.do(http.MethodPut, path, map[string]string{"status": "canceled"}, hdr{"Authorization": staff})
	if w.Code != http.StatusOK || decode[orderJSON](t, w).Status != "canceled" {
		t.Fatalf("cancel status=%d body=%s", w.Code, w.Body.String())
	}
	if got := e.stock(t, p.ID); got != 5 {
		t.Fatalf("stock after cancel=%d, want 5", got)
	}
}

//
// ---------- AUTHZ ----------
//

func TestAuthorization(t *testing.T) {
	e := newTestEnv(t)
	usr, _ := e.bearer(t, "ana@example.com", false)
	staff, _ := e.bearer(t, "staff@example.com", true)
	body := map[string]any{"category_id": e.catID, "name": "Straw Hat", "price": "30.00", "stock_quantity": 4}

	if w := e.do(http.MethodPost, "/api/admin/products", body, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create=%d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/admin/products", body, hdr{"Authorization": usr}); w.Code != http.StatusForbidden {
		t.Fatalf("user create=%d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/accounts/users/me", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me=%d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/orders/cart/current", nil, hdr{"Authorization": "Bearer garbage"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token=%d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/admin/products", body, hdr{"Authorization": staff}); w.Code != http.StatusCreated {
		t.Fatalf("staff create=%d body=%s", w.Code, w.Body.String())
	}
}

type stubValidator struct{ ok bool }

func (s stubValidator) ValidateUser(context.Context, string) (bool, error) { return s.ok, nil }

func TestAuthenticate_RemoteValidatorRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := user.NewTokens("test-secret-0123456789", "vnb-test", time.Hour)
	tok, _, _ := tokens.Issue(&user.User{ID: "gone"})

	for _, tc := range []struct {
		ok   bool
		want int
	}{{true, http.StatusOK}, {false, http.StatusUnauthorized}} {
		r := gin.New()
		r.GET("/x", httpx.Authenticate(tokens, stubValidator{ok: tc.ok}, logx.Nop()), func(c *gin.Context) {
			c.String(http.StatusOK, httpx.MustCurrent(c).UserID)
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("validator ok=%v: status=%d", tc.ok, w.Code)
		}
	}
}

//
// ---------- CATALOG + ADMIN ----------
//

func TestCatalog(t *testing.T) {
	e := newTestEnv(t)
	a := e.product(t, "Cedar Sandal", "89.00", 3)
	b := e.product(t, "Olive Belt", "20.00", 0)
	b.IsFeatured = true
	_ = e.store.Products().Update(context.Background(), b)

	// list with paging
	{
		w := e.do(http.MethodGet, "/api/store/products?limit=1&offset=0&ordering=price", nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		page := decode[struct {
			Items  []map[string]any `json:"items"`
			Limit  int              `json:"limit"`
			Offset int              `json:"offset"`
		}](t, w)
		if len(page.Items) != 1 || page.Limit != 1 || page.Items[0]["name"] != "Olive Belt" || page.Items[0]["price"] != "20.00" {
			t.Fatalf("page=%+v", page)
		}
		if page.Items[0]["in_stock"] != false {
			t.Fatalf("in_stock=%v", page.Items[0]["in_stock"])
		}
	}
	// search
	{
		w := e.do(http.MethodGet, "/api/store/products?search=cedar", nil, nil)
		items := decode[productPage](t, w).Items
		if len(items) != 1 || items[0].ID != a.ID {
			t.Fatalf("search=%+v", items)
		}
	}
	// featured
	{
		items := decode[[]product.Product](t, e.do(http.MethodGet, "/api/store/products/featured", nil, nil))
		if len(items) != 1 || items[0].ID != b.ID {
			t.Fatalf("featured=%+v", items)
		}
	}
	// detail by slug and 404
	{
		w := e.do(http.MethodGet, "/api/store/products/cedar-sandal", nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("detail status=%d", w.Code)
		}
		if w := e.do(http.MethodGet, "/api/store/products/nope", nil, nil); w.Code != http.StatusNotFound {
			t.Fatalf("detail 404=%d", w.Code)
		}
	}
	// by category
	{
		if w := e.do(http.MethodGet, "/api/store/products/category", nil, nil); w.Code != http.StatusBadRequest ||
			decode[httpx.ErrorBody](t, w).Error != "Category slug is required" {
			t.Fatalf("missing slug=%d body=%s", w.Code, w.Body.String())
		}
		items := decode[[]product.Product](t, e.do(http.MethodGet, "/api/store/products/category?slug=sandals", nil, nil))
		if len(items) != 2 {
			t.Fatalf("by category=%d", len(items))
		}
	}
	// categories
	{
		cats := decode[[]product.Category](t, e.do(http.MethodGet, "/api/store/categories?search=footwear", nil, nil))
		if len(cats) != 1 || cats[0].Slug != "sandals" {
			t.Fatalf("categories=%+v", cats)
		}
	}
}

func TestAdminProducts(t *testing.T) {
	e := newTestEnv(t)
	staff, _ := e.bearer(t, "staff@example.com", true)
	auth := hdr{"Authorization": staff}

	var id string
	// create, then invalid payloads
	{
		w := e.do(http.MethodPost, "/api/admin/products", map[string]any{"category_id": e.catID, "name": "Straw Hat", "price": "30.00", "stock_quantity": 4}, auth)
		if w.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		got := decode[map[string]any](t, w)
		id, _ = got["id"].(string)
		if got["slug"] != "straw-hat" || got["price"] != "30.00" {
			t.Fatalf("created=%v", got)
		}
		if w := e.do(http.MethodPost, "/api/admin/products", map[string]any{"category_id": e.catID, "price": "1.00"}, auth); w.Code != http.StatusBadRequest {
			t.Fatalf("missing name=%d", w.Code)
		}
		if w := e.do(http.MethodPost, "/api/admin/products", map[string]any{"category_id": e.catID, "name": "Bad", "price": "-1.00"}, auth); w.Code != http.StatusBadRequest {
			t.Fatalf("negative price=%d", w.Code)
		}
		if w := e.do(http.MethodPost, "/api/admin/products", map[string]any{"category_id": e.catID, "name": "Bad", "price": "1.00", "stock_quantity": -1}, auth); w.Code != http.StatusBadRequest {
			t.Fatalf("negative stock=%d", w.Code)
		}
	}
	// partial update keeps omitted fields
	{
		w := e.do(http.MethodPut, "/api/admin/products/"+id, map[string]any{"name": "Straw Hat II", "stock_quantity": 2}, auth)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		p, _ := e.store.Products().GetByID(context.Background(), id)
		if p.Name != "Straw Hat II" || p.Price.StringFixed(2) != "30.00" || p.StockQuantity != 2 {
			t.Fatalf("after update %+v", p)
		}
		if w := e.do(http.MethodPut, "/api/admin/products/"+id, map[string]any{"stock_quantity": -3}, auth); w.Code != http.StatusBadRequest {
			t.Fatalf("negative stock update=%d", w.Code)
		}
	}
	// delete
	{
		if w := e.do(http.MethodDelete, "/api/admin/products/"+id, nil, auth); w.Code != http.StatusNoContent {
			t.Fatalf("delete=%d", w.Code)
		}
		if w := e.do(http.MethodDelete, "/api/admin/products/"+id, nil, auth); w.Code != http.StatusNotFound {
			t.Fatalf("delete again=%d", w.Code)
		}
	}
}

//
// ---------- ACCOUNTS ----------
//

func TestAccounts_RegisterLoginMe(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/accounts/users", map[string]any{
		"email": "Ana@Example.com", "password": "correct-horse-battery", "first_name": "Ana",
		"profile": map[string]any{"city": "Napa"},
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/api/accounts/users", map[string]any{"email": "ana@example.com", "password": "correct-horse-battery"}, nil); w.Code != http.StatusConflict {
		t.Fatalf("duplicate=%d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/accounts/users", map[string]any{"email": "bo@example.com", "password": "short"}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("short password=%d", w.Code)
	}

	if w := e.do(http.MethodPost, "/api/accounts/users/login", map[string]string{"email": "ana@example.com"}, nil); w.Code != http.StatusBadRequest ||
		decode[httpx.ErrorBody](t, w).Error != "Please provide both email and password" {
		t.Fatalf("missing password=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/api/accounts/users/login", map[string]string{"email": "nobody@example.com", "password": "x"}, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown email=%d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/accounts/users/login", map[string]string{"email": "ana@example.com", "password": "wrong-password"}, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password=%d", w.Code)
	}
	w = e.do(http.MethodPost, "/api/accounts/users/login", map[string]string{"email": "ana@example.com", "password": "correct-horse-battery"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login=%d body=%s", w.Code, w.Body.String())
	}
	login := decode[struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}](t, w)
	if login.Message != "Login successful" || login.Token == "" {
		t.Fatalf("login=%+v", login)
	}
	auth := hdr{"Authorization": "Bearer " + login.Token}

	w = e.do(http.MethodPatch, "/api/accounts/users/me", map[string]any{"last_name": "Lima", "profile": map[string]any{"title": "Dr."}}, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("patch me=%d body=%s", w.Code, w.Body.String())
	}
	me := decode[struct {
		User    map[string]any `json:"user"`
		Profile map[string]any `json:"profile"`
	}](t, e.do(http.MethodGet, "/api/accounts/users/me", nil, auth))
	if me.User["last_name"] != "Lima" || me.Profile["title"] != "Dr." || me.Profile["city"] != "Napa" {
		t.Fatalf("me=%+v", me)
	}

	if w := e.do(http.MethodPost, "/api/accounts/users/logout", nil, auth); w.Code != http.StatusOK {
		t.Fatalf("logout=%d", w.Code)
	}
}

func TestAccounts_CheckEmailAndReset(t *testing.T) {
	e := newTestEnv(t)
	_ = e.do(http.MethodPost, "/api/accounts/users", map[string]any{"email": "ana@example.com", "password": "correct-horse-battery"}, nil)

	if w := e.do(http.MethodPost, "/api/accounts/users/check_email", map[string]string{}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing email=%d", w.Code)
	}
	if got := decode[map[string]bool](t, e.do(http.MethodPost, "/api/accounts/users/check_email", map[string]string{"email": "ana@example.com"}, nil)); !got["exists"] {
		t.Fatalf("exists=%v", got)
	}

	unknown := e.do(http.MethodPost, "/api/accounts/users/request_password_reset", map[string]string{"email": "nobody@example.com"}, nil)
	known := e.do(http.MethodPost, "/api/accounts/users/request_password_reset", map[string]string{"email": "ana@example.com"}, nil)
	if unknown.Code != http.StatusOK || known.Code != http.StatusOK || unknown.Body.String() != known.Body.String() {
		t.Fatalf("reset replies differ: %d %s / %d %s", unknown.Code, unknown.Body, known.Code, known.Body)
	}

	_ = e.disp.Close()
	resets := e.events.OfType(notify.TypePasswordReset)
	if len(resets) != 1 {
		t.Fatalf("reset events=%d", len(resets))
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resets[0].Data, &data); err != nil || data.Token == "" {
		t.Fatalf("event data=%s err=%v", resets[0].Data, err)
	}

	req := map[string]string{"email": "ana@example.com", "token": data.Token, "new_password": "another-long-secret"}
	if w := e.do(http.MethodPost, "/api/accounts/users/reset_password", req, nil); w.Code != http.StatusOK {
		t.Fatalf("reset=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/api/accounts/users/reset_password", req, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("token reuse=%d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/accounts/users/login", map[string]string{"email": "ana@example.com", "password": "another-long-secret"}, nil); w.Code != http.StatusOK {
		t.Fatalf("login with new password=%d", w.Code)
	}
}

//
// ---------- INTAKE ----------
//

func TestIntakeForms(t *testing.T) {
	e := newTestEnv(t)

	sub := map[string]string{"email": "ana@example.com"}
	if w := e.do(http.MethodPost, "/api/store/newsletter", sub, nil); w.Code != http.StatusCreated || decode[messageBody](t, w).Message != intake.MsgSubscribed {
		t.Fatalf("subscribe=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/api/store/newsletter", sub, nil); w.Code != http.StatusOK || decode[messageBody](t, w).Message != intake.MsgAlready {
		t.Fatalf("again=%d body=%s", w.Code, w.Body.String())
	}

	contact := map[string]string{"name": "Ana", "email": "ana@example.com", "subject": "Sizes", "message": "Do you ship size 11?"}
	if w := e.do(http.MethodPost, "/api/store/contact", contact, nil); w.Code != http.StatusCreated {
		t.Fatalf("contact=%d body=%s", w.Code, w.Body.String())
	}
	if got := e.store.Intake().Contacts(); len(got) != 1 || got[0].Subject != "Sizes" {
		t.Fatalf("contacts=%+v", got)
	}

	inv := map[string]string{"name": "Ana", "email": "ana@example.com", "phone": "555-0101", "tier": "platinum"}
	if w := e.do(http.MethodPost, "/api/store/investment", inv, nil); w.Code != http.StatusBadRequest || decode[httpx.ErrorBody](t, w).Fields["tier"] != "oneof" {
		t.Fatalf("bad tier=%d body=%s", w.Code, w.Body.String())
	}
	inv["tier"] = "growth"
	if w := e.do(http.MethodPost, "/api/store/investment", inv, nil); w.Code != http.StatusCreated {
		t.Fatalf("investment=%d body=%s", w.Code, w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz=%d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(httpx.RequestIDHeader) == "" {
		t.Fatalf("no request id")
	}
}
