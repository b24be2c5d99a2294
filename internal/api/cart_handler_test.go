package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabin-ltd/kiosk/internal/cart"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

func newCartRouter(t *testing.T) (*chi.Mux, *cart.Service) {
	t.Helper()

	cartSvc := cart.NewService(&domain.Restaurant{ID: "rest-1"}, domain.RegisterTypeKiosk)
	h := NewCartHandler(cartSvc)

	r := chi.NewRouter()
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddItem)
	r.Delete("/cart/items/{index}", h.DeleteItem)
	r.Put("/cart/items/{index}/quantity", h.UpdateItemQuantity)
	r.Put("/cart/order-type", h.SetOrderType)
	r.Post("/cart/promotion-code", h.ApplyPromotionCode)
	return r, cartSvc
}

func doJSON(t *testing.T, r http.Handler, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAddItem_ValidationAndTotals(t *testing.T) {
	r, cartSvc := newCartRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/cart/items", domain.CartProduct{
		ID: "burger", Name: "Burger", Price: 1000, Quantity: 2,
		Category: domain.CartCategory{ID: "cat-1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var view CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2000, view.Total)
	assert.Equal(t, 2000, view.SubTotal)
	assert.Len(t, cartSvc.Products(), 1)

	rec = doJSON(t, r, http.MethodPost, "/cart/items", domain.CartProduct{ID: "", Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/cart/items", domain.CartProduct{ID: "x", Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteItem_EmptyCartConflicts(t *testing.T) {
	r, _ := newCartRouter(t)

	rec := doJSON(t, r, http.MethodDelete, "/cart/items/0", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cart_empty", resp.Code)
}

func TestUpdateQuantity_IndexOutOfRange(t *testing.T) {
	r, cartSvc := newCartRouter(t)
	cartSvc.AddItem(domain.CartProduct{ID: "burger", Price: 1000, Quantity: 1, Category: domain.CartCategory{ID: "c"}})

	rec := doJSON(t, r, http.MethodPut, "/cart/items/5/quantity", map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/cart/items/0/quantity", map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	var view CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 3000, view.Total)
}

func TestSetOrderType_Validation(t *testing.T) {
	r, _ := newCartRouter(t)

	rec := doJSON(t, r, http.MethodPut, "/cart/order-type", map[string]string{"orderType": "DELIVERY"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/cart/order-type", map[string]string{"orderType": "DINEIN"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyPromotionCode_NotFound(t *testing.T) {
	r, cartSvc := newCartRouter(t)
	cartSvc.AddItem(domain.CartProduct{ID: "burger", Price: 1000, Quantity: 1, Category: domain.CartCategory{ID: "c"}})

	rec := doJSON(t, r, http.MethodPost, "/cart/promotion-code", map[string]string{"code": "NOPE"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
