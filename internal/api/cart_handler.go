package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tabin-ltd/kiosk/internal/cart"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

type CartHandler struct {
	cart *cart.Service
}

func NewCartHandler(cartSvc *cart.Service) *CartHandler {
	return &CartHandler{cart: cartSvc}
}

// CartView is the full cart state the UI renders from.
type CartView struct {
	Products     []domain.CartProduct `json:"products"`
	OrderType    domain.OrderType     `json:"orderType,omitempty"`
	TableNumber  string               `json:"tableNumber,omitempty"`
	BuzzerNumber string               `json:"buzzerNumber,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	Total        int                  `json:"total"`
	SubTotal     int                  `json:"subTotal"`
	Promotion    *PromotionView       `json:"promotion,omitempty"`
	Payments     []domain.Payment     `json:"payments"`
	PaidSoFar    int                  `json:"paidSoFar"`
}

type PromotionView struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DiscountedAmount int    `json:"discountedAmount"`
}

func (h *CartHandler) view() CartView {
	v := CartView{
		Products:     h.cart.Products(),
		OrderType:    h.cart.OrderType(),
		TableNumber:  h.cart.TableNumber(),
		BuzzerNumber: h.cart.BuzzerNumber(),
		Notes:        h.cart.Notes(),
		Total:        h.cart.Total(),
		SubTotal:     h.cart.SubTotal(),
		Payments:     h.cart.Payments(),
		PaidSoFar:    h.cart.PaidSoFar(),
	}
	if p := h.cart.Promotion(); p != nil {
		v.Promotion = &PromotionView{
			ID:               p.Promotion.ID,
			Name:             p.Promotion.Name,
			DiscountedAmount: p.DiscountedAmount,
		}
	}
	return v
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var product domain.CartProduct
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if product.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product id is required")
		return
	}
	if product.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	h.cart.AddItem(product)
	respondJSON(w, http.StatusCreated, h.view())
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var product domain.CartProduct
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if product.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	if err := h.cart.UpdateItem(index, product); err != nil {
		respondCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	if err := h.cart.UpdateItemQuantity(index, req.Quantity); err != nil {
		respondCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	if err := h.cart.DeleteItem(index); err != nil {
		respondCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart()
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) SetOrderType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderType domain.OrderType `json:"orderType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OrderType != domain.OrderTypeDineIn && req.OrderType != domain.OrderTypeTakeaway {
		respondError(w, http.StatusBadRequest, "invalid_order_type", "orderType must be DINEIN or TAKEAWAY")
		return
	}

	h.cart.SetOrderType(req.OrderType)
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) SetTableNumber(w http.ResponseWriter, r *http.Request) {
	h.setStringField(w, r, h.cart.SetTableNumber)
}

func (h *CartHandler) SetBuzzerNumber(w http.ResponseWriter, r *http.Request) {
	h.setStringField(w, r, h.cart.SetBuzzerNumber)
}

func (h *CartHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	h.setStringField(w, r, h.cart.SetNotes)
}

func (h *CartHandler) setStringField(w http.ResponseWriter, r *http.Request, set func(string)) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	set(req.Value)
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) ApplyPromotionCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_code", "code is required")
		return
	}

	if err := h.cart.ApplyPromotionCode(req.Code); err != nil {
		respondCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) RemovePromotionCode(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveUserAppliedPromotion()
	respondJSON(w, http.StatusOK, h.view())
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return 0, false
	}
	return index, true
}

func respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidState):
		respondError(w, http.StatusConflict, "cart_empty", err.Error())
	case errors.Is(err, cart.ErrIndexOutOfRange):
		respondError(w, http.StatusBadRequest, "index_out_of_range", err.Error())
	case errors.Is(err, cart.ErrPromotionNotFound):
		respondError(w, http.StatusNotFound, "promotion_not_found", err.Error())
	case errors.Is(err, cart.ErrPromotionExpired),
		errors.Is(err, cart.ErrPromotionNotAvailable),
		errors.Is(err, cart.ErrPromotionConditionsNotMet):
		respondError(w, http.StatusUnprocessableEntity, "promotion_not_applicable", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
