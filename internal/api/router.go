package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter assembles the kiosk HTTP surface.
func NewRouter(cartH *CartHandler, checkoutH *CheckoutHandler, registerH *RegisterHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartH.GetCart)
		r.Delete("/", cartH.ClearCart)
		r.Post("/items", cartH.AddItem)
		r.Put("/items/{index}", cartH.UpdateItem)
		r.Put("/items/{index}/quantity", cartH.UpdateItemQuantity)
		r.Delete("/items/{index}", cartH.DeleteItem)
		r.Put("/order-type", cartH.SetOrderType)
		r.Put("/table", cartH.SetTableNumber)
		r.Put("/buzzer", cartH.SetBuzzerNumber)
		r.Put("/notes", cartH.SetNotes)
		r.Post("/promotion-code", cartH.ApplyPromotionCode)
		r.Delete("/promotion-code", cartH.RemovePromotionCode)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/state", checkoutH.GetState)
		r.Post("/eftpos", checkoutH.ConfirmEftpos)
		r.Post("/cash", checkoutH.ConfirmCash)
		r.Post("/third-party", checkoutH.ConfirmThirdParty)
		r.Post("/pay-later", checkoutH.PayLater)
		r.Post("/park", checkoutH.ParkOrder)
		r.Post("/continue", checkoutH.ContinueToNextOrder)
		r.Post("/continue-payment", checkoutH.ContinueToNextPayment)
		r.Post("/cancel-payment", checkoutH.CancelPayment)
		r.Post("/cancel-order", checkoutH.CancelOrder)
		r.Post("/restart", checkoutH.Restart)
	})

	r.Route("/register", func(r chi.Router) {
		r.Get("/", registerH.GetRegister)
		r.Post("/key", registerH.SetRegisterKey)
		r.Delete("/key", registerH.ClearRegisterKey)
	})

	return otelhttp.NewHandler(r, "kiosk-api")
}
