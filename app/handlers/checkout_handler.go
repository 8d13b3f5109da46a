package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tiendaluna/go-tienda/app/helpers"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"github.com/tiendaluna/go-tienda/app/services"
	"github.com/tiendaluna/go-tienda/app/utils/sessions"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

// Cities offered at checkout for delivery selection.
var deliveryCities = []string{"Lima", "Provincia"}

type CheckoutHandler struct {
	productRepo  repositories.ProductRepositoryImpl
	variantRepo  repositories.VariantRepositoryImpl
	checkoutSvc  *services.CheckoutService
	sessionStore sessions.SessionStore
	render       *render.Render
}

func NewCheckoutHandler(
	productRepo repositories.ProductRepositoryImpl,
	variantRepo repositories.VariantRepositoryImpl,
	checkoutSvc *services.CheckoutService,
	sessionStore sessions.SessionStore,
	render *render.Render,
) *CheckoutHandler {
	return &CheckoutHandler{
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		checkoutSvc:  checkoutSvc,
		sessionStore: sessionStore,
		render:       render,
	}
}

// CheckoutSingle starts the payment flow for one product variant.
func (h *CheckoutHandler) CheckoutSingle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	productID := vars["productID"]
	variantID := vars["variantID"]

	product, err := h.productRepo.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("CheckoutHandler.CheckoutSingle: failed to load product %s: %v", productID, err)
		http.Error(w, "No se pudo iniciar el pago", http.StatusInternalServerError)
		return
	}

	variant, err := h.variantRepo.GetByProductAndID(r.Context(), product.ID, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Redirect(w, r, "/checkout/stock-error", http.StatusSeeOther)
			return
		}
		log.Printf("CheckoutHandler.CheckoutSingle: failed to load variant %s: %v", variantID, err)
		http.Error(w, "No se pudo iniciar el pago", http.StatusInternalServerError)
		return
	}

	if variant.Stock <= 0 {
		http.Redirect(w, r, "/checkout/stock-error", http.StatusSeeOther)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":   "Finalizar compra",
		"Product": product,
		"Variant": variant,
		"Cities":  deliveryCities,
	})
	_ = h.render.HTML(w, http.StatusOK, "checkout", data)
}

// CheckoutCart starts the payment flow for every line in the session cart.
func (h *CheckoutHandler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	cart := h.sessionStore.GetCart(r)
	if cart.IsEmpty() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":      "Finalizar compra",
		"CartItems":  cart.Items(),
		"TotalPrice": cart.TotalPrice(),
		"Cities":     deliveryCities,
	})
	_ = h.render.HTML(w, http.StatusOK, "checkout_cart", data)
}

// ProcessPayment commits the whole cart: every stock decrement succeeds or
// nothing is persisted. On failure the cart is kept so the visitor can adjust
// quantities and retry.
func (h *CheckoutHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	cart := h.sessionStore.GetCart(r)

	err := h.checkoutSvc.ProcessPayment(r.Context(), cart)
	if err != nil {
		if errors.Is(err, services.ErrCartEmpty) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		var stockErr *services.InsufficientStockError
		if errors.As(err, &stockErr) {
			log.Printf("CheckoutHandler.ProcessPayment: %v", stockErr)
			http.Redirect(w, r, "/checkout/stock-error", http.StatusSeeOther)
			return
		}
		log.Printf("CheckoutHandler.ProcessPayment: checkout failed: %v", err)
		http.Error(w, "No se pudo procesar el pago", http.StatusInternalServerError)
		return
	}

	if err := h.sessionStore.ClearCart(w, r); err != nil {
		log.Printf("CheckoutHandler.ProcessPayment: failed to clear session cart: %v", err)
	}

	http.Redirect(w, r, "/checkout/success", http.StatusSeeOther)
}

// Success renders the purchase confirmation page.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title": "¡Compra exitosa!",
	})
	_ = h.render.HTML(w, http.StatusOK, "checkout_success", data)
}

// StockError renders the insufficient-stock page; the cart is untouched.
func (h *CheckoutHandler) StockError(w http.ResponseWriter, r *http.Request) {
	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title": "Stock insuficiente",
	})
	_ = h.render.HTML(w, http.StatusOK, "checkout_stock_error", data)
}
