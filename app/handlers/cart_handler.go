package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tiendaluna/go-tienda/app/helpers"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"github.com/tiendaluna/go-tienda/app/utils/sessions"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type CartHandler struct {
	productRepo  repositories.ProductRepositoryImpl
	variantRepo  repositories.VariantRepositoryImpl
	sessionStore sessions.SessionStore
	render       *render.Render
}

func NewCartHandler(
	productRepo repositories.ProductRepositoryImpl,
	variantRepo repositories.VariantRepositoryImpl,
	sessionStore sessions.SessionStore,
	render *render.Render,
) *CartHandler {
	return &CartHandler{
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		sessionStore: sessionStore,
		render:       render,
	}
}

// AddItem adds a variant to the session cart and answers the AJAX caller with
// the updated badge count.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Datos del formulario no válidos."})
		return
	}

	productID := r.FormValue("product_id")
	variantID := r.FormValue("variant_id")
	qtyStr := r.FormValue("qty")
	if qtyStr == "" {
		qtyStr = "1"
	}

	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 {
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "La cantidad debe ser mayor que cero."})
		return
	}

	product, err := h.productRepo.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = h.render.JSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "Producto no encontrado."})
			return
		}
		log.Printf("CartHandler.AddItem: failed to load product %s: %v", productID, err)
		_ = h.render.JSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false})
		return
	}

	variant, err := h.variantRepo.GetByProductAndID(r.Context(), product.ID, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = h.render.JSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "Variante no encontrada."})
			return
		}
		log.Printf("CartHandler.AddItem: failed to load variant %s: %v", variantID, err)
		_ = h.render.JSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false})
		return
	}

	cart := h.sessionStore.GetCart(r)
	cart.Add(product, variant, qty)
	if err := h.sessionStore.SaveCart(w, r, cart); err != nil {
		log.Printf("CartHandler.AddItem: failed to save session cart: %v", err)
		_ = h.render.JSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false})
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"cart_count": cart.Count(),
	})
}

// GetCart renders the cart page with the snapshotted line prices.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.sessionStore.GetCart(r)

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":      "Tu carrito",
		"CartItems":  cart.Items(),
		"TotalPrice": cart.TotalPrice(),
		"CartCount":  cart.Count(),
	})
	_ = h.render.HTML(w, http.StatusOK, "cart", data)
}

// RemoveItem deletes one line from the session cart. It only accepts the
// confirmation POST so a crawled link can never mutate the cart; removing an
// absent line is not an error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	variantID := mux.Vars(r)["variantID"]

	cart := h.sessionStore.GetCart(r)
	cart.Remove(variantID)
	if err := h.sessionStore.SaveCart(w, r, cart); err != nil {
		log.Printf("CartHandler.RemoveItem: failed to save session cart: %v", err)
	}

	http.Redirect(w, r, "/carts", http.StatusSeeOther)
}

// GetCartCount serves the polling endpoint behind the cart badge.
func (h *CartHandler) GetCartCount(w http.ResponseWriter, r *http.Request) {
	cart := h.sessionStore.GetCart(r)
	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"cart_count": cart.Count(),
	})
}
