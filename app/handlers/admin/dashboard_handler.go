package admin

import (
	"log"
	"net/http"

	"github.com/tiendaluna/go-tienda/app/helpers"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"github.com/unrolled/render"
)

type DashboardHandler struct {
	productRepo repositories.ProductRepositoryImpl
	render      *render.Render
}

func NewDashboardHandler(productRepo repositories.ProductRepositoryImpl, render *render.Render) *DashboardHandler {
	return &DashboardHandler{
		productRepo: productRepo,
		render:      render,
	}
}

// Dashboard lists every product with its derived total stock.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	products, err := h.productRepo.GetProducts(r.Context())
	if err != nil {
		log.Printf("DashboardHandler.Dashboard: failed to load products: %v", err)
		http.Error(w, "No se pudieron cargar los productos", http.StatusInternalServerError)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":    "Panel de control",
		"Products": products,
	})
	_ = h.render.HTML(w, http.StatusOK, "admin/dashboard", data)
}
