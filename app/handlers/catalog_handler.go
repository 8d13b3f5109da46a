package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tiendaluna/go-tienda/app/helpers"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	productRepo repositories.ProductRepositoryImpl
	render      *render.Render
}

func NewCatalogHandler(productRepo repositories.ProductRepositoryImpl, render *render.Render) *CatalogHandler {
	return &CatalogHandler{
		productRepo: productRepo,
		render:      render,
	}
}

// Home renders the public catalog page.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	products, err := h.productRepo.GetProducts(r.Context())
	if err != nil {
		log.Printf("CatalogHandler.Home: failed to load products: %v", err)
		http.Error(w, "No se pudo cargar el catálogo", http.StatusInternalServerError)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":    "Catálogo",
		"Products": products,
	})
	_ = h.render.HTML(w, http.StatusOK, "catalog", data)
}

// ProductDetail renders a single product with its color variants.
func (h *CatalogHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]

	product, err := h.productRepo.GetByIDWithVariants(r.Context(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("CatalogHandler.ProductDetail: failed to load product %s: %v", productID, err)
		http.Error(w, "No se pudo cargar el producto", http.StatusInternalServerError)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":   product.Name,
		"Product": product,
	})
	_ = h.render.HTML(w, http.StatusOK, "product_detail", data)
}
