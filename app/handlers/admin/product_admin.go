package admin

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/tiendaluna/go-tienda/app/helpers"
	"github.com/tiendaluna/go-tienda/app/models"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type ProductAdminHandler struct {
	productRepo repositories.ProductRepositoryImpl
	render      *render.Render
	validator   *validator.Validate
}

func NewProductAdminHandler(productRepo repositories.ProductRepositoryImpl, render *render.Render, validator *validator.Validate) *ProductAdminHandler {
	return &ProductAdminHandler{
		productRepo: productRepo,
		render:      render,
		validator:   validator,
	}
}

type ProductForm struct {
	Name           string `form:"name" validate:"required,min=2,max=200"`
	Description    string `form:"description" validate:"required"`
	Price          string `form:"price" validate:"required"`
	Category       string `form:"category" validate:"required"`
	PrincipalColor string `form:"principal_color" validate:"required"`
	MainImage      string `form:"main_image"`
}

func (h *ProductAdminHandler) NewProductGet(w http.ResponseWriter, r *http.Request) {
	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":      "Añadir nuevo producto",
		"Categories": models.Categories,
		"Colors":     models.Colors,
	})
	_ = h.render.HTML(w, http.StatusOK, "admin/product_form", data)
}

func (h *ProductAdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	form, variants, errMsg := h.parseProductForm(r)
	if errMsg != "" {
		h.renderFormError(w, r, "Añadir nuevo producto", form, errMsg)
		return
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil || price.IsNegative() {
		h.renderFormError(w, r, "Añadir nuevo producto", form, "El precio no es válido.")
		return
	}

	product := &models.Product{
		ID:             uuid.New().String(),
		Name:           form.Name,
		Slug:           slug.Make(form.Name + "-" + uuid.NewString()[:6]),
		Description:    form.Description,
		Price:          price,
		Category:       form.Category,
		PrincipalColor: form.PrincipalColor,
		MainImage:      form.MainImage,
		Variants:       variants,
	}

	if err := h.productRepo.Create(r.Context(), product); err != nil {
		log.Printf("ProductAdminHandler.CreateProduct: failed to create product: %v", err)
		h.renderFormError(w, r, "Añadir nuevo producto", form, "No se pudo guardar el producto.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/dashboard?status=success&message=%s", url.QueryEscape("Producto creado correctamente.")), http.StatusSeeOther)
}

func (h *ProductAdminHandler) EditProductGet(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]

	product, err := h.productRepo.GetByIDWithVariants(r.Context(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("ProductAdminHandler.EditProductGet: failed to load product %s: %v", productID, err)
		http.Error(w, "No se pudo cargar el producto", http.StatusInternalServerError)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":      "Modificar producto",
		"Product":    product,
		"Categories": models.Categories,
		"Colors":     models.Colors,
	})
	_ = h.render.HTML(w, http.StatusOK, "admin/product_form", data)
}

func (h *ProductAdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]

	product, err := h.productRepo.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("ProductAdminHandler.UpdateProduct: failed to load product %s: %v", productID, err)
		http.Error(w, "No se pudo cargar el producto", http.StatusInternalServerError)
		return
	}

	form, variants, errMsg := h.parseProductForm(r)
	if errMsg != "" {
		h.renderFormError(w, r, "Modificar producto", form, errMsg)
		return
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil || price.IsNegative() {
		h.renderFormError(w, r, "Modificar producto", form, "El precio no es válido.")
		return
	}

	product.Name = form.Name
	product.Description = form.Description
	product.Price = price
	product.Category = form.Category
	product.PrincipalColor = form.PrincipalColor
	if form.MainImage != "" {
		product.MainImage = form.MainImage
	}

	if err := h.productRepo.Update(r.Context(), product, variants); err != nil {
		log.Printf("ProductAdminHandler.UpdateProduct: failed to update product %s: %v", productID, err)
		h.renderFormError(w, r, "Modificar producto", form, "No se pudo guardar el producto.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/dashboard?status=success&message=%s", url.QueryEscape("Producto actualizado correctamente.")), http.StatusSeeOther)
}

// DeleteProduct removes the product and all its variants. Only the
// confirmation POST mutates anything.
func (h *ProductAdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]

	product, err := h.productRepo.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("ProductAdminHandler.DeleteProduct: failed to load product %s: %v", productID, err)
		http.Error(w, "No se pudo eliminar el producto", http.StatusInternalServerError)
		return
	}

	if err := h.productRepo.Delete(r.Context(), product.ID); err != nil {
		log.Printf("ProductAdminHandler.DeleteProduct: failed to delete product %s: %v", productID, err)
		http.Error(w, "No se pudo eliminar el producto", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/dashboard?status=success&message=%s", url.QueryEscape(fmt.Sprintf("El producto %q ha sido eliminado.", product.Name))), http.StatusSeeOther)
}

// parseProductForm reads the product fields plus the parallel variant rows
// (variant_color, variant_image, variant_stock). It returns a user-facing
// message on validation failure.
func (h *ProductAdminHandler) parseProductForm(r *http.Request) (ProductForm, []models.ColorVariant, string) {
	var form ProductForm
	if err := r.ParseForm(); err != nil {
		return form, nil, "No se pudo procesar el formulario."
	}

	form = ProductForm{
		Name:           r.FormValue("name"),
		Description:    r.FormValue("description"),
		Price:          r.FormValue("price"),
		Category:       r.FormValue("category"),
		PrincipalColor: r.FormValue("principal_color"),
		MainImage:      r.FormValue("main_image"),
	}

	if err := h.validator.Struct(form); err != nil {
		return form, nil, "Revisa los campos del formulario."
	}
	if !models.IsValidCategory(form.Category) {
		return form, nil, "La categoría seleccionada no es válida."
	}
	if !models.IsValidColor(form.PrincipalColor) {
		return form, nil, "El color seleccionado no es válido."
	}

	colors := r.Form["variant_color"]
	images := r.Form["variant_image"]
	stocks := r.Form["variant_stock"]
	if len(colors) != len(images) || len(colors) != len(stocks) {
		return form, nil, "Las filas de variantes están incompletas."
	}

	var variants []models.ColorVariant
	for i := range colors {
		if colors[i] == "" && images[i] == "" && stocks[i] == "" {
			continue
		}
		if !models.IsValidColor(colors[i]) {
			return form, nil, "Una de las variantes tiene un color no válido."
		}
		if images[i] == "" {
			return form, nil, "Cada variante necesita una imagen."
		}
		stock, err := strconv.Atoi(stocks[i])
		if err != nil || stock < 0 {
			return form, nil, "El stock de una variante no es válido."
		}
		variants = append(variants, models.ColorVariant{
			Color: colors[i],
			Image: images[i],
			Stock: stock,
		})
	}

	return form, variants, ""
}

func (h *ProductAdminHandler) renderFormError(w http.ResponseWriter, r *http.Request, title string, form ProductForm, msg string) {
	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":         title,
		"Form":          form,
		"Categories":    models.Categories,
		"Colors":        models.Colors,
		"Message":       msg,
		"MessageStatus": "error",
	})
	_ = h.render.HTML(w, http.StatusUnprocessableEntity, "admin/product_form", data)
}
