package routes

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/tiendaluna/go-tienda/app/configs"
	"github.com/tiendaluna/go-tienda/app/handlers"
	"github.com/tiendaluna/go-tienda/app/handlers/admin"
	"github.com/tiendaluna/go-tienda/app/middlewares"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"github.com/tiendaluna/go-tienda/app/services"
	"github.com/tiendaluna/go-tienda/app/utils/renderer"
	"github.com/tiendaluna/go-tienda/app/utils/sessions"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, env configs.ENV, keys *configs.SessionKeys) http.Handler {
	render := renderer.New()
	validate := validator.New()
	sessionStore := sessions.NewCookieSessionStore(keys.AuthKey, keys.EncKey)

	productRepo := repositories.NewProductRepository(db)
	variantRepo := repositories.NewVariantRepository(db)
	userRepo := repositories.NewUserRepository(db)

	checkoutSvc := services.NewCheckoutService(db, variantRepo)
	assistantSvc := services.NewGeminiService(env.GeminiAPIKey, env.GeminiBaseURL)

	catalogHandler := handlers.NewCatalogHandler(productRepo, render)
	cartHandler := handlers.NewCartHandler(productRepo, variantRepo, sessionStore, render)
	checkoutHandler := handlers.NewCheckoutHandler(productRepo, variantRepo, checkoutSvc, sessionStore, render)
	assistantHandler := handlers.NewAssistantHandler(assistantSvc, render)
	authHandler := handlers.NewAuthHandler(render, userRepo, sessionStore, validate)
	dashboardHandler := admin.NewDashboardHandler(productRepo, render)
	productAdminHandler := admin.NewProductAdminHandler(productRepo, render, validate)

	router := mux.NewRouter()
	router.Use(middlewares.UserMiddleware(sessionStore, userRepo))
	router.Use(middlewares.CartCountMiddleware(sessionStore))

	router.HandleFunc("/", catalogHandler.Home).Methods("GET")
	router.HandleFunc("/products/{id}", catalogHandler.ProductDetail).Methods("GET")

	router.HandleFunc("/carts", cartHandler.GetCart).Methods("GET")
	router.HandleFunc("/carts/add", cartHandler.AddItem).Methods("POST")
	router.HandleFunc("/carts/remove/{variantID}", cartHandler.RemoveItem).Methods("POST")
	router.HandleFunc("/api/cart-count", cartHandler.GetCartCount).Methods("GET")

	router.HandleFunc("/checkout/cart", checkoutHandler.CheckoutCart).Methods("GET")
	router.HandleFunc("/checkout/pay", checkoutHandler.ProcessPayment).Methods("POST")
	router.HandleFunc("/checkout/success", checkoutHandler.Success).Methods("GET")
	router.HandleFunc("/checkout/stock-error", checkoutHandler.StockError).Methods("GET")
	router.HandleFunc("/checkout/{productID}/{variantID}", checkoutHandler.CheckoutSingle).Methods("GET")

	router.HandleFunc("/assistant/ask", assistantHandler.Ask).Methods("POST")

	router.HandleFunc("/login", authHandler.LoginGetHandler).Methods("GET")
	router.HandleFunc("/login", authHandler.LoginPostHandler).Methods("POST")
	router.HandleFunc("/logout", authHandler.LogoutHandler).Methods("GET")
	router.HandleFunc("/register", authHandler.RegisterGetHandler).Methods("GET")
	router.HandleFunc("/register", authHandler.RegisterPostHandler).Methods("POST")

	adminRouter := router.PathPrefix("/dashboard").Subrouter()
	adminRouter.Use(middlewares.AdminAuthMiddleware(userRepo))
	adminRouter.HandleFunc("", dashboardHandler.Dashboard).Methods("GET")
	adminRouter.HandleFunc("/products/new", productAdminHandler.NewProductGet).Methods("GET")
	adminRouter.HandleFunc("/products/new", productAdminHandler.CreateProduct).Methods("POST")
	adminRouter.HandleFunc("/products/{id}/edit", productAdminHandler.EditProductGet).Methods("GET")
	adminRouter.HandleFunc("/products/{id}/edit", productAdminHandler.UpdateProduct).Methods("POST")
	adminRouter.HandleFunc("/products/{id}/delete", productAdminHandler.DeleteProduct).Methods("POST")

	fs := http.FileServer(http.Dir("./public"))
	router.PathPrefix("/public/").Handler(http.StripPrefix("/public/", fs))

	// State-changing POSTs require the CSRF token; the assistant endpoint is a
	// JSON API called with a header token from the page script.
	csrfMiddleware := csrf.Protect(
		keys.AuthKey,
		csrf.Secure(env.APP_ENV == "production"),
		csrf.Path("/"),
	)

	return csrfMiddleware(router)
}
