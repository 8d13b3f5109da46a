package middlewares

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/tiendaluna/go-tienda/app/helpers"
	"github.com/tiendaluna/go-tienda/app/models"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"github.com/tiendaluna/go-tienda/app/utils/sessions"
)

// UserMiddleware resolves the session user (if any) into the request context.
func UserMiddleware(sessionStore sessions.SessionStore, userRepo repositories.UserRepositoryImpl) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sessionStore.GetUserID(r)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), helpers.ContextKeyUserID, userID)

			user, err := userRepo.FindByID(ctx, userID)
			if err != nil {
				log.Printf("UserMiddleware: error finding user %s: %v", userID, err)
			} else if user != nil {
				ctx = context.WithValue(ctx, helpers.ContextKeyUser, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CartCountMiddleware exposes the session cart badge count to every template.
func CartCountMiddleware(sessionStore sessions.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cart := sessionStore.GetCart(r)
			ctx := context.WithValue(r.Context(), helpers.CartCountKey, cart.Count())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuthMiddleware gates the dashboard on an authenticated admin user.
func AdminAuthMiddleware(userRepo repositories.UserRepositoryImpl) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := r.Context().Value(helpers.ContextKeyUserID).(string)
			if !ok || userID == "" {
				http.Redirect(w, r, "/login?status=error&message="+url.QueryEscape("Debes iniciar sesión para acceder al panel."), http.StatusFound)
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil || user == nil {
				log.Printf("AdminAuthMiddleware: error finding user %s: %v", userID, err)
				http.Redirect(w, r, "/login?status=error&message="+url.QueryEscape("Sesión no válida."), http.StatusFound)
				return
			}

			if user.Role != models.RoleAdmin {
				log.Printf("AdminAuthMiddleware: user %s (%s) attempted to access the dashboard without admin role", user.ID, user.Email)
				http.Redirect(w, r, "/?status=error&message="+url.QueryEscape("No tienes permiso para acceder a esta página."), http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
