package sessions

import (
	"encoding/gob"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/tiendaluna/go-tienda/app/models"
)

const (
	sessionCookieName = "tienda-session"

	userIDSessionKey = "userID"
	cartSessionKey   = "cart"
)

func init() {
	// The cart value crosses the cookie boundary as a gob blob.
	gob.Register(models.Cart{})
}

type SessionStore interface {
	GetCart(r *http.Request) models.Cart
	SaveCart(w http.ResponseWriter, r *http.Request, cart models.Cart) error
	ClearCart(w http.ResponseWriter, r *http.Request) error

	GetUserID(r *http.Request) string
	SetUserID(w http.ResponseWriter, r *http.Request, userID string) error
	ClearUserID(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		// A bad or stale cookie still yields a usable fresh session.
		log.Printf("Error getting session: %v", err)
	}
	return session
}

// GetCart returns the session cart, or a fresh empty cart for new visitors.
func (c *CookieSessionStore) GetCart(r *http.Request) models.Cart {
	session := c.getSession(r)
	if session == nil {
		return models.NewCart()
	}
	cart, ok := session.Values[cartSessionKey].(models.Cart)
	if !ok || cart.Lines == nil {
		return models.NewCart()
	}
	return cart
}

func (c *CookieSessionStore) SaveCart(w http.ResponseWriter, r *http.Request, cart models.Cart) error {
	session := c.getSession(r)
	if session == nil {
		return nil
	}
	session.Values[cartSessionKey] = cart
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearCart(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	if session == nil {
		return nil
	}
	delete(session.Values, cartSessionKey)
	return session.Save(r, w)
}

func (c *CookieSessionStore) GetUserID(r *http.Request) string {
	session := c.getSession(r)
	if session == nil {
		return ""
	}
	userID, ok := session.Values[userIDSessionKey].(string)
	if !ok {
		return ""
	}
	return userID
}

func (c *CookieSessionStore) SetUserID(w http.ResponseWriter, r *http.Request, userID string) error {
	session := c.getSession(r)
	if session == nil {
		return nil
	}
	session.Values[userIDSessionKey] = userID
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearUserID(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	if session == nil {
		return nil
	}
	delete(session.Values, userIDSessionKey)
	return session.Save(r, w)
}
