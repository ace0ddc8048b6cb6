package testbackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/google/uuid"
)

// RefreshCookie is the name of the refresh credential cookie.
const RefreshCookie = "refreshToken"

// Account is a backend user.
type Account struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Password    string `json:"-"`
	Nickname    string `json:"nickname"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
}

// Order is a minimal order record.
type Order struct {
	ID          int64     `json:"id"`
	ProductName string    `json:"productName"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	BuyerEmail  string    `json:"buyerEmail"`
	Shipping    *Shipping `json:"shippingInfo,omitempty"`
	PaymentKey  string    `json:"paymentKey,omitempty"`
}

// Shipping is the delivery address attached to an order.
type Shipping struct {
	Name          string `json:"name"`
	PhoneNumber   string `json:"phoneNumber"`
	ZipCode       string `json:"zipCode"`
	Address       string `json:"address"`
	DetailAddress string `json:"detailAddress,omitempty"`
}

// Server is the fake backend. The zero value is not usable; call [New].
type Server struct {
	mu        sync.Mutex
	signer    *jwt.Signer
	decoder   *jwt.Decoder
	accessTTL time.Duration
	now       func() time.Time

	accounts map[string]*Account
	refresh  map[string]string
	orders   map[int64]*Order
	products []Product
	resets   map[string]string

	calls         map[string]int
	total         int
	logoutStatus  int
	reissueStatus int
	reissueDelay  time.Duration
	limiter       *rate.Limiter
}

// New returns a backend that signs access tokens with signer.
func New(signer *jwt.Signer, accounts ...Account) (*Server, error) {
	decoder, err := jwt.NewDecoder(jwt.Config{
		SigningMethod: signer.Method(),
		VerifyKey:     signer.PublicKey(),
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		signer:    signer,
		decoder:   decoder,
		accessTTL: 15 * time.Minute,
		now:       time.Now,
		accounts:  make(map[string]*Account),
		refresh:   make(map[string]string),
		orders:    make(map[int64]*Order),
		resets:    make(map[string]string),
		calls:     make(map[string]int),
	}
	for i := range accounts {
		a := accounts[i]
		s.accounts[a.Email] = &a
	}
	return s, nil
}

// Handler returns the routed backend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/sign-in", s.signIn)
	mux.HandleFunc("POST /api/auth/reissue", s.reissue)
	mux.HandleFunc("POST /api/auth/logout", s.logout)
	mux.HandleFunc("GET /api/users/me", s.authed(s.me))
	mux.HandleFunc("PATCH /api/users/me/nickname", s.authed(s.nickname))
	mux.HandleFunc("GET /api/orders/{id}", s.authed(s.getOrder))
	mux.HandleFunc("PATCH /api/orders/{id}/shipping-info", s.authed(s.shippingInfo))
	mux.HandleFunc("GET /api/products", s.listProducts)
	mux.HandleFunc("POST /api/products", s.authed(s.createProduct))
	mux.HandleFunc("POST /api/payments/confirm", s.authed(s.confirmPayment))
	mux.HandleFunc("GET /api/auth/password/reset/verify", s.verifyReset)
	mux.HandleFunc("POST /api/auth/password/reset", s.resetPassword)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.total++
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

// Calls returns how often path was requested.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// SetAccessTTL changes the lifetime of issued access tokens. A negative TTL
// issues already-expired tokens.
func (s *Server) SetAccessTTL(ttl time.Duration) {
	s.mu.Lock()
	s.accessTTL = ttl
	s.mu.Unlock()
}

// SetLoginLimiter throttles failed sign-ins per email; nil disables it.
func (s *Server) SetLoginLimiter(l *rate.Limiter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiter = l
}

// SetLogoutStatus forces the logout endpoint to answer with status; 0
// restores normal behavior.
func (s *Server) SetLogoutStatus(status int) {
	s.mu.Lock()
	s.logoutStatus = status
	s.mu.Unlock()
}

// SetReissueStatus forces the reissue endpoint to answer with status; 0
// restores normal behavior.
func (s *Server) SetReissueStatus(status int) {
	s.mu.Lock()
	s.reissueStatus = status
	s.mu.Unlock()
}

// SetReissueDelay delays every reissue response.
func (s *Server) SetReissueDelay(d time.Duration) {
	s.mu.Lock()
	s.reissueDelay = d
	s.mu.Unlock()
}

// AddOrder registers an order.
func (s *Server) AddOrder(o Order) {
	s.mu.Lock()
	s.orders[o.ID] = &o
	s.mu.Unlock()
}

// Order returns a copy of the stored order.
func (s *Server) Order(id int64) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// RevokeRefresh drops every refresh credential, as a server-side logout of
// all devices would.
func (s *Server) RevokeRefresh() {
	s.mu.Lock()
	s.refresh = make(map[string]string)
	s.mu.Unlock()
}

// IssueAccessToken signs a token for email using the current TTL.
func (s *Server) IssueAccessToken(email string) (string, error) {
	s.mu.Lock()
	acct, ok := s.accounts[email]
	ttl := s.accessTTL
	s.mu.Unlock()
	if !ok {
		return "", errUnknownAccount
	}
	return s.signer.SignWithExpiry(acct.Email, acct.Nickname, acct.Role, s.now().Add(ttl))
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "COMMON-400", "malformed request body")
		return
	}

	s.mu.Lock()
	limiter := s.limiter
	s.mu.Unlock()
	if limiter != nil {
		if err := limiter.Check(r.Context(), req.Email); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				writeError(w, http.StatusTooManyRequests, "AUTH-429", "too many sign-in attempts")
			} else {
				writeError(w, http.StatusServiceUnavailable, "COMMON-503", "sign-in unavailable")
			}
			return
		}
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	if !ok || acct.Password != req.Password {
		s.mu.Unlock()
		if limiter != nil {
			_, _ = limiter.RecordFailure(r.Context(), req.Email)
		}
		writeError(w, http.StatusUnauthorized, "AUTH-401", "invalid email or password")
		return
	}
	snapshot := *acct
	refreshID := uuid.NewString()
	s.refresh[refreshID] = acct.Email
	s.mu.Unlock()

	if limiter != nil {
		_ = limiter.Reset(r.Context(), req.Email)
	}

	token, err := s.IssueAccessToken(snapshot.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "COMMON-500", err.Error())
		return
	}

	setRefreshCookie(w, refreshID)
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": token,
		"user":        snapshot,
	})
}

func (s *Server) reissue(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.reissueStatus
	delay := s.reissueDelay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeError(w, status, "AUTH-REISSUE", "reissue rejected")
		return
	}

	cookie, err := r.Cookie(RefreshCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH-REFRESH-MISSING", "refresh token missing")
		return
	}

	s.mu.Lock()
	email, ok := s.refresh[cookie.Value]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH-REFRESH-INVALID", "refresh token invalid")
		return
	}

	token, err := s.IssueAccessToken(email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH-REFRESH-INVALID", "refresh token invalid")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": token})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.logoutStatus
	if cookie, err := r.Cookie(RefreshCookie); err == nil && status == 0 {
		delete(s.refresh, cookie.Value)
	}
	s.mu.Unlock()

	if status != 0 {
		writeError(w, status, "AUTH-LOGOUT", "logout failed")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, acct *Account)

func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := middleware.ParseBearer(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "AUTH-TOKEN-MISSING", "access token missing")
			return
		}
		claims, err := s.decoder.Decode(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "AUTH-TOKEN-INVALID", "access token invalid")
			return
		}

		s.mu.Lock()
		acct, ok := s.accounts[claims.Email()]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "AUTH-TOKEN-INVALID", "access token invalid")
			return
		}
		next(w, r, acct)
	}
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, acct *Account) {
	s.mu.Lock()
	snapshot := *acct
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) nickname(w http.ResponseWriter, r *http.Request, acct *Account) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Nickname) == "" {
		writeError(w, http.StatusBadRequest, "USER-400", "nickname required")
		return
	}

	s.mu.Lock()
	for _, other := range s.accounts {
		if other.Email != acct.Email && other.Nickname == req.Nickname {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "USER-409", "nickname already in use")
			return
		}
	}
	acct.Nickname = req.Nickname
	snapshot := *acct
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request, acct *Account) {
	order, ok := s.lookupOrder(r, acct)
	if !ok {
		writeError(w, http.StatusNotFound, "ORDER-404", "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) shippingInfo(w http.ResponseWriter, r *http.Request, acct *Account) {
	var req Shipping
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Address == "" {
		writeError(w, http.StatusBadRequest, "ORDER-400", "recipient and address are required")
		return
	}
	if _, ok := s.lookupOrder(r, acct); !ok {
		writeError(w, http.StatusNotFound, "ORDER-404", "order not found")
		return
	}

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	o := s.orders[id]
	o.Shipping = &req
	snapshot := *o
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) lookupOrder(r *http.Request, acct *Account) (Order, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return Order{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.BuyerEmail != acct.Email {
		return Order{}, false
	}
	return *o, true
}

func setRefreshCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
