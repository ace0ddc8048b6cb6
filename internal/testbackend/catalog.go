package testbackend

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product is a listed auction item.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	StartPrice    int64    `json:"startPrice"`
	BidPrice      int64    `json:"bidPrice"`
	ProductStatus string   `json:"productStatus"`
	ImageURL      string   `json:"imageUrl"`
	User          *Account `json:"user,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

// AddProduct lists p and returns its assigned id.
func (s *Server) AddProduct(p Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = int64(len(s.products) + 1)
	s.products = append(s.products, p)
	return p.ID
}

// IssueResetToken returns a one-time password reset token for email.
func (s *Server) IssueResetToken(email string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.resets[token] = email
	s.mu.Unlock()
	return token
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}

	s.mu.Lock()
	total := len(s.products)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := append([]Product{}, s.products[start:end]...)
	s.mu.Unlock()

	totalPages := (total + size - 1) / size
	writeJSON(w, http.StatusOK, map[string]any{
		"content":          content,
		"totalElements":    total,
		"totalPages":       totalPages,
		"number":           page,
		"size":             size,
		"numberOfElements": len(content),
		"first":            page == 0,
		"last":             page >= totalPages-1,
		"empty":            len(content) == 0,
	})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request, acct *Account) {
	var req Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" || req.StartPrice <= 0 {
		writeError(w, http.StatusBadRequest, "PRODUCT-400", "name and a positive start price are required")
		return
	}

	s.mu.Lock()
	seller := *acct
	s.mu.Unlock()

	req.User = &seller
	req.BidPrice = req.StartPrice
	req.CreatedAt = s.now().UTC().Format(time.RFC3339)
	id := s.AddProduct(req)
	writeJSON(w, http.StatusCreated, map[string]int64{"productId": id})
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request, acct *Account) {
	var req struct {
		PaymentKey string `json:"paymentKey"`
		OrderID    string `json:"orderId"`
		Amount     int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentKey == "" || req.OrderID == "" || req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "PAYMENT-400", "paymentKey, orderId and amount are required")
		return
	}

	id, err := strconv.ParseInt(req.OrderID, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "ORDER-404", "order not found")
		return
	}

	s.mu.Lock()
	o, ok := s.orders[id]
	if !ok || o.BuyerEmail != acct.Email {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "ORDER-404", "order not found")
		return
	}
	if o.Amount != req.Amount {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "PAYMENT-AMOUNT", "amount does not match the order")
		return
	}
	o.Status = "PAID"
	o.PaymentKey = req.PaymentKey
	snapshot := *o
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"paymentKey":  req.PaymentKey,
		"orderId":     req.OrderID,
		"totalAmount": snapshot.Amount,
		"status":      "DONE",
	})
}

func (s *Server) verifyReset(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	s.mu.Lock()
	_, ok := s.resets[token]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusBadRequest, "AUTH-RESET-INVALID", "reset token invalid or expired")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetToken string `json:"resetToken"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeError(w, http.StatusBadRequest, "AUTH-RESET-400", "reset token and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resets[req.ResetToken]
	if !ok {
		writeError(w, http.StatusBadRequest, "AUTH-RESET-INVALID", "reset token invalid or expired")
		return
	}
	delete(s.resets, req.ResetToken)
	if acct, ok := s.accounts[email]; ok {
		acct.Password = req.Password
	}
	w.WriteHeader(http.StatusNoContent)
}
