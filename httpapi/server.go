package httpapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"
)

// Server is the HTTP surface over the save pipeline and withdrawal
// preparer, following rpc.Server's lifecycle shape but serving plain JSON
// REST endpoints per spec §6 rather than a JSON-RPC envelope.
type Server struct {
	addr      string
	authToken string // empty -> no auth required
	tlsConfig *tls.Config
	srv       *http.Server
	ln        net.Listener
}

// NewServer creates a Server on addr, wiring /save and /withdraw onto h. If
// authToken is non-empty, every request must carry a matching
// "Authorization: Bearer <token>" header.
func NewServer(addr string, h *Handler, authToken string) *Server {
	s := &Server{addr: addr, authToken: authToken}
	mux := http.NewServeMux()
	mux.HandleFunc("/save", s.withAuth(h.handleSave))
	mux.HandleFunc("/withdraw", s.withAuth(h.handleWithdraw))
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// WithTLS attaches a *tls.Config (built via config.LoadTLSConfig) so Start
// serves mutual TLS instead of plain HTTP. Call before Start.
func (s *Server) WithTLS(cfg *tls.Config) *Server {
	s.tlsConfig = cfg
	s.srv.TLSConfig = cfg
	return s
}

// Start binds the port synchronously, then serves requests in a background
// goroutine. If WithTLS was called, the listener serves TLS.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.ln = ln
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[httpapi] server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the listener's address. Useful when started on ":0".
func (s *Server) Addr() net.Addr {
	if s.ln != nil {
		return s.ln.Addr()
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting up to 5 seconds for
// in-flight requests to complete.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.authToken != "" && r.Header.Get("Authorization") != "Bearer "+s.authToken {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Tag: "Unauthorized", Message: "missing or invalid bearer token"})
			return
		}
		// Limit request body to 1 MB to prevent memory exhaustion.
		r.Body = http.MaxBytesReader(w, r.Body, 1*1024*1024)
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[httpapi] write response: %v", err)
	}
}
