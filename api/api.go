package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/exception"
	"github.com/mezonai/powchain/interfaces"
	"github.com/mezonai/powchain/jsonx"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
	"github.com/mezonai/powchain/service"
	"github.com/mezonai/powchain/utils"
	"github.com/mezonai/powchain/validator"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
	maxBlockBodyBytes  = 1 << 20
	shutdownTimeout    = 5 * time.Second
)

type APIServer struct {
	Chain      interfaces.ChainService
	Health     interfaces.HealthService
	ListenAddr string
	// ServeMetrics adds /metrics to Handler
	ServeMetrics bool
	// Nil disables rate limiting of block submissions
	SubmitLimiter *rateLimiter
}

// NewAPIServer builds the node's HTTP surface. submitPerMinute caps POST
// /block per client IP; zero means unlimited.
func NewAPIServer(chain interfaces.ChainService, health interfaces.HealthService, addr string, submitPerMinute int) *APIServer {
	s := &APIServer{Chain: chain, Health: health, ListenAddr: addr}
	if submitPerMinute > 0 {
		s.SubmitLimiter = newRateLimiter(submitPerMinute, time.Minute)
	}
	return s
}

// Handler routes every endpoint, plus /metrics when ServeMetrics is set.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /frontier_block", s.handleFrontier)
	mux.HandleFunc("GET /block/{hash}", s.handleGetBlock)
	mux.HandleFunc("POST /block", s.handleSubmitBlock)
	mux.HandleFunc("GET /blocks", s.handleRecent)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.ServeMetrics {
		monitoring.RegisterMetrics(mux)
	}
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *APIServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	exception.SafeGo("api-shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logx.Error("API", "Shutdown failed: ", err)
		}
	})

	logx.Info("API", fmt.Sprintf("API listen on %s", s.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

func (s *APIServer) handleFrontier(w http.ResponseWriter, r *http.Request) {
	frontier := s.Chain.Frontier()
	if frontier == nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeNoGenesis, errors.ErrMsgNoGenesis)
		return
	}
	writeJSON(w, http.StatusOK, frontier)
}

func (s *APIServer) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	hash := block.Hash(r.PathValue("hash"))
	b := s.Chain.Block(hash)
	if b == nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeBlockNotFound, errors.ErrMsgBlockNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *APIServer) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxRecentLimit {
			writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidLimit, fmt.Sprintf(errors.ErrMsgInvalidLimit, MaxRecentLimit))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.Chain.Recent(limit))
}

func (s *APIServer) handleSubmitBlock(w http.ResponseWriter, r *http.Request) {
	clientIP := clientIP(r)
	if s.SubmitLimiter != nil && !s.SubmitLimiter.Allow(clientIP) {
		logx.Warn("API", fmt.Sprintf("Rate limit exceeded for IP %s (submit)", clientIP))
		writeError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimited, errors.ErrMsgRateLimited)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBlockBodyBytes))
	if err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest)
		return
	}
	defer r.Body.Close()

	candidate, err := block.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest)
		return
	}

	accepted, err := s.Chain.Submit(candidate)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	logx.Info("API", fmt.Sprintf("Accepted block index=%d hash=%s from %s", accepted.Index, utils.ShortenLog(string(accepted.Hash)), clientIP))
	writeJSON(w, http.StatusOK, accepted)
}

func (s *APIServer) writeSubmitError(w http.ResponseWriter, err error) {
	var rej *validator.RejectionError
	switch {
	case stderrors.As(err, &rej):
		writeError(w, http.StatusUnprocessableEntity, errors.APIErrorCode(rej.Reason.String()), rej.Error())
	case stderrors.Is(err, service.ErrDuplicateBlock):
		writeError(w, http.StatusConflict, errors.ErrCodeDuplicateBlock, errors.ErrMsgDuplicateBlock)
	default:
		logx.Error("API", "Submit failed: ", err)
		writeError(w, http.StatusInternalServerError, errors.ErrCodeInternal, errors.ErrMsgInternal)
	}
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, err := s.Health.Check(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, errors.ErrCodeInternal, err.Error())
		return
	}
	code := http.StatusOK
	if !status.Serving {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := jsonx.NewEncoder(w).Encode(v); err != nil {
		logx.Error("API", "Failed to encode response: ", err)
	}
}

func writeError(w http.ResponseWriter, code int, errCode errors.APIErrorCode, message string) {
	writeJSON(w, code, &errors.APIError{Code: errCode, Message: message})
}
