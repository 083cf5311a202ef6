package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds how long Stop waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// HTTPService serves an http.Handler as a lifecycle Service.
type HTTPService struct {
	srv    *http.Server
	logger *zap.Logger
	ready  chan net.Addr
}

// NewHTTPService creates a stopped HTTPService bound to addr.
//
// Precondition: handler and logger must be non-nil.
func NewHTTPService(addr string, handler http.Handler, logger *zap.Logger) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
		ready:  make(chan net.Addr, 1),
	}
}

// Start listens and serves until Stop is called.
//
// Postcondition: Returns nil after a clean Stop, or the listen/serve error.
func (h *HTTPService) Start() error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return err
	}
	h.logger.Info("http listening", zap.String("addr", ln.Addr().String()))
	h.ready <- ln.Addr()
	if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Ready delivers the bound address once Start is listening.
func (h *HTTPService) Ready() <-chan net.Addr {
	return h.ready
}

// Stop gracefully shuts the server down.
func (h *HTTPService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		h.logger.Warn("http shutdown", zap.Error(err))
	}
}
