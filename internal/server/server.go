// Package server hosts the WebSocket event surface, the upload endpoint,
// and the admin listener, wiring the chat services behind them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/auth"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/chat"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/config"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/registry"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/store"
)

// Server wires dependencies and hosts the public and admin HTTP listeners.
type Server struct {
	cfg      config.Config
	log      *zap.Logger
	store    store.Store
	registry registry.ConnectionRegistry
	verifier auth.Verifier

	svc       *chat.Service
	httpSrv   *http.Server
	adminHTTP *http.Server
	metrics   *serverMetrics
	upgrader  websocket.Upgrader
	boundAddr atomic.Value
	ready     atomic.Bool
	rootCtx   context.Context
}

// NewServer constructs a server with its dependencies.
func NewServer(cfg config.Config, logger *zap.Logger, st store.Store, reg registry.ConnectionRegistry, verifier auth.Verifier) *Server {
	if reg == nil {
		reg = registry.NewInMemory()
	}
	return &Server{
		cfg:      cfg,
		log:      logger,
		store:    st,
		registry: reg,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Start boots both listeners and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddress, err)
	}
	s.boundAddr.Store(lis.Addr().String())
	s.rootCtx = ctx

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	s.metrics = newServerMetrics(promReg)
	s.startAdminServer(promReg)

	s.svc = chat.NewService(s.log, s.store, s.registry, s.verifier, chat.Options{Metrics: s.metrics})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/ws", s.handleWebSocket)
	s.registerUploadRoutes(router)

	s.httpSrv = &http.Server{Handler: router}

	go func() {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGracePeriod)
		defer cancel()
		s.Shutdown(stopCtx)
	}()

	s.log.Info("server listening", zap.String("address", lis.Addr().String()))
	s.ready.Store(true)
	err = s.httpSrv.Serve(lis)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// Addr reports the bound listen address once Start has taken the socket.
func (s *Server) Addr() string {
	if addr, ok := s.boundAddr.Load().(string); ok {
		return addr
	}
	return ""
}

// handleWebSocket upgrades the connection and services it until close.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newSession(s.rootCtx, conn, s.log, s.svc, s.registry, s.metrics)
	sess.run()
}

func (s *Server) startAdminServer(reg *prometheus.Registry) {
	if s.cfg.AdminAddress == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if s.ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not_ready"))
	})

	s.adminHTTP = &http.Server{
		Addr:    s.cfg.AdminAddress,
		Handler: mux,
	}

	go func() {
		if err := s.adminHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("admin server stopped", zap.Error(err))
		}
	}()
	s.log.Info("admin server listening", zap.String("address", s.cfg.AdminAddress))
}

// Shutdown attempts a graceful stop before forcing termination.
func (s *Server) Shutdown(ctx context.Context) {
	s.ready.Store(false)

	if s.adminHTTP != nil {
		if err := s.adminHTTP.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("admin server shutdown", zap.Error(err))
		}
	}
	if s.httpSrv == nil {
		return
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Warn("graceful shutdown timed out; forcing close", zap.Error(err))
		_ = s.httpSrv.Close()
		return
	}
	s.log.Info("server stopped")
}
