// Package app wires the coordination runtime: storage, domain services, the
// JSON HTTP API, and the gRPC health endpoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dealdeskhq/dealdesk/internal/platform/config"
	coordinationhttp "github.com/dealdeskhq/dealdesk/internal/services/coordination/api/http"
	"github.com/dealdeskhq/dealdesk/internal/services/coordination/domain"
	"github.com/dealdeskhq/dealdesk/internal/services/coordination/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

type serverEnv struct {
	DBPath string `env:"DEALDESK_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "coordination.db")
	}
	return cfg
}

// Server hosts the coordination HTTP API, the gRPC health endpoint, and the
// storage lifecycle.
type Server struct {
	httpListener net.Listener
	grpcListener net.Listener
	httpServer   *http.Server
	grpcServer   *grpc.Server
	health       *health.Server
	store        *sqlite.Store
}

// New creates a configured coordination server listening on the provided ports.
func New(httpPort, grpcPort int) (*Server, error) {
	return NewWithAddrs(fmt.Sprintf(":%d", httpPort), fmt.Sprintf(":%d", grpcPort))
}

// NewWithAddrs creates a configured coordination server for the provided addresses.
func NewWithAddrs(httpAddr, grpcAddr string) (*Server, error) {
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = httpListener.Close()
		return nil, fmt.Errorf("listen on %s: %w", grpcAddr, err)
	}

	srvEnv := loadServerEnv()
	store, err := openCoordinationStore(srvEnv.DBPath)
	if err != nil {
		_ = httpListener.Close()
		_ = grpcListener.Close()
		return nil, err
	}

	api := coordinationhttp.NewAPI(
		domain.NewCatalog(store),
		domain.NewEngine(store, store, store, nil, nil),
		domain.NewTransactions(store, nil, nil),
		domain.NewTasks(store, nil),
		domain.NewClients(store, nil, nil),
		domain.NewCommunications(store, nil, nil),
	)

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("dealdesk.coordination", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		httpListener: httpListener,
		grpcListener: grpcListener,
		httpServer:   &http.Server{Handler: api.Handler()},
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
	}, nil
}

// HTTPAddr returns the HTTP listener address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the gRPC listener address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run creates and serves a coordination server until context cancellation.
func Run(ctx context.Context, httpPort, grpcPort int) error {
	server, err := New(httpPort, grpcPort)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts both servers until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("coordination HTTP API listening at %v", s.httpListener.Addr())
	log.Printf("coordination health endpoint listening at %v", s.grpcListener.Addr())

	serveErr := make(chan error, 2)
	go func() {
		err := s.httpServer.Serve(s.httpListener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()
	go func() {
		err := s.grpcServer.Serve(s.grpcListener)
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
		serveErr <- err
	}()

	select {
	case <-ctx.Done():
		s.shutdown()
		<-serveErr
		<-serveErr
		return nil
	case err := <-serveErr:
		s.shutdown()
		<-serveErr
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

func (s *Server) shutdown() {
	if s.health != nil {
		s.health.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown HTTP server: %v", err)
	}
	s.grpcServer.GracefulStop()
}

// Close releases coordination server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close coordination store: %v", err)
		}
	}
}

func openCoordinationStore(path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coordination sqlite store: %w", err)
	}
	return store, nil
}
