package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

func TestServeAndShutdown(t *testing.T) {
	t.Setenv("DEALDESK_DB_PATH", filepath.Join(t.TempDir(), "coordination.db"))

	server, err := NewWithAddrs("127.0.0.1:0", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()

	response, err := http.Get("http://" + server.HTTPAddr() + "/v1/transactions")
	if err != nil {
		t.Fatalf("get transactions: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", response.StatusCode)
	}

	conn, err := grpc.NewClient(server.GRPCAddr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial health endpoint: %v", err)
	}
	defer conn.Close()

	checkCtx, checkCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer checkCancel()
	check, err := grpc_health_v1.NewHealthClient(conn).Check(checkCtx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if check.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("health status = %v, want SERVING", check.Status)
	}

	cancel()
	select {
	case err := <-serveDone:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunRejectsBusyPort(t *testing.T) {
	t.Setenv("DEALDESK_DB_PATH", filepath.Join(t.TempDir(), "coordination.db"))

	server, err := NewWithAddrs("127.0.0.1:0", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer server.Close()

	if _, err := NewWithAddrs(server.HTTPAddr(), "127.0.0.1:0"); err == nil {
		t.Fatal("expected listen error on busy port")
	}
}
