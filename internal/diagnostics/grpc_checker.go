package diagnostics

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthChecker probes upstream connectivity via the standard gRPC
// health-checking protocol.
type GRPCHealthChecker struct {
	endpoint string
	conn     *grpc.ClientConn
	client   grpc_health_v1.HealthClient
	timeout  time.Duration
}

// NewGRPCHealthChecker dials the endpoint. Scheme/port decide TLS, the
// same way the upstream providers are dialed elsewhere in the stack.
func NewGRPCHealthChecker(endpoint string) (*GRPCHealthChecker, error) {
	target := endpoint
	var opts []grpc.DialOption

	if strings.HasPrefix(endpoint, "https://") || strings.HasSuffix(endpoint, ":443") {
		creds := credentials.NewTLS(&tls.Config{})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		target = strings.TrimPrefix(target, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		target = strings.TrimPrefix(target, "http://")
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial health endpoint %s: %w", target, err)
	}

	return &GRPCHealthChecker{
		endpoint: endpoint,
		conn:     conn,
		client:   grpc_health_v1.NewHealthClient(conn),
		timeout:  3 * time.Second,
	}, nil
}

// Online reports whether the upstream answered SERVING. Any probe
// failure reads as offline.
func (c *GRPCHealthChecker) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return false
	}
	return resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING
}

// Close releases the connection.
func (c *GRPCHealthChecker) Close() error {
	return c.conn.Close()
}
