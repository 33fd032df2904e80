// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"influencer-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// Client wraps the Zeebe gRPC client with connection retry and
// standardized error mapping for the discovery workers.
type Client struct {
	client zbc.Client
	config ClientConfig
}

// ClientConfig holds the broker connection settings.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	MaxConnectAttempts     int
	ConnectBackoff         time.Duration
}

func (c *ClientConfig) applyDefaults() {
	if c.ConnectionTimeout == 0 {
		c.ConnectionTimeout = 10 * time.Second
	}
	if c.MaxConnectAttempts == 0 {
		c.MaxConnectAttempts = 10
	}
	if c.ConnectBackoff == 0 {
		c.ConnectBackoff = 2 * time.Second
	}
}

// Connect dials the broker and verifies it with a topology probe,
// retrying with exponential backoff until MaxConnectAttempts is spent.
func Connect(config ClientConfig, log *zap.Logger) (*Client, error) {
	config.applyDefaults()

	var lastErr error
	delay := config.ConnectBackoff

	for attempt := 1; attempt <= config.MaxConnectAttempts; attempt++ {
		client, err := dial(config)
		if err == nil {
			return client, nil
		}
		lastErr = err

		if attempt < config.MaxConnectAttempts {
			log.Warn("zeebe connection failed, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", config.MaxConnectAttempts),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return nil, mapZeebeError(
		fmt.Errorf("connect after %d attempts: %w", config.MaxConnectAttempts, lastErr),
		"connect",
	)
}

func dial(config ClientConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("create zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("broker %s unreachable: %w", config.GatewayAddress, err)
	}

	return &Client{client: zeebeClient, config: config}, nil
}

// Raw returns the underlying Zeebe client for job worker registration.
func (c *Client) Raw() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck probes broker topology; used by the readiness endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// mapZeebeError converts broker errors into standardized application errors.
func mapZeebeError(err error, operation string) error {
	msg := err.Error()
	lowerMsg := strings.ToLower(msg)
	enhancedMsg := fmt.Sprintf("zeebe operation '%s' failed: %s", operation, msg)

	switch {
	case strings.Contains(lowerMsg, "connection refused") ||
		strings.Contains(lowerMsg, "connection reset") ||
		strings.Contains(lowerMsg, "unavailable") ||
		strings.Contains(lowerMsg, "unreachable"):
		return errors.NewExternalServiceError("zeebe", fmt.Errorf("%s", enhancedMsg))

	case strings.Contains(lowerMsg, "timeout") ||
		strings.Contains(lowerMsg, "deadline exceeded"):
		return errors.NewTimeoutError("zeebe", fmt.Errorf("%s", enhancedMsg))

	case strings.Contains(lowerMsg, "permission denied") ||
		strings.Contains(lowerMsg, "unauthorized"):
		return errors.NewAuthenticationError(enhancedMsg)

	default:
		return errors.NewExternalServiceError("zeebe", fmt.Errorf("%s", enhancedMsg))
	}
}
