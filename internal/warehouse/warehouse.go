// Package warehouse checks that the MoveIt warehouse database started by the
// launch is reachable.
package warehouse

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"

	"github.com/aki/armlaunch/internal/core/logger"
)

// Defaults match the parameters the database bridge is launched with
const (
	DefaultHost     = "localhost"
	DefaultPort     = 33829
	DefaultTimeout  = 30 * time.Second
	DefaultInterval = time.Second
)

// Pinger checks a MongoDB URI once
type Pinger func(ctx context.Context, uri string) error

// Prober waits for the warehouse database
type Prober struct {
	timeout  time.Duration
	interval time.Duration
	ping     Pinger
	log      logger.Logger
}

// Option configures a Prober
type Option func(*Prober)

// WithTimeout bounds the whole probe
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.timeout = d
	}
}

// WithInterval sets the delay between attempts
func WithInterval(d time.Duration) Option {
	return func(p *Prober) {
		p.interval = d
	}
}

// WithPinger replaces the MongoDB ping
func WithPinger(ping Pinger) Option {
	return func(p *Prober) {
		p.ping = ping
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(p *Prober) {
		p.log = l
	}
}

// NewProber creates a prober using the MongoDB driver
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		timeout:  DefaultTimeout,
		interval: DefaultInterval,
		ping:     Ping,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// URI returns the connection string for a warehouse host and port
func URI(host string, port int) string {
	return "mongodb://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Probe pings the database until it answers or the timeout passes
func (p *Prober) Probe(ctx context.Context, host string, port int) error {
	uri := URI(host, port)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	policy := retrypolicy.Builder[any]().
		WithMaxRetries(-1).
		WithMaxDuration(p.timeout).
		WithDelay(p.interval).
		OnRetry(func(e failsafe.ExecutionEvent[any]) {
			p.log.Debug("warehouse not ready", "uri", uri, "attempt", e.Attempts(), "error", e.LastError())
		}).
		Build()

	err := failsafe.NewExecutor[any](policy).WithContext(ctx).Run(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.interval+time.Second)
		defer cancel()
		return p.ping(attemptCtx, uri)
	})
	if err != nil {
		return fmt.Errorf("warehouse at %s not reachable within %s: %w", uri, p.timeout, err)
	}

	p.log.Info("warehouse reachable", "uri", uri)
	return nil
}

// Ping connects to uri and pings the primary once
func Ping(ctx context.Context, uri string) error {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(time.Second).
		SetConnectTimeout(time.Second))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return multierr.Combine(err, client.Disconnect(ctx))
	}
	return client.Disconnect(ctx)
}

// Target reads the host and port from the database bridge parameters,
// falling back to the defaults
func Target(params map[string]any) (string, int) {
	host := DefaultHost
	if h, ok := params["warehouse_host"].(string); ok && h != "" {
		host = h
	}

	port := DefaultPort
	switch v := params["warehouse_port"].(type) {
	case int:
		port = v
	case int64:
		port = int(v)
	case float64:
		port = int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	return host, port
}
