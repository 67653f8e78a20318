package mongodb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
	options "github.com/kart-io/sentinel-mongo/pkg/options/mongodb"
)

const tracerName = "github.com/kart-io/sentinel-mongo/pkg/component/mongodb"

// Options is re-exported from pkg/options/mongodb for convenience.
type Options = options.Options

// Definition is re-exported from pkg/options/mongodb for convenience.
type Definition = options.Definition

// NewOptions is re-exported from pkg/options/mongodb for convenience.
var NewOptions = options.NewOptions

// RedactURI is re-exported from pkg/options/mongodb for convenience.
var RedactURI = options.RedactURI

// Client wraps mongo.Client with storage.Client interface implementation.
// It is the single, application scoped MongoDB client built from a
// Definition. Database and collection handles obtained from it are plain
// driver handles and stay valid until the client is closed.
//
//	client, err := mongodb.NewWithContext(ctx, def, mongodb.NewOptions())
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	coll := client.Collection("myTestDb", "testCollection")
type Client struct {
	client     *mongo.Client
	def        Definition
	opts       *Options
	instanceID string

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New creates a new MongoDB client from the provided definition and options.
func New(def Definition, opts *Options) (*Client, error) {
	return NewWithContext(context.Background(), def, opts)
}

// NewWithContext creates a new MongoDB client.
// The context bounds connection establishment and the initial ping.
//
// Every failure (malformed URL, unknown host, unreachable server) is
// reported as storage.ErrInvalidConfig wrapping the driver error.
// Nothing is retried.
func NewWithContext(ctx context.Context, def Definition, opts *Options) (*Client, error) {
	if opts == nil {
		opts = NewOptions()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "mongodb.connect",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("mongodb.definition", def.Name),
		),
	)
	defer span.End()

	client, err := connect(ctx, def, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mongodb client construction failed")
		return nil, err
	}

	c := &Client{
		client:     client,
		def:        def,
		opts:       opts,
		instanceID: ulid.Make().String(),
	}
	span.SetAttributes(attribute.String("mongodb.instance_id", c.instanceID))

	logger.Infow("MongoDB client created",
		"name", def.Name,
		"url", options.RedactURI(def.URL),
		"instance_id", c.instanceID,
	)
	return c, nil
}

func connect(ctx context.Context, def Definition, opts *Options) (*mongo.Client, error) {
	if err := ValidateURI(def.URL); err != nil {
		return nil, err
	}

	clientOpts := mongoopts.Client().ApplyURI(def.URL)

	// Apply connection pool settings
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}
	if opts.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(opts.MinPoolSize)
	}
	if opts.MaxConnIdleTime > 0 {
		clientOpts.SetMaxConnIdleTime(opts.MaxConnIdleTime)
	}

	// Apply timeout settings
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.SocketTimeout > 0 {
		clientOpts.SetSocketTimeout(opts.SocketTimeout)
	}
	if opts.ServerSelectionTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(opts.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, storage.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("failed to build mongodb client '%s'", def.Name)).
			WithCause(err)
	}

	if !opts.PingOnConnect {
		return client, nil
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, storage.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("mongodb server for client '%s' is unreachable", def.Name)).
			WithCause(err)
	}

	return client, nil
}

// Name returns the storage type identifier.
func (c *Client) Name() string {
	return "mongodb"
}

// Definition returns the definition the client was built from.
func (c *Client) Definition() Definition {
	return c.def
}

// InstanceID identifies this client instance in logs and traces.
func (c *Client) InstanceID() string {
	return c.instanceID
}

// Ping checks if the connection to MongoDB is alive.
func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil || c.closed.Load() {
		return storage.ErrNotConnected
	}
	return c.client.Ping(ctx, nil)
}

// Disconnect closes the client. Only the first call does any work; later
// calls return the result of the first one.
func (c *Client) Disconnect(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.client == nil {
			return
		}
		c.closeErr = c.client.Disconnect(ctx)
		if c.closeErr != nil {
			logger.Warnw("MongoDB client disconnect failed",
				"name", c.def.Name,
				"instance_id", c.instanceID,
				"error", c.closeErr.Error(),
			)
			return
		}
		logger.Infow("MongoDB client closed", "name", c.def.Name, "instance_id", c.instanceID)
	})
	return c.closeErr
}

// Close closes the MongoDB connection, bounded by the configured
// disconnect timeout. It is safe to call multiple times.
func (c *Client) Close() error {
	timeout := 10 * time.Second
	if c.opts != nil && c.opts.DisconnectTimeout > 0 {
		timeout = c.opts.DisconnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Disconnect(ctx)
}

// Health returns a HealthChecker function for MongoDB health monitoring.
func (c *Client) Health() storage.HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return c.Ping(ctx)
	}
}

// Database returns a handle for the named database.
//
//	db := client.Database("analytics")
//	events := db.Collection("events")
func (c *Client) Database(name string) *mongo.Database {
	return c.client.Database(name)
}

// Collection returns a handle for a collection of the named database.
func (c *Client) Collection(dbName, collName string) *mongo.Collection {
	return c.client.Database(dbName).Collection(collName)
}

// Raw returns the underlying mongo.Client.
func (c *Client) Raw() *mongo.Client {
	return c.client
}
