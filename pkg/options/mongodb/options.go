// Package mongodb provides MongoDB options.
package mongodb

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-mongo/pkg/options"
	"github.com/kart-io/sentinel-mongo/pkg/utils/json"
)

var _ options.IOptions = (*Options)(nil)

// Options defines configuration options for MongoDB.
//
// Name and URL form a Definition declared through flags or the config
// file. The remaining fields tune the driver and apply to whichever
// definition ends up being used.
type Options struct {
	// Declaration
	Name string `json:"name" mapstructure:"name"` // Definition name (diagnostics only)
	URL  string `json:"url" mapstructure:"url"`   // MongoDB URI (mongodb://...)

	// Connection Pool
	MaxPoolSize     uint64        `json:"max-pool-size" mapstructure:"max-pool-size"`
	MinPoolSize     uint64        `json:"min-pool-size" mapstructure:"min-pool-size"`
	MaxConnIdleTime time.Duration `json:"max-conn-idle-time" mapstructure:"max-conn-idle-time"`

	// Timeouts
	ConnectTimeout         time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
	SocketTimeout          time.Duration `json:"socket-timeout" mapstructure:"socket-timeout"`
	ServerSelectionTimeout time.Duration `json:"server-selection-timeout" mapstructure:"server-selection-timeout"`
	DisconnectTimeout      time.Duration `json:"disconnect-timeout" mapstructure:"disconnect-timeout"`

	// PingOnConnect makes client construction fail fast when the server
	// cannot be reached.
	PingOnConnect bool `json:"ping-on-connect" mapstructure:"ping-on-connect"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		MaxPoolSize:            100,
		MinPoolSize:            0,
		MaxConnIdleTime:        5 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		SocketTimeout:          30 * time.Second,
		ServerSelectionTimeout: 30 * time.Second,
		DisconnectTimeout:      10 * time.Second,
		PingOnConnect:          true,
	}
}

// Definition returns the definition declared by these options.
// ok is false when no URL is configured.
func (o *Options) Definition() (Definition, bool) {
	if o == nil || strings.TrimSpace(o.URL) == "" {
		return Definition{}, false
	}
	name := o.Name
	if name == "" {
		name = DefaultDefinitionName
	}
	return Definition{Name: name, URL: o.URL}, true
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	if o.URL != "" && o.Name == "" {
		o.Name = DefaultDefinitionName
	}
	if o.DisconnectTimeout <= 0 {
		o.DisconnectTimeout = 10 * time.Second
	}
	return nil
}

// Validate checks if the options are valid.
// This method is idempotent and has no side effects.
// The URL itself is not parsed here; a malformed URL is reported when the
// client is first built.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.MaxPoolSize > 0 && o.MinPoolSize > o.MaxPoolSize {
		errs = append(errs, fmt.Errorf("mongodb.min-pool-size (%d) must not exceed mongodb.max-pool-size (%d)", o.MinPoolSize, o.MaxPoolSize))
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"mongodb.max-conn-idle-time", o.MaxConnIdleTime},
		{"mongodb.connect-timeout", o.ConnectTimeout},
		{"mongodb.socket-timeout", o.SocketTimeout},
		{"mongodb.server-selection-timeout", o.ServerSelectionTimeout},
		{"mongodb.disconnect-timeout", o.DisconnectTimeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", d.name, d.value))
		}
	}

	return errs
}

// AddFlags adds flags for MongoDB options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Name, options.Join(prefixes...)+"mongodb.name", o.Name, "Name of the MongoDB client definition, used in diagnostics.")
	fs.StringVar(&o.URL, options.Join(prefixes...)+"mongodb.url", o.URL, "MongoDB connection URI (mongodb://...). Declares the application's MongoDB client.")
	fs.Uint64Var(&o.MaxPoolSize, options.Join(prefixes...)+"mongodb.max-pool-size", o.MaxPoolSize, "Maximum number of connections in the pool.")
	fs.Uint64Var(&o.MinPoolSize, options.Join(prefixes...)+"mongodb.min-pool-size", o.MinPoolSize, "Minimum number of connections in the pool.")
	fs.DurationVar(&o.MaxConnIdleTime, options.Join(prefixes...)+"mongodb.max-conn-idle-time", o.MaxConnIdleTime, "Maximum connection idle time.")
	fs.DurationVar(&o.ConnectTimeout, options.Join(prefixes...)+"mongodb.connect-timeout", o.ConnectTimeout, "Timeout for connection.")
	fs.DurationVar(&o.SocketTimeout, options.Join(prefixes...)+"mongodb.socket-timeout", o.SocketTimeout, "Timeout for socket operations.")
	fs.DurationVar(&o.ServerSelectionTimeout, options.Join(prefixes...)+"mongodb.server-selection-timeout", o.ServerSelectionTimeout, "Timeout for server selection.")
	fs.DurationVar(&o.DisconnectTimeout, options.Join(prefixes...)+"mongodb.disconnect-timeout", o.DisconnectTimeout, "Timeout for closing the client at shutdown.")
	fs.BoolVar(&o.PingOnConnect, options.Join(prefixes...)+"mongodb.ping-on-connect", o.PingOnConnect, "Ping the server when the client is first built.")
}

// optionsForJSON is used for JSON marshaling with the URL password redacted.
type optionsForJSON struct {
	Name                   string        `json:"name"`
	URL                    string        `json:"url"`
	MaxPoolSize            uint64        `json:"max-pool-size"`
	MinPoolSize            uint64        `json:"min-pool-size"`
	MaxConnIdleTime        time.Duration `json:"max-conn-idle-time"`
	ConnectTimeout         time.Duration `json:"connect-timeout"`
	SocketTimeout          time.Duration `json:"socket-timeout"`
	ServerSelectionTimeout time.Duration `json:"server-selection-timeout"`
	DisconnectTimeout      time.Duration `json:"disconnect-timeout"`
	PingOnConnect          bool          `json:"ping-on-connect"`
}

// MarshalJSON implements json.Marshaler with password redaction.
func (o *Options) MarshalJSON() ([]byte, error) {
	return json.Marshal(optionsForJSON{
		Name:                   o.Name,
		URL:                    RedactURI(o.URL),
		MaxPoolSize:            o.MaxPoolSize,
		MinPoolSize:            o.MinPoolSize,
		MaxConnIdleTime:        o.MaxConnIdleTime,
		ConnectTimeout:         o.ConnectTimeout,
		SocketTimeout:          o.SocketTimeout,
		ServerSelectionTimeout: o.ServerSelectionTimeout,
		DisconnectTimeout:      o.DisconnectTimeout,
		PingOnConnect:          o.PingOnConnect,
	})
}

// String returns a string representation with password redacted.
func (o *Options) String() string {
	return fmt.Sprintf("MongoDB{name=%s, url=%s, max-pool-size=%d}", o.Name, RedactURI(o.URL), o.MaxPoolSize)
}
