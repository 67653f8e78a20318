package mongodb

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"

	component "github.com/kart-io/sentinel-mongo/pkg/component/mongodb"
	"github.com/kart-io/sentinel-mongo/pkg/infra/datasource"
)

// ClientKey is the container key of the application's MongoDB client.
const ClientKey = "mongodb:client"

// Definition is re-exported from pkg/component/mongodb for convenience.
type Definition = component.Definition

// Registry is the part of the hosting container the extension needs.
// *datasource.Manager implements it.
type Registry interface {
	Has(key string) bool
	Register(key string, p datasource.Provider) error
}

// Phase is the lifecycle stage of an Extension.
type Phase int

const (
	// PhaseDiscovery accepts definitions through Observe.
	PhaseDiscovery Phase = iota
	// PhaseFinalized has frozen the accepted definition.
	PhaseFinalized
	// PhaseRegistered has made its registration decision.
	PhaseRegistered
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseDiscovery:
		return "discovery"
	case PhaseFinalized:
		return "finalized"
	case PhaseRegistered:
		return "registered"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Extension decides once per application whether to register a managed
// MongoDB client.
type Extension struct {
	mu sync.Mutex

	opts *component.Options

	accepted   *Definition
	observed   int
	conflict   bool
	phase      Phase
	registered bool
}

// NewExtension creates an extension. opts tunes the client it builds;
// nil uses the defaults.
func NewExtension(opts *component.Options) *Extension {
	if opts == nil {
		opts = component.NewOptions()
	}
	return &Extension{opts: opts}
}

// Observe records a declared definition. The first one is kept; any later
// one only sets the conflict flag.
func (e *Extension) Observe(def Definition) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseDiscovery {
		logger.Warnw("MongoDB definition observed after discovery, ignoring",
			"definition", def.String(), "phase", e.phase.String())
		return
	}

	e.observed++
	if e.accepted == nil {
		d := def
		e.accepted = &d
		logger.Debugw("MongoDB definition accepted", "definition", def.String())
		return
	}

	e.conflict = true
	logger.Debugw("MongoDB definition ignored", "definition", def.String(), "accepted", e.accepted.Name)
}

// FinalizeDiscovery ends discovery and reports what was found.
// Calling it again has no effect.
func (e *Extension) FinalizeDiscovery() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.finalizeLocked()
}

func (e *Extension) finalizeLocked() {
	if e.phase != PhaseDiscovery {
		return
	}
	e.phase = PhaseFinalized

	switch {
	case e.accepted == nil:
		logger.Warn("No MongoDB data sources found, mongo extension will do nothing")
	case e.conflict:
		logger.Warnw("You defined more than one MongoDB data source. Only the one with name "+e.accepted.Name+" will be created",
			"name", e.accepted.Name,
			"observed", e.observed,
		)
	}
}

// RegisterIfAbsent registers a lazy provider for the accepted definition
// under ClientKey. It does nothing when no definition was observed or when
// the registry already holds a client under ClientKey. Only the first call
// decides; later calls return nil.
func (e *Extension) RegisterIfAbsent(_ context.Context, registry Registry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.finalizeLocked()
	if e.phase == PhaseRegistered {
		return nil
	}
	e.phase = PhaseRegistered

	if e.accepted == nil {
		return nil
	}

	if registry.Has(ClientKey) {
		logger.Infow("Application contains a default MongoDB client, automatic registration will be disabled",
			"key", ClientKey)
		return nil
	}

	def := *e.accepted
	factory := component.NewFactory(def, e.opts)
	provider := datasource.Provider{
		Produce: func(ctx context.Context) (any, error) {
			return factory.CreateClient(ctx)
		},
		Dispose: datasource.CloseDisposer,
		Origin:  datasource.OriginExtension,
	}

	if err := registry.Register(ClientKey, provider); err != nil {
		return fmt.Errorf("failed to register mongodb client '%s': %w", def.Name, err)
	}
	e.registered = true

	logger.Infow("Registering client for MongoDB data source",
		"name", def.Name,
		"url", component.RedactURI(def.URL),
	)
	return nil
}

// Accepted returns the definition that will be used, if any.
func (e *Extension) Accepted() (Definition, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.accepted == nil {
		return Definition{}, false
	}
	return *e.accepted, true
}

// Conflict reports whether more than one definition was observed.
func (e *Extension) Conflict() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conflict
}

// Observed returns how many definitions were observed during discovery.
func (e *Extension) Observed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.observed
}

// Registered reports whether this extension registered the client.
func (e *Extension) Registered() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registered
}

// Phase returns the current lifecycle stage.
func (e *Extension) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}
