package doorman

// ExecContext is the request-scoped execution context a decision runs
// against: the current identity, the resource and action under check,
// request parameters, the named loaders the host exposes to rules, and a
// memoization arena for lazily loaded domain objects.
//
// An ExecContext is created fresh per request, is never shared across
// concurrent requests, and is discarded at request end, so it carries no
// internal locking. The core only reads from it and writes memoized
// objects into it.
type ExecContext struct {
	identity Identity
	resource string
	action   string
	params   map[string]string
	loaders  map[string]Loader
	memo     map[string]any
}

// ParamRemoteIP is the parameter key the decision recorder reads the
// client address from. Hosts that want decision logs to carry the request
// IP set it via WithParam or the middleware's WithClientIP option.
const ParamRemoteIP = "remote_ip"

// ExecOption configures an ExecContext at construction.
type ExecOption func(*ExecContext)

// WithParam sets one request parameter.
func WithParam(key, value string) ExecOption {
	return func(ec *ExecContext) { ec.params[key] = value }
}

// WithParams merges request parameters.
func WithParams(params map[string]string) ExecOption {
	return func(ec *ExecContext) {
		for k, v := range params {
			ec.params[k] = v
		}
	}
}

// WithLoader registers a named object loader for rules using LoadVia.
func WithLoader(name string, fn Loader) ExecOption {
	return func(ec *ExecContext) { ec.loaders[name] = fn }
}

// NewExecContext creates the execution context for one request.
func NewExecContext(identity Identity, resource, action string, opts ...ExecOption) *ExecContext {
	ec := &ExecContext{
		identity: identity,
		resource: resource,
		action:   action,
		params:   make(map[string]string),
		loaders:  make(map[string]Loader),
		memo:     make(map[string]any),
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// Identity returns the current request's actor.
func (ec *ExecContext) Identity() Identity { return ec.identity }

// Resource returns the protected resource's name.
func (ec *ExecContext) Resource() string { return ec.resource }

// Action returns the action name the request carries.
func (ec *ExecContext) Action() string { return ec.action }

// Param returns a request parameter, or "" when absent.
func (ec *ExecContext) Param(key string) string { return ec.params[key] }

// Loader returns the named loader registered on this context.
func (ec *ExecContext) Loader(name string) (Loader, bool) {
	fn, ok := ec.loaders[name]
	return fn, ok
}

// Memoize stores a loaded object under its domain-type name for the rest
// of this request.
func (ec *ExecContext) Memoize(domainType string, object any) {
	ec.memo[domainType] = object
}

// Memoized returns the object previously loaded for the domain type.
func (ec *ExecContext) Memoized(domainType string) (any, bool) {
	obj, ok := ec.memo[domainType]
	return obj, ok
}
