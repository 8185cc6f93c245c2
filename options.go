package termtext

// Option configures a TextRenderer.
type Option func(*options)

type options struct {
	values map[string]any
}

func (o *options) set(name string, v any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	o.values[name] = v
}

// OptKey names a renderer setting of type T and carries its default.
// Backends and applications may declare their own keys:
//
//	var OptVSync = termtext.NewOptKey("vsync", true)
//	tr, err := termtext.NewTextRenderer(dev, gr, profile, termtext.WithOpt(OptVSync, false))
type OptKey[T any] struct {
	name string
	def  T
}

// NewOptKey declares a key. name must be unique among keys.
func NewOptKey[T any](name string, defaultValue T) OptKey[T] {
	return OptKey[T]{name: name, def: defaultValue}
}

// Name returns the key name.
func (k OptKey[T]) Name() string { return k.name }

// Default returns the value used when the key is not set.
func (k OptKey[T]) Default() T { return k.def }

// WithOpt sets key to value.
func WithOpt[T any](key OptKey[T], value T) Option {
	return func(o *options) { o.set(key.name, value) }
}

// GetOpt returns the value set for key, or its default.
func GetOpt[T any](o options, key OptKey[T]) T {
	if v, ok := o.values[key.name].(T); ok {
		return v
	}
	return key.def
}

// HasOpt reports whether key was set explicitly.
func HasOpt[T any](o options, key OptKey[T]) bool {
	_, ok := o.values[key.name]
	return ok
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Renderer settings.
var (
	OptAtlasConfig     = NewOptKey("atlasConfig", DefaultAtlasConfig())
	OptInstanceLimit   = NewOptKey("instanceLimit", 0) // 0 = unlimited
	OptInitialCapacity = NewOptKey("initialCapacity", defaultInstanceCapacity)
	OptMissCacheSize   = NewOptKey("missCacheSize", 1024)
)

// WithAtlasConfig sets the texture sizes and padding used for every atlas
// the renderer builds.
func WithAtlasConfig(cfg AtlasConfig) Option { return WithOpt(OptAtlasConfig, cfg) }

// WithInstanceLimit caps each instance buffer; a frame that needs more
// instances fails with ErrOutOfMemory.
func WithInstanceLimit(n int) Option { return WithOpt(OptInstanceLimit, n) }

// WithInitialCapacity sets the starting capacity of each instance buffer.
func WithInitialCapacity(n int) Option { return WithOpt(OptInitialCapacity, n) }

// WithMissCacheSize bounds how many distinct lookup failures are remembered
// so each is logged only once.
func WithMissCacheSize(n int) Option { return WithOpt(OptMissCacheSize, n) }
