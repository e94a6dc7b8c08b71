// Package reader implements the reader façade of spec.md §4.6 (C8): key-
// prefix scoping, secret tagging, type conversion, default/required policy,
// and access-event emission, unified across all ten ConfigType variants via
// generics instead of a hand-written method per type per access mode.
package reader

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/mapoio/confstack"
)

// Reader composes a provider with an absolute key prefix and an optional
// access reporter. The zero value is not usable; construct with New.
type Reader struct {
	provider confstack.Provider
	prefix   confstack.AbsoluteConfigKey
	reporter confstack.AccessReporter
}

// Option configures a Reader at construction.
type Option func(*Reader)

// WithKeyPrefix scopes every read under prefix.
func WithKeyPrefix(prefix confstack.AbsoluteConfigKey) Option {
	return func(r *Reader) { r.prefix = prefix }
}

// WithAccessReporter attaches a reporter that receives one AccessEvent per
// read/update.
func WithAccessReporter(reporter confstack.AccessReporter) Option {
	return func(r *Reader) { r.reporter = reporter }
}

// New builds a Reader over provider.
func New(provider confstack.Provider, opts ...Option) *Reader {
	r := &Reader{provider: provider}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scoped returns a new Reader whose key prefix is r's prefix with rel
// appended, sharing the same provider and reporter.
func (r *Reader) Scoped(rel confstack.ConfigKey) *Reader {
	return &Reader{
		provider: r.provider,
		prefix:   r.prefix.Append(rel),
		reporter: r.reporter,
	}
}

// readOptions customizes a single read call.
type readOptions struct {
	isSecret bool
}

// ReadOption customizes a single Get/Fetch/Watch call.
type ReadOption func(*readOptions)

// WithSecret marks the read's result (and every contributing provider
// result) as secret, per spec.md §4.6 step 3.
func WithSecret() ReadOption {
	return func(o *readOptions) { o.isSecret = true }
}

func resolveOptions(opts []ReadOption) readOptions {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// configTypeOf reports the ConfigType corresponding to T, or false if T is
// not one of the ten supported Go types.
func configTypeOf[T any]() (confstack.ConfigType, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return confstack.TypeString, true
	case int64:
		return confstack.TypeInt, true
	case float64:
		return confstack.TypeDouble, true
	case bool:
		return confstack.TypeBool, true
	case []byte:
		return confstack.TypeBytes, true
	case []string:
		return confstack.TypeStringArray, true
	case []int64:
		return confstack.TypeIntArray, true
	case []float64:
		return confstack.TypeDoubleArray, true
	case []bool:
		return confstack.TypeBoolArray, true
	case [][]byte:
		return confstack.TypeByteChunkArray, true
	default:
		return 0, false
	}
}

// convert unwraps content's payload into T, per the direct-mapping rule of
// spec.md §4.6 ("string -> direct; int/double/bool -> direct; bytes ->
// direct"; array variants map through their typed accessor as a whole).
func convert[T any](content confstack.ConfigContent) (T, error) {
	var zero T
	switch any(zero).(type) {
	case string:
		v, err := content.String()
		return castOrZero[T](v), err
	case int64:
		v, err := content.Int()
		return castOrZero[T](v), err
	case float64:
		v, err := content.Double()
		return castOrZero[T](v), err
	case bool:
		v, err := content.Bool()
		return castOrZero[T](v), err
	case []byte:
		v, err := content.Bytes()
		return castOrZero[T](v), err
	case []string:
		v, err := content.StringArray()
		return castOrZero[T](v), err
	case []int64:
		v, err := content.IntArray()
		return castOrZero[T](v), err
	case []float64:
		v, err := content.DoubleArray()
		return castOrZero[T](v), err
	case []bool:
		v, err := content.BoolArray()
		return castOrZero[T](v), err
	case [][]byte:
		v, err := content.ByteChunkArray()
		return castOrZero[T](v), err
	default:
		return zero, fmt.Errorf("confstack/reader: unsupported read type %T", zero)
	}
}

func castOrZero[T any](v any) T {
	if t, ok := v.(T); ok {
		return t
	}
	var zero T
	return zero
}

// As converts a raw string value into T via ctor, per the "string + as: T"
// helper of spec.md §4.6. providerName is used to attribute a failure.
func As[T any](raw string, ctor func(string) (T, error), providerName string) (T, error) {
	v, err := ctor(raw)
	if err != nil {
		var zero T
		return zero, &confstack.ConfigValueFailedToCast{ProviderName: providerName, TypeName: fmt.Sprintf("%T", zero)}
	}
	return v, nil
}

// AsInt converts a raw int64 value into T via ctor, the "int + as: T"
// analogue of As.
func AsInt[T any](raw int64, ctor func(int64) (T, error), providerName string) (T, error) {
	v, err := ctor(raw)
	if err != nil {
		var zero T
		return zero, &confstack.ConfigValueFailedToCast{ProviderName: providerName, TypeName: fmt.Sprintf("%T", zero)}
	}
	return v, nil
}

func callerLocation(skip int) confstack.SourceLocation {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return confstack.SourceLocation{}
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	return confstack.SourceLocation{File: file, Line: line, Function: name}
}

// resolution is the outcome of steps 2-5 of spec.md §4.6, shared by get,
// fetch, and each watch update.
type resolution[T any] struct {
	providerResults []confstack.ProviderResult
	value           *confstack.ConfigValue
	convErr         error
	typed           T
	found           bool
}

func resolve[T any](rawResults []confstack.ProviderResult, raw confstack.LookupResult, rawErr error, typ confstack.ConfigType, opts readOptions) resolution[T] {
	results := rawResults
	if opts.isSecret {
		for i := range results {
			results[i].Result = results[i].Result.WithSecret(true)
		}
		raw = raw.WithSecret(true)
	}

	res := resolution[T]{providerResults: results}
	if rawErr != nil {
		// Step 4: errors are already represented in providerResults; swallow here.
		return res
	}
	if !raw.Found() {
		return res
	}

	v := *raw.Value
	res.value = &v

	typed, convErr := convert[T](v.Content)
	if convErr != nil {
		res.convErr = convErr
		return res
	}
	res.typed = typed
	res.found = true
	return res
}

func (r *Reader) emit(kind confstack.AccessKind, absKey confstack.AbsoluteConfigKey, typ confstack.ConfigType, loc confstack.SourceLocation, results []confstack.ProviderResult, convErr error, result *confstack.ConfigValue, resultErr error) {
	if r.reporter == nil {
		return
	}
	r.reporter.Report(confstack.AccessEvent{
		Metadata: confstack.AccessMetadata{
			Kind:           kind,
			Key:            absKey,
			ValueType:      typ,
			SourceLocation: loc,
			Timestamp:      time.Now(),
		},
		ProviderResults: results,
		ConversionError: convErr,
		Result:          result,
		ResultErr:       resultErr,
	})
}

// resolver is implemented by providers that expose the §4.3 precedence loop
// with per-provider results (MultiProvider's Resolve* methods). resolveValue
// and resolveFetchValue use it when available and fall back to the plain
// Provider interface (a single ProviderResult) otherwise.
type resolver interface {
	ResolveValue(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) ([]confstack.ProviderResult, confstack.LookupResult, error)
	ResolveFetchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) ([]confstack.ProviderResult, confstack.LookupResult, error)
}

func (r *Reader) resolveValue(key confstack.AbsoluteConfigKey, typ confstack.ConfigType) ([]confstack.ProviderResult, confstack.LookupResult, error) {
	if res, ok := r.provider.(resolver); ok {
		return res.ResolveValue(key, typ)
	}
	lr, err := r.provider.Value(key, typ)
	return []confstack.ProviderResult{{ProviderName: r.provider.Name(), Result: lr, Err: err}}, lr, err
}

func (r *Reader) resolveFetchValue(ctx context.Context, key confstack.AbsoluteConfigKey, typ confstack.ConfigType) ([]confstack.ProviderResult, confstack.LookupResult, error) {
	if res, ok := r.provider.(resolver); ok {
		return res.ResolveFetchValue(ctx, key, typ)
	}
	lr, err := r.provider.FetchValue(ctx, key, typ)
	return []confstack.ProviderResult{{ProviderName: r.provider.Name(), Result: lr, Err: err}}, lr, err
}

// Get performs a synchronous, non-throwing read, returning (value, true) on
// success or (zero, false) if absent or unconvertible.
func Get[T any](r *Reader, key confstack.ConfigKey, opts ...ReadOption) (T, bool) {
	o := resolveOptions(opts)
	typ, ok := configTypeOf[T]()
	if !ok {
		var zero T
		return zero, false
	}
	absKey := r.prefix.Append(key)
	results, raw, err := r.resolveValue(absKey, typ)
	res := resolve[T](results, raw, err, typ, o)

	r.emit(confstack.AccessGet, absKey, typ, callerLocation(2), res.providerResults, res.convErr, configValueOrNil(res), nil)
	return res.typed, res.found
}

// GetDefault is Get with a fallback value when absent or unconvertible.
func GetDefault[T any](r *Reader, key confstack.ConfigKey, def T, opts ...ReadOption) T {
	o := resolveOptions(opts)
	typ, ok := configTypeOf[T]()
	if !ok {
		return def
	}
	absKey := r.prefix.Append(key)
	results, raw, err := r.resolveValue(absKey, typ)
	res := resolve[T](results, raw, err, typ, o)

	out := def
	if res.found {
		out = res.typed
	}
	r.emit(confstack.AccessGet, absKey, typ, callerLocation(2), res.providerResults, res.convErr, configValueFromT(out, typ, res), nil)
	return out
}

// GetRequired is Get, returning MissingRequiredConfigValue if absent, or
// the conversion error if the raw value could not be converted.
func GetRequired[T any](r *Reader, key confstack.ConfigKey, opts ...ReadOption) (T, error) {
	o := resolveOptions(opts)
	var zero T
	typ, ok := configTypeOf[T]()
	if !ok {
		return zero, fmt.Errorf("confstack/reader: unsupported read type")
	}
	absKey := r.prefix.Append(key)
	results, raw, err := r.resolveValue(absKey, typ)
	res := resolve[T](results, raw, err, typ, o)

	var resultErr error
	switch {
	case res.value == nil:
		resultErr = &confstack.MissingRequiredConfigValue{Key: absKey}
	case res.convErr != nil:
		resultErr = res.convErr
	}

	r.emit(confstack.AccessGet, absKey, typ, callerLocation(2), res.providerResults, res.convErr, res.value, resultErr)
	if resultErr != nil {
		return zero, resultErr
	}
	return res.typed, nil
}

// Fetch is the asynchronous analogue of Get, using provider.fetch_value.
func Fetch[T any](ctx context.Context, r *Reader, key confstack.ConfigKey, opts ...ReadOption) (T, bool, error) {
	o := resolveOptions(opts)
	var zero T
	typ, ok := configTypeOf[T]()
	if !ok {
		return zero, false, fmt.Errorf("confstack/reader: unsupported read type")
	}
	absKey := r.prefix.Append(key)
	results, raw, err := r.resolveFetchValue(ctx, absKey, typ)
	if err != nil {
		r.emit(confstack.AccessFetch, absKey, typ, callerLocation(2), results, nil, nil, err)
		return zero, false, err
	}
	res := resolve[T](results, raw, nil, typ, o)
	r.emit(confstack.AccessFetch, absKey, typ, callerLocation(2), res.providerResults, res.convErr, configValueOrNil(res), nil)
	return res.typed, res.found, nil
}

// FetchDefault is Fetch with a fallback value; like Fetch it swallows a
// conversion error, returning the default as GetDefault does (spec.md §4.6),
// but still propagates a provider-chain error.
func FetchDefault[T any](ctx context.Context, r *Reader, key confstack.ConfigKey, def T, opts ...ReadOption) (T, error) {
	o := resolveOptions(opts)
	typ, ok := configTypeOf[T]()
	if !ok {
		return def, fmt.Errorf("confstack/reader: unsupported read type")
	}
	absKey := r.prefix.Append(key)
	results, raw, err := r.resolveFetchValue(ctx, absKey, typ)
	if err != nil {
		r.emit(confstack.AccessFetch, absKey, typ, callerLocation(2), results, nil, nil, err)
		return def, err
	}
	res := resolve[T](results, raw, nil, typ, o)

	out := def
	if res.found {
		out = res.typed
	}
	r.emit(confstack.AccessFetch, absKey, typ, callerLocation(2), res.providerResults, res.convErr, configValueFromT(out, typ, res), nil)
	return out, nil
}

// FetchRequired is Fetch, surfacing MissingRequiredConfigValue or a
// conversion error to the caller.
func FetchRequired[T any](ctx context.Context, r *Reader, key confstack.ConfigKey, opts ...ReadOption) (T, error) {
	o := resolveOptions(opts)
	var zero T
	typ, ok := configTypeOf[T]()
	if !ok {
		return zero, fmt.Errorf("confstack/reader: unsupported read type")
	}
	absKey := r.prefix.Append(key)
	results, raw, err := r.resolveFetchValue(ctx, absKey, typ)
	if err != nil {
		r.emit(confstack.AccessFetch, absKey, typ, callerLocation(2), results, nil, nil, err)
		return zero, err
	}
	res := resolve[T](results, raw, nil, typ, o)

	var resultErr error
	switch {
	case res.value == nil:
		resultErr = &confstack.MissingRequiredConfigValue{Key: absKey}
	case res.convErr != nil:
		resultErr = res.convErr
	}
	r.emit(confstack.AccessFetch, absKey, typ, callerLocation(2), res.providerResults, res.convErr, res.value, resultErr)
	if resultErr != nil {
		return zero, resultErr
	}
	return res.typed, nil
}

// Update is delivered to a Watch handler for every change.
type Update[T any] struct {
	Value T
	Found bool
	Err   error
}

// Watch subscribes to continuous updates for key, mapping each raw update
// through the same conversion/default/required policy as Get, and emitting
// one AccessEvent per delivered update.
func Watch[T any](ctx context.Context, r *Reader, key confstack.ConfigKey, handler func(Update[T]), opts ...ReadOption) error {
	o := resolveOptions(opts)
	typ, ok := configTypeOf[T]()
	if !ok {
		return fmt.Errorf("confstack/reader: unsupported read type")
	}
	absKey := r.prefix.Append(key)
	loc := callerLocation(2)

	return r.provider.WatchValue(ctx, absKey, typ, func(ch <-chan confstack.WatchResult) {
		for wr := range ch {
			results := []confstack.ProviderResult{{ProviderName: r.provider.Name(), Result: wr.Result, Err: wr.Err}}
			res := resolve[T](results, wr.Result, wr.Err, typ, o)
			r.emit(confstack.AccessWatch, absKey, typ, loc, res.providerResults, res.convErr, configValueOrNil(res), nil)
			handler(Update[T]{Value: res.typed, Found: res.found})
		}
	})
}

// WatchDefault is Watch with a fallback value substituted for each absent
// or unconvertible update.
func WatchDefault[T any](ctx context.Context, r *Reader, key confstack.ConfigKey, def T, handler func(T), opts ...ReadOption) error {
	return Watch[T](ctx, r, key, func(u Update[T]) {
		if u.Found {
			handler(u.Value)
			return
		}
		handler(def)
	}, opts...)
}

// WatchRequired is Watch, delivering a MissingRequiredConfigValue or
// conversion error element to the handler instead of a value when an
// update cannot be resolved.
func WatchRequired[T any](ctx context.Context, r *Reader, key confstack.ConfigKey, handler func(Update[T]), opts ...ReadOption) error {
	o := resolveOptions(opts)
	typ, ok := configTypeOf[T]()
	if !ok {
		return fmt.Errorf("confstack/reader: unsupported read type")
	}
	absKey := r.prefix.Append(key)
	loc := callerLocation(2)

	return r.provider.WatchValue(ctx, absKey, typ, func(ch <-chan confstack.WatchResult) {
		for wr := range ch {
			results := []confstack.ProviderResult{{ProviderName: r.provider.Name(), Result: wr.Result, Err: wr.Err}}
			res := resolve[T](results, wr.Result, wr.Err, typ, o)

			var resultErr error
			switch {
			case res.value == nil:
				resultErr = &confstack.MissingRequiredConfigValue{Key: absKey}
			case res.convErr != nil:
				resultErr = res.convErr
			}
			r.emit(confstack.AccessWatch, absKey, typ, loc, res.providerResults, res.convErr, res.value, resultErr)
			handler(Update[T]{Value: res.typed, Found: res.found, Err: resultErr})
		}
	})
}

func configValueOrNil[T any](res resolution[T]) *confstack.ConfigValue {
	return res.value
}

// configValueFromT synthesizes the ConfigValue the default-variant reporter
// should observe, per spec.md §4.6 step 6: the final result the caller
// actually sees, even when that is the supplied default rather than
// anything a provider produced.
func configValueFromT[T any](out T, typ confstack.ConfigType, res resolution[T]) *confstack.ConfigValue {
	if res.found {
		return res.value
	}
	content, err := toContent(out, typ)
	if err != nil {
		return nil
	}
	v := confstack.NewConfigValue(content)
	return &v
}

func toContent[T any](v T, typ confstack.ConfigType) (confstack.ConfigContent, error) {
	switch typ {
	case confstack.TypeString:
		return confstack.NewStringContent(any(v).(string)), nil
	case confstack.TypeInt:
		return confstack.NewIntContent(any(v).(int64)), nil
	case confstack.TypeDouble:
		return confstack.NewDoubleContent(any(v).(float64)), nil
	case confstack.TypeBool:
		return confstack.NewBoolContent(any(v).(bool)), nil
	case confstack.TypeBytes:
		return confstack.NewBytesContent(any(v).([]byte)), nil
	case confstack.TypeStringArray:
		return confstack.NewStringArrayContent(any(v).([]string)), nil
	case confstack.TypeIntArray:
		return confstack.NewIntArrayContent(any(v).([]int64)), nil
	case confstack.TypeDoubleArray:
		return confstack.NewDoubleArrayContent(any(v).([]float64)), nil
	case confstack.TypeBoolArray:
		return confstack.NewBoolArrayContent(any(v).([]bool)), nil
	case confstack.TypeByteChunkArray:
		return confstack.NewByteChunkArrayContent(any(v).([][]byte)), nil
	default:
		return confstack.ConfigContent{}, fmt.Errorf("confstack/reader: unsupported content type %s", typ)
	}
}
