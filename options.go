package fixtures

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Options is the per-test configuration of one fixture: an immutable
// key-value record. The zero value is the canonical empty configuration and
// every getter falls back to the supplied default.
type Options struct {
	values map[string]any
}

// NewOptions copies values into a new Options.
func NewOptions(values map[string]any) Options {
	if len(values) == 0 {
		return Options{}
	}
	return Options{values: lo.Assign(values)}
}

// EmptyOptions returns the canonical empty configuration.
func EmptyOptions() Options {
	return Options{}
}

func (o Options) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o Options) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o Options) Len() int {
	return len(o.values)
}

func (o Options) IsEmpty() bool {
	return len(o.values) == 0
}

// Keys returns the keys in sorted order.
func (o Options) Keys() []string {
	keys := lo.Keys(o.values)
	sort.Strings(keys)
	return keys
}

func (o Options) String(key, def string) string {
	v, ok := o.values[key]
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

func (o Options) Bool(key string, def bool) bool {
	v, ok := o.values[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

func (o Options) Int(key string, def int) int {
	v, ok := o.values[key]
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

func (o Options) Float(key string, def float64) float64 {
	v, ok := o.values[key]
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

func (o Options) Duration(key string, def time.Duration) time.Duration {
	v, ok := o.values[key]
	if !ok {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return def
	}
	return d
}

// Time accepts time.Time values and the string layouts understood by cast
// (RFC3339 among them).
func (o Options) Time(key string, def time.Time) time.Time {
	v, ok := o.values[key]
	if !ok {
		return def
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return def
	}
	return t
}

func (o Options) StringSlice(key string, def []string) []string {
	v, ok := o.values[key]
	if !ok {
		return def
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return def
	}
	return s
}

func (o Options) StringMap(key string, def map[string]string) map[string]string {
	v, ok := o.values[key]
	if !ok {
		return def
	}
	m, err := cast.ToStringMapStringE(v)
	if err != nil {
		return def
	}
	return m
}

// Sub returns the nested record stored under key, or empty Options.
func (o Options) Sub(key string) Options {
	v, ok := o.values[key]
	if !ok {
		return Options{}
	}
	if nested, ok := v.(Options); ok {
		return nested
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return Options{}
	}
	return NewOptions(m)
}

// Merge returns a copy of o overlaid with other. Keys in other win.
func (o Options) Merge(other Options) Options {
	if other.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return other
	}
	return Options{values: lo.Assign(o.values, other.values)}
}

// Without returns a copy of o minus keys.
func (o Options) Without(keys ...string) Options {
	if o.IsEmpty() {
		return o
	}
	return Options{values: lo.OmitByKeys(o.values, keys)}
}

// ToMap returns a copy of the underlying values.
func (o Options) ToMap() map[string]any {
	return lo.Assign(map[string]any{}, o.values)
}

// Decode fills target (a pointer to a struct or map) from the options using
// `mapstructure` tags. Strings are converted to numbers, bools and durations.
func (o Options) Decode(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("creating options decoder: %w", err)
	}
	if err := decoder.Decode(o.ToMap()); err != nil {
		return fmt.Errorf("decoding options: %w", err)
	}
	return nil
}

// OptionSet holds the options a test declares, keyed by options key (the
// fixture name unless the spec overrides it).
type OptionSet map[string]Options

// Resolve returns the options declared for key, or the canonical empty value.
func (s OptionSet) Resolve(key string) Options {
	if o, ok := s[key]; ok {
		return o
	}
	return Options{}
}

// With returns a copy of s with key set to values.
func (s OptionSet) With(key string, values map[string]any) OptionSet {
	out := lo.Assign(OptionSet{}, s)
	out[key] = NewOptions(values)
	return out
}

// Merge returns a copy of s overlaid with other, key by key.
func (s OptionSet) Merge(other OptionSet) OptionSet {
	out := lo.Assign(OptionSet{}, s)
	for key, o := range other {
		out[key] = out[key].Merge(o)
	}
	return out
}

// resolveOptions merges the spec's defaults with the test override.
func resolveOptions(spec *FixtureSpec, set OptionSet) Options {
	return spec.Defaults.Merge(set.Resolve(spec.Key()))
}
