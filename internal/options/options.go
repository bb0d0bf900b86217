// Package options implements the functional-option plumbing shared by the
// codec's configurable constructors.
//
// Options are values rather than bare funcs so a constructor can apply a
// whole slice of them with one call and stop at the first invalid one:
//
//	if err := options.Apply(dec, opts...); err != nil {
//	    // reject the configuration
//	}
package options

// Option configures a target of type T and may reject an invalid setting.
type Option[T any] interface {
	apply(T) error
}

// optionFunc adapts a plain function to the Option interface.
type optionFunc[T any] struct {
	fn func(T) error
}

func (o *optionFunc[T]) apply(target T) error {
	return o.fn(target)
}

// New wraps a validating function as an Option. Use it for settings that can
// be rejected, such as an out-of-range limit.
func New[T any](fn func(T) error) Option[T] {
	return &optionFunc[T]{fn: fn}
}

// NoError wraps an infallible function as an Option.
func NoError[T any](fn func(T)) Option[T] {
	return &optionFunc[T]{
		fn: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order, returning the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
