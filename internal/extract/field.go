// Package extract holds the shared extraction contract used by every site:
// locate an anchor in a document, read the value, row or list next to it, and
// report absence explicitly so record builders can substitute sentinels.
package extract

// Field is a value that may be absent from the page it was read from.
type Field[T any] struct {
	value T
	ok    bool
}

// Found wraps a value that was located.
func Found[T any](v T) Field[T] { return Field[T]{value: v, ok: true} }

// Missing reports that a value could not be located or parsed.
func Missing[T any]() Field[T] { return Field[T]{} }

func (f Field[T]) Get() (T, bool) { return f.value, f.ok }

func (f Field[T]) OK() bool { return f.ok }

// Or returns the value when present and def otherwise.
func (f Field[T]) Or(def T) T {
	if !f.ok {
		return def
	}
	return f.value
}

// Then converts a present value with fn. A conversion that fails yields a miss.
func Then[T, U any](f Field[T], fn func(T) (U, bool)) Field[U] {
	v, ok := f.Get()
	if !ok {
		return Missing[U]()
	}
	u, ok := fn(v)
	if !ok {
		return Missing[U]()
	}
	return Found(u)
}

// First returns the first present field.
func First[T any](fields ...Field[T]) Field[T] {
	for _, f := range fields {
		if f.ok {
			return f
		}
	}
	return Missing[T]()
}
