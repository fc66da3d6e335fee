package core

import (
	"context"
	"iter"
)

// Executor performs one API call. Implementations return the parsed payload
// only when the transport succeeded and the embedded return code is zero;
// every other outcome is a classified *Error.
type Executor interface {
	Execute(ctx context.Context, req *Request) (Payload, error)
	// AuthHeaders returns the header set for authenticated calls, or an
	// authentication error when no token is held.
	AuthHeaders() (map[string]string, error)
}

// Call executes req and decodes the payload with schema.
func Call[T any](ctx context.Context, ex Executor, req *Request, schema Schema[T]) (T, error) {
	var zero T
	payload, err := ex.Execute(ctx, req)
	if err != nil {
		return zero, err
	}
	v, err := schema(payload)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Paginate returns a lazy sequence of the items of every page reachable from req.
// Each page's items are yielded before the next page is requested; the
// cursor of a page is sent as CTX_AREA_FK/CTX_AREA_NK on the next call.
// The sequence ends after the first page without a cursor, even an empty one.
// Every range over the sequence starts again from req; req is never modified.
func Paginate[T any](ctx context.Context, ex Executor, req *Request, item Schema[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		next := req.Clone()

		for {
			payload, err := ex.Execute(ctx, next)
			if err != nil {
				yield(zero, err)
				return
			}

			page, err := DecodePage(payload, item)
			if err != nil {
				yield(zero, err)
				return
			}

			for _, v := range page.Items {
				if !yield(v, nil) {
					return
				}
			}

			cursor, ok := page.Cursor.Get()
			if !ok {
				return
			}

			next = next.Clone()
			next.SetQuery(QueryContextKey, cursor.ContextKey)
			next.SetQuery(QueryNextKey, cursor.NextKey)
		}
	}
}
