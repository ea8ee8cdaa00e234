package ovh

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"strings"
	"sync/atomic"
)

const childPlaceholder = "*"

type EnumerateOptions struct {
	// ParentQuery is appended to the parent URL, ChildQuery to every child URL.
	ParentQuery *QueryParams
	ChildQuery  *QueryParams

	// ChildURLFormat must contain exactly one "*", replaced by each identifier
	// returned by the parent call. Defaults to "<target>/*".
	ChildURLFormat string

	NoAuth bool
}

// Enumerate lists the identifiers under target and fetches each child resource.
// Nothing is sent until the sequence is ranged over: the parent GET runs first,
// then one GET per identifier as the sequence advances. Iteration stops at the
// first error. The sequence can be ranged over only once.
func (c *Client) Enumerate(ctx context.Context, target string, opts EnumerateOptions) (iter.Seq2[[]byte, error], error) {
	format := opts.ChildURLFormat
	if format == "" {
		format = target + "/" + childPlaceholder
	}
	switch n := strings.Count(format, childPlaceholder); {
	case n == 0:
		return nil, newError(KindInvalidArgument, "missing placeholder in child URL format "+format, nil)
	case n > 1:
		return nil, newError(KindInvalidArgument, "too many placeholders in child URL format "+format+", only one is allowed", nil)
	}

	parentOpts := []CallOption{WithQuery(opts.ParentQuery)}
	childOpts := []CallOption{WithQuery(opts.ChildQuery)}
	if opts.NoAuth {
		parentOpts = append(parentOpts, WithoutAuth())
		childOpts = append(childOpts, WithoutAuth())
	}

	var consumed atomic.Bool
	return func(yield func([]byte, error) bool) {
		if consumed.Swap(true) {
			yield(nil, newError(KindInvalidArgument, "enumeration of "+target+" already consumed", nil))
			return
		}

		raw, err := c.Call(ctx, http.MethodGet, target, nil, parentOpts...)
		if err != nil {
			yield(nil, err)
			return
		}
		ids, err := decodeIdentifiers(raw)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, id := range ids {
			child := strings.Replace(format, childPlaceholder, id, 1)
			body, err := c.Call(ctx, http.MethodGet, child, nil, childOpts...)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(body, nil) {
				return
			}
		}
	}, nil
}

// EnumerateJSON decodes every element of an Enumerate sequence into T.
func EnumerateJSON[T any](seq iter.Seq2[[]byte, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for raw, err := range seq {
			var v T
			if err == nil {
				err = decodeBody(raw, &v)
			}
			if err != nil {
				yield(v, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// decodeIdentifiers reads a JSON array of strings or numbers.
func decodeIdentifiers(raw []byte) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, newError(KindInvalidResponse, "expected a list of identifiers", err)
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			ids = append(ids, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return nil, newError(KindInvalidResponse, "unsupported identifier "+string(item), err)
		}
		ids = append(ids, n.String())
	}
	return ids, nil
}
