package ovh

import (
	"net/url"
	"strings"
)

// QueryParams is an ordered set of query string parameters. The API does not
// accept a key more than once.
type QueryParams struct {
	keys   []string
	values []string
}

// Add appends key=value. Adding a key that is already present fails with
// KindInvalidArgument and leaves the set unchanged.
func (q *QueryParams) Add(key, value string) error {
	for _, k := range q.keys {
		if k == key {
			return newError(KindInvalidArgument, "duplicate query parameter "+key+": repeated keys are not supported by the API", nil)
		}
	}
	q.keys = append(q.keys, key)
	q.values = append(q.values, value)
	return nil
}

func (q *QueryParams) Len() int {
	if q == nil {
		return 0
	}
	return len(q.keys)
}

// Encode renders "?k1=v1&k2=v2" with every key and value escaped on its own.
// An empty or nil set encodes to "".
func (q *QueryParams) Encode() string {
	if q.Len() == 0 {
		return ""
	}
	sb := strings.Builder{}
	sb.WriteByte('?')
	for i, k := range q.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(q.values[i]))
	}
	return sb.String()
}
