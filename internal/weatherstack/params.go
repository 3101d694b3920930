package weatherstack

import (
	"net/url"
	"strings"
)

// Param is a single request parameter. Params preserve insertion order:
// cache keys are built from the exact order the caller appended in, so the
// same logical parameter set in a different order is a different cache key.
// Callers are expected to append parameters in a fixed order.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list.
type Params []Param

// Append adds a parameter and returns the extended list.
func (p Params) Append(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// AppendOpt adds a parameter only when value is non-nil.
func (p Params) AppendOpt(key string, value *string) Params {
	if value == nil {
		return p
	}
	return append(p, Param{Key: key, Value: *value})
}

// CacheKey builds the deterministic cache key for an endpoint and its
// parameters: "{endpoint}-{k=v&k2=v2...}" with raw (unencoded) values in
// insertion order.
func CacheKey(endpoint string, params Params) string {
	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('-')
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// QueryString renders the parameters as a URL-encoded query string in
// insertion order.
func QueryString(params Params) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
