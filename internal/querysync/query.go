// Package querysync mirrors filter criteria onto listing URLs and back.
package querysync

import (
	"net/url"
	"strings"

	"kaamkhojo-engine/internal/filter"
)

// Param is the canonical query parameter for each filter key. The short
// names are the ones shared links already carry.
var Param = map[filter.Key]string{
	filter.KeyKeyword:    "q",
	filter.KeyLocation:   "location",
	filter.KeyCategory:   "category",
	filter.KeyJobType:    "type",
	filter.KeyExperience: "experience",
	filter.KeySalary:     "salary",
}

// aliases are accepted on read and dropped on write.
var aliases = map[filter.Key][]string{
	filter.KeyKeyword: {"keyword"},
	filter.KeyJobType: {"jobType"},
}

// ParseQuery reads criteria from a raw query string. Absent keys and unknown
// enum values come back as sentinels. A malformed query yields the default
// criteria together with the parse error.
func ParseQuery(raw string) (filter.Criteria, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return filter.Default(), err
	}
	return FromValues(q), nil
}

// FromValues reads criteria from already decoded parameters.
func FromValues(q url.Values) filter.Criteria {
	c := filter.Default()
	for _, k := range filter.Keys {
		if v, ok := lookup(q, k); ok {
			c = c.With(k, v)
		}
	}
	return c
}

func lookup(q url.Values, k filter.Key) (string, bool) {
	if vs, ok := q[Param[k]]; ok && len(vs) > 0 {
		return vs[0], true
	}
	for _, a := range aliases[k] {
		if vs, ok := q[a]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

// Encode writes only the keys that constrain the result set.
func Encode(c filter.Criteria) url.Values {
	return ApplyChanges(url.Values{}, filter.Criteria{}, c)
}

// BuildURL renders path with the criteria as its query string.
func BuildURL(path string, c filter.Criteria) string {
	return withQuery(path, Encode(c))
}

// ApplyChanges returns a copy of q updated for every key whose value differs
// between prev and next. Falsy and sentinel values delete the parameter;
// parameters for untouched keys and unrelated parameters are preserved.
func ApplyChanges(q url.Values, prev, next filter.Criteria) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	for _, k := range prev.Changed(next) {
		name := Param[k]
		for _, a := range aliases[k] {
			out.Del(a)
		}
		v := strings.TrimSpace(next.Get(k))
		if filter.IsSentinel(v) {
			out.Del(name)
			continue
		}
		out.Set(name, v)
	}
	return out
}

func withQuery(path string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}
