package container

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Attr is one typed attribute
type Attr struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Attrs is an ordered attribute list
type Attrs []Attr

// StringAttrs builds Attrs from name/value string pairs
func StringAttrs(pairs ...string) Attrs {
	attrs := make(Attrs, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		attrs = append(attrs, Attr{Name: pairs[i], Value: pairs[i+1]})
	}
	return attrs
}

// Get returns the value of the named attribute
func (a Attrs) Get(name string) (interface{}, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return nil, false
}

// String returns the named attribute formatted for display, or "" if absent
func (a Attrs) String(name string) string {
	v, ok := a.Get(name)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Sorted returns a copy ordered by attribute name
func (a Attrs) Sorted() Attrs {
	out := make(Attrs, len(a))
	copy(out, a)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Format joins the attributes as "Name: value, Name: value"
func (a Attrs) Format() string {
	parts := make([]string, 0, len(a))
	for _, attr := range a {
		parts = append(parts, attr.Name+": "+FormatValue(attr.Value))
	}
	return strings.Join(parts, ", ")
}

// FormatValue renders an attribute value of any type as text.
// Slices render as [a,b,c]; nil renders as an empty string.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return strings.TrimRight(string(x), "\x00")
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	}

	return fmt.Sprint(v)
}
