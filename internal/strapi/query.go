package strapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filter operators understood by the backend.
const (
	OpEq        = "$eq"
	OpContainsI = "$containsi"
	OpIn        = "$in"
)

// Filter is one filters[...] clause. Field is a dotted path, so
// "division.id" encodes as filters[division][id][$eq].
type Filter struct {
	Field  string
	Op     string
	Values []string
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Values: []string{fmt.Sprint(value)}}
}

func ContainsI(field, value string) Filter {
	return Filter{Field: field, Op: OpContainsI, Values: []string{value}}
}

func In(field string, values ...string) Filter {
	return Filter{Field: field, Op: OpIn, Values: values}
}

// Query describes a collection read: filters, pagination and populate paths.
// Populate paths are dotted too: "nvr_selection.nvr" encodes as
// populate[nvr_selection][populate][nvr]=true.
type Query struct {
	Filters  []Filter
	Page     int
	PageSize int
	Populate []string
	Sort     []string
}

// Values renders the query as url.Values.
func (q Query) Values() url.Values {
	v := url.Values{}

	for _, f := range q.Filters {
		key := "filters" + bracketPath(strings.Split(f.Field, ".")) + "[" + f.Op + "]"
		if f.Op == OpIn {
			for i, val := range f.Values {
				v.Add(key+"["+strconv.Itoa(i)+"]", val)
			}
			continue
		}
		for _, val := range f.Values {
			v.Add(key, val)
		}
	}

	if q.Page > 0 {
		v.Set("pagination[page]", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pagination[pageSize]", strconv.Itoa(q.PageSize))
	}

	for _, p := range q.Populate {
		parts := strings.Split(p, ".")
		key := "populate[" + parts[0] + "]"
		for _, part := range parts[1:] {
			key += "[populate][" + part + "]"
		}
		v.Set(key, "true")
	}

	for i, s := range q.Sort {
		v.Set("sort["+strconv.Itoa(i)+"]", s)
	}

	return v
}

// Encode renders the query string (keys sorted, so output is stable).
func (q Query) Encode() string {
	return q.Values().Encode()
}

func bracketPath(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("[")
		b.WriteString(p)
		b.WriteString("]")
	}
	return b.String()
}
