package suppliers

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Filter selects suppliers by exact equality on every non-nil field.
// A Filter with no fields set matches every supplier.
type Filter struct {
	ID       *int64
	Name     *string
	Email    *string
	Address  *string
	Products ProductIDs
}

// ByID returns a Filter matching a single id.
func ByID(id int64) Filter {
	return Filter{ID: &id}
}

// IsEmpty reports whether no field is set.
func (f Filter) IsEmpty() bool {
	return f.ID == nil && f.Name == nil && f.Email == nil && f.Address == nil && f.Products == nil
}

// normalized sorts the product set so the order of requested ids never matters.
func (f Filter) normalized() Filter {
	if f.Products != nil {
		f.Products = NormalizeProducts(f.Products)
	}
	return f
}

// where translates the filter into squirrel predicates in a stable order.
func (f Filter) where() []squirrel.Sqlizer {
	var preds []squirrel.Sqlizer
	if f.ID != nil {
		preds = append(preds, squirrel.Eq{"id": *f.ID})
	}
	if f.Name != nil {
		preds = append(preds, squirrel.Eq{"name": *f.Name})
	}
	if f.Email != nil {
		preds = append(preds, squirrel.Eq{"email": *f.Email})
	}
	if f.Address != nil {
		preds = append(preds, squirrel.Eq{"address": *f.Address})
	}
	if f.Products != nil {
		// squirrel.Eq would expand a slice into IN (...), the column holds an array.
		preds = append(preds, squirrel.Expr("products = ?::bigint[]", f.Products.values()))
	}
	return preds
}

// cacheKey is a canonical encoding of the filter; url.Values sorts by key.
func (f Filter) cacheKey() string {
	if f.IsEmpty() {
		return "all"
	}
	v := url.Values{}
	if f.ID != nil {
		v.Set("id", strconv.FormatInt(*f.ID, 10))
	}
	if f.Name != nil {
		v.Set("name", *f.Name)
	}
	if f.Email != nil {
		v.Set("email", *f.Email)
	}
	if f.Address != nil {
		v.Set("address", *f.Address)
	}
	if f.Products != nil {
		v.Set("products", strings.Trim(f.Products.String(), "[]"))
	}
	return v.Encode()
}

// matches evaluates the filter in memory.
func (f Filter) matches(s Supplier) bool {
	if f.ID != nil && s.ID != *f.ID {
		return false
	}
	if f.Name != nil && s.Name != *f.Name {
		return false
	}
	if f.Email != nil && (s.Email == nil || *s.Email != *f.Email) {
		return false
	}
	if f.Address != nil && (s.Address == nil || *s.Address != *f.Address) {
		return false
	}
	if f.Products != nil && !slices.Equal(f.Products, s.Products) {
		return false
	}
	return true
}

// FilterFromQuery reads id, name, email, address and products from query
// parameters. Other keys are ignored and an empty value counts as absent.
func FilterFromQuery(q url.Values) (Filter, error) {
	var f Filter
	if raw := q.Get("id"); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Filter{}, newError(CodeWrongArgType, "integer expected for id, got %q", raw)
		}
		f.ID = &id
	}
	if raw := q.Get("name"); raw != "" {
		f.Name = &raw
	}
	if raw := q.Get("email"); raw != "" {
		f.Email = &raw
	}
	if raw := q.Get("address"); raw != "" {
		f.Address = &raw
	}
	if raw := q.Get("products"); raw != "" {
		ids, err := ParseProductList(raw)
		if err != nil {
			return Filter{}, err
		}
		f.Products = ProductIDs(ids)
	}
	return f.normalized(), nil
}
