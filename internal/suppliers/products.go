package suppliers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Product ids live in the open interval (0, 1e15).
const maxProductID int64 = 1_000_000_000_000_000

// ProductIDs is the canonical product set of a supplier: ascending, no duplicates.
type ProductIDs []int64

// NormalizeProducts returns ids sorted ascending with duplicates removed.
// The input slice is left untouched. The result is never nil.
func NormalizeProducts(ids []int64) ProductIDs {
	out := make(ProductIDs, len(ids))
	copy(out, ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Contains reports whether id is part of the set.
func (p ProductIDs) Contains(id int64) bool {
	_, ok := slices.BinarySearch(p, id)
	return ok
}

// Intersect returns the members of ids already present in p, sorted and unique.
func (p ProductIDs) Intersect(ids []int64) ProductIDs {
	var dup []int64
	for _, id := range ids {
		if p.Contains(id) {
			dup = append(dup, id)
		}
	}
	if len(dup) == 0 {
		return nil
	}
	return NormalizeProducts(dup)
}

// Union returns the normalized union of p and ids.
func (p ProductIDs) Union(ids []int64) ProductIDs {
	merged := make([]int64, 0, len(p)+len(ids))
	merged = append(merged, p...)
	merged = append(merged, ids...)
	return NormalizeProducts(merged)
}

// String renders the set in wire format, e.g. "[102, 123]".
func (p ProductIDs) String() string {
	return FormatProductList(p)
}

// values never returns nil so the column is written as '{}' rather than NULL.
func (p ProductIDs) values() []int64 {
	if p == nil {
		return []int64{}
	}
	return []int64(p)
}

// FormatProductList renders ids as a bracketed, comma-space joined list.
func FormatProductList(ids []int64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseProductList parses the comma-delimited encoding "102,123".
func ParseProductList(s string) ([]int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, newError(CodeInvalidFormat, "products cannot be parsed: %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func checkProductID(id int64) error {
	if id <= 0 || id >= maxProductID {
		return newError(CodeOutOfRange, "product id is not within range (0, 1e15), got %d", id)
	}
	return nil
}

func checkProductIDs(ids []int64) error {
	for _, id := range ids {
		if err := checkProductID(id); err != nil {
			return err
		}
	}
	return nil
}

// productsFromValue converts a decoded JSON value into product ids.
// nil yields nil; a string goes through ParseProductList; an array must hold integers.
func productsFromValue(v any) ([]int64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return ParseProductList(t)
	case []any:
		ids := make([]int64, 0, len(t))
		for _, item := range t {
			id, ok := toInt64(item)
			if !ok && overflowsInt64(item) {
				return nil, newError(CodeOutOfRange, "product id is not within range (0, 1e15), got %s", item)
			}
			if !ok {
				return nil, newError(CodeWrongArgType, "integer expected for product id, got %s", typeName(item))
			}
			ids = append(ids, id)
		}
		return ids, nil
	case []int64:
		return slices.Clone(t), nil
	case []int:
		ids := make([]int64, len(t))
		for i, id := range t {
			ids[i] = int64(id)
		}
		return ids, nil
	default:
		return nil, newError(CodeWrongArgType, "list expected for product ids, got %s", typeName(v))
	}
}

// toInt64 accepts json.Number and Go integer kinds. float64 is accepted only
// when integral so maps decoded without UseNumber still work.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > 1<<53 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// overflowsInt64 reports whether v is a JSON integer literal too large for int64.
func overflowsInt64(v any) bool {
	n, ok := v.(json.Number)
	if !ok {
		return false
	}
	_, err := strconv.ParseInt(string(n), 10, 64)
	return errors.Is(err, strconv.ErrRange)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int32, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
