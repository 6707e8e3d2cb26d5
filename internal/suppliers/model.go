package suppliers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"slices"
)

// Supplier represents a supplier entity. Values built through New, FromMap,
// Apply or WithProducts always satisfy the field rules and the contact-method
// invariant.
type Supplier struct {
	ID       int64      `db:"id" json:"id"`
	Name     string     `db:"name" json:"name"`
	Email    *string    `db:"email" json:"email"`
	Address  *string    `db:"address" json:"address"`
	Products ProductIDs `db:"products" json:"products"`
}

// New validates the attributes of a new supplier and returns it unpersisted.
func New(name string, email, address *string, products []int64) (*Supplier, error) {
	return build(0, name, email, address, products)
}

// build runs every check in order: name, email, address, product ids,
// normalization, contact methods.
func build(id int64, name string, email, address *string, products []int64) (*Supplier, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkProductIDs(products); err != nil {
		return nil, err
	}
	s := &Supplier{
		ID:       id,
		Name:     name,
		Email:    cloneString(email),
		Address:  cloneString(address),
		Products: NormalizeProducts(products),
	}
	if err := checkContactMethods(s.Email, s.Address); err != nil {
		return nil, err
	}
	return s, nil
}

// FromMap builds a new supplier from a decoded JSON object. A non-null id is
// rejected since ids are assigned by the store.
func FromMap(data any) (*Supplier, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, newError(CodeWrongArgType, "object expected for supplier data, got %s", typeName(data))
	}
	if id, ok := m["id"]; ok && id != nil {
		return nil, newError(CodeUserDefinedID, "user cannot set the value of id")
	}
	rawName, hasName := m["name"]
	name, err := nameFrom(rawName, hasName)
	if err != nil {
		return nil, err
	}
	email, err := emailFrom(m["email"])
	if err != nil {
		return nil, err
	}
	address, err := addressFrom(m["address"])
	if err != nil {
		return nil, err
	}
	products, err := productIDsFrom(m["products"])
	if err != nil {
		return nil, err
	}
	return build(0, name, email, address, products)
}

// Deserialize builds a new supplier from a JSON document.
func Deserialize(data []byte) (*Supplier, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return FromMap(v)
}

// Serialize returns the supplier as a map keyed by field name. An unsaved
// supplier has a null id so the map deserializes back into a new supplier.
func (s *Supplier) Serialize() map[string]any {
	var id any
	if s.ID != 0 {
		id = s.ID
	}
	return map[string]any{
		"id":       id,
		"name":     s.Name,
		"email":    stringOrNil(s.Email),
		"address":  stringOrNil(s.Address),
		"products": s.Products.values(),
	}
}

// SerializeJSON encodes Serialize as indented JSON.
func (s *Supplier) SerializeJSON() ([]byte, error) {
	return json.MarshalIndent(s.Serialize(), "", "    ")
}

// Equal compares every field including ID.
func (s *Supplier) Equal(other *Supplier) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.ID == other.ID &&
		s.Name == other.Name &&
		equalString(s.Email, other.Email) &&
		equalString(s.Address, other.Address) &&
		slices.Equal(s.Products, other.Products)
}

// Patch is a partial update. A nil or empty field leaves the current value in place.
type Patch struct {
	Name     *string
	Email    *string
	Address  *string
	Products ProductIDs
}

// PatchFromMap converts a decoded JSON object into a Patch, type-checking each
// supplied field. An "id" key is ignored.
func PatchFromMap(data any) (Patch, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return Patch{}, newError(CodeWrongArgType, "object expected for supplier data, got %s", typeName(data))
	}
	var p Patch
	var err error
	if p.Name, err = optionalString("supplier name", m["name"]); err != nil {
		return Patch{}, err
	}
	if p.Email, err = optionalString("email", m["email"]); err != nil {
		return Patch{}, err
	}
	if p.Address, err = optionalString("address", m["address"]); err != nil {
		return Patch{}, err
	}
	if s, ok := m["products"].(string); ok && s == "" {
		return p, nil
	}
	ids, err := productsFromValue(m["products"])
	if err != nil {
		return Patch{}, err
	}
	if ids != nil {
		p.Products = ProductIDs(ids)
	}
	return p, nil
}

// DecodePatch decodes a JSON document into a Patch.
func DecodePatch(data []byte) (Patch, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return Patch{}, err
	}
	return PatchFromMap(v)
}

// Apply returns a copy of s with the non-empty fields of p written over it,
// re-validated exactly as at construction. s is never modified.
func (s *Supplier) Apply(p Patch) (*Supplier, error) {
	name := s.Name
	if p.Name != nil && *p.Name != "" {
		name = *p.Name
	}
	email := s.Email
	if p.Email != nil && *p.Email != "" {
		email = p.Email
	}
	address := s.Address
	if p.Address != nil && *p.Address != "" {
		address = p.Address
	}
	products := []int64(s.Products)
	if len(p.Products) > 0 {
		products = p.Products
	}
	return build(s.ID, name, email, address, products)
}

// WithProducts returns a copy of s with ids appended to its product set.
// Any id already present fails the whole call with DuplicateProduct.
func (s *Supplier) WithProducts(ids []int64) (*Supplier, error) {
	if err := checkProductIDs(ids); err != nil {
		return nil, err
	}
	if dup := s.Products.Intersect(ids); len(dup) > 0 {
		return nil, newError(CodeDuplicateProduct, "duplicated products: %s", dup)
	}
	return s.Apply(Patch{Products: s.Products.Union(ids)})
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newError(CodeWrongArgType, "object expected for supplier data, got empty body")
		}
		return nil, newError(CodeInvalidFormat, "malformed JSON body: %v", err)
	}
	if dec.More() {
		return nil, newError(CodeInvalidFormat, "malformed JSON body: trailing data")
	}
	return v, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

