package suppliers

import "encoding/json"

// supplierResponse is the wire form of a supplier. Products are rendered as
// a string such as "[102, 123]".
type supplierResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Products string  `json:"products"`
}

func toResponse(s Supplier) supplierResponse {
	return supplierResponse{
		ID:       s.ID,
		Name:     s.Name,
		Email:    s.Email,
		Address:  s.Address,
		Products: s.Products.String(),
	}
}

func toResponses(list []Supplier) []supplierResponse {
	out := make([]supplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toResponse(s))
	}
	return out
}

// addProductsRequest is the body of POST /suppliers/{id}/products.
type addProductsRequest struct {
	Products json.RawMessage `json:"products"`
}
