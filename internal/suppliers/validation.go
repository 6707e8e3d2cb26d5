package suppliers

import "regexp"

var emailPattern = regexp.MustCompile(`^\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b$`)

func checkName(name string) error {
	if name == "" {
		return newError(CodeMissingInfo, "supplier name is required")
	}
	return nil
}

func checkEmail(email *string) error {
	if email == nil || *email == "" {
		return nil
	}
	if !emailPattern.MatchString(*email) {
		return newError(CodeInvalidFormat, "wrong email format: %q", *email)
	}
	return nil
}

func checkContactMethods(email, address *string) error {
	if blank(email) && blank(address) {
		return newError(CodeMissingInfo, "at least one contact method (email or address) is required")
	}
	return nil
}

func blank(s *string) bool {
	return s == nil || *s == ""
}

// Decoders for loosely typed payload values. Each one performs the type check
// and the value check of its field so errors surface in field order.

func nameFrom(v any, present bool) (string, error) {
	if !present || v == nil {
		return "", newError(CodeMissingInfo, "supplier name is required")
	}
	name, ok := v.(string)
	if !ok {
		return "", newError(CodeWrongArgType, "string expected for supplier name, got %s", typeName(v))
	}
	return name, checkName(name)
}

func emailFrom(v any) (*string, error) {
	s, err := optionalString("email", v)
	if err != nil {
		return nil, err
	}
	return s, checkEmail(s)
}

func addressFrom(v any) (*string, error) {
	return optionalString("address", v)
}

func productIDsFrom(v any) ([]int64, error) {
	ids, err := productsFromValue(v)
	if err != nil {
		return nil, err
	}
	return ids, checkProductIDs(ids)
}

func optionalString(field string, v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, newError(CodeWrongArgType, "string expected for %s, got %s", field, typeName(v))
	}
	return &s, nil
}
