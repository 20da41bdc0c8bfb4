package gateway

import (
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// Violation is a single structural validation failure. Violations are
// collected in field declaration order and forwarded to the caller verbatim
// in 400 responses.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Validator performs structural validation of request bodies. It runs
// before any identity or ownership check and never contacts the backend.
type Validator struct {
	v *validator.Validate
}

// NewValidator constructs a Validator using JSON tag names for reporting.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// violationMessages maps request struct fields to caller-facing messages.
var violationMessages = map[string]string{
	"processRequest.OrderID": "Order ID must be a positive integer",
	"processRequest.Amount":  "Amount must be a positive number",
	"refundRequest.Amount":   "Amount must be a positive number",
}

// Check validates req and returns the ordered violation list, empty when valid.
func (val *Validator) Check(req any) []Violation {
	err := val.v.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Violation{{Message: "request body is invalid"}}
	}
	out := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := violationMessages[fe.StructNamespace()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out = append(out, Violation{Field: fe.Field(), Message: msg})
	}
	return out
}
