// Package validation wraps go-playground/validator with a process-wide
// instance and readable error messages.
//
// Both the configuration loader and the Nautobot store validate structs before
// using them. Besides the built-in rules, two custom tags are registered:
//   - color: six hex digits without a leading '#'
//   - slug: letters, digits, '-' and '_'
//
// # Usage
//
//	type Status struct {
//	    Name  string `validate:"required,max=100"`
//	    Color string `validate:"color"`
//	}
//
//	if err := validation.Struct(&s); err != nil {
//	    var verr *validation.Error
//	    errors.As(err, &verr) // verr.Fields lists each failed rule
//	}
package validation
