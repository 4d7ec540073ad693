// Package validator checks tagged structs: module settings at startup and
// credential input on each login attempt.
//
// Callers depend on the Validator interface; V10Validator is the
// go-playground/validator implementation and registers the custom "realm"
// and "phone" tags.
package validator
