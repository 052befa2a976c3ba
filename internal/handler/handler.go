// Package handler is the first layer after the router.
//
// It binds requests, validates them with the validation package, and
// calls into repositories and services. Every typed endpoint runs through
// one pipeline (base.go) that owns logging and tracing.
package handler
