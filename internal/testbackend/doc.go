// Package testbackend is an in-process stand-in for the marketplace backend.
//
// It implements the endpoints the session layer talks to (sign-in, reissue
// through an HttpOnly refresh cookie, logout, profile and nickname) plus a
// few marketplace endpoints, and records every call so tests can assert on
// network traffic. It is used by package tests, the example program and the
// load tester.
package testbackend
