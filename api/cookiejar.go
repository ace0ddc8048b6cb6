package api

import (
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// NewCookieJar returns an in-memory jar using the public suffix list, so a
// refresh cookie set by api.example.com is sent back to it on reissue.
func NewCookieJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails with non-nil options.
		panic(err)
	}
	return jar
}
