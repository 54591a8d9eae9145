package middleware

import (
	"net/http"
	"strings"
)

var overridableMethods = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride lets HTML forms reach PUT and DELETE routes: a POST with a
// _method query parameter or form field is dispatched with that method.
// It wraps the router because gin matches routes before running middleware.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			// ParseForm only reads the body of POST/PUT/PATCH, so parse it
			// before the method changes.
			if err := r.ParseForm(); err == nil {
				if m := strings.ToUpper(r.Form.Get("_method")); overridableMethods[m] {
					r.Method = m
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
