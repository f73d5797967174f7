package httpapi

import (
	"encoding/base64"
	"net/http"
	"strings"

	"switchplane/internal/config"
)

// XMLCurlBasicAuth protects the switch-facing lookup endpoint with the
// static credential pair FreeSWITCH's mod_xml_curl config carries.
func XMLCurlBasicAuth(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Basic ") {
				w.Header().Set("WWW-Authenticate", `Basic realm="fsxml"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			payload, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
			parts := strings.SplitN(string(payload), ":", 2)
			if len(parts) != 2 || parts[0] != cfg.XMLCurlUser || parts[1] != cfg.XMLCurlPass {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
