package validators

import "net/http"

// QueryString returns the cleaned ?key= value, or "" when absent.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}
