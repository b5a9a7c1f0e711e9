package vectorstore

import "regexp"

var documentKeyRe = regexp.MustCompile(`[^A-Za-z0-9_\-=]`)

// SanitizeDocumentKey maps an arbitrary record id onto the index's key
// alphabet: anything outside [A-Za-z0-9_-=] becomes "_", the result is capped
// at 512 characters and never empty. Applying it twice changes nothing, so
// already-sanitised ids pass through untouched.
func SanitizeDocumentKey(id string) string {
	sanitized := documentKeyRe.ReplaceAllString(id, "_")
	if len(sanitized) > 512 {
		sanitized = sanitized[:512]
	}
	if sanitized == "" {
		return "missing_id"
	}
	return sanitized
}
