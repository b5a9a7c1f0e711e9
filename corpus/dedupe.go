package corpus

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/ndisplan/ragserver/models"
)

// FileFingerprint identifies a file chunk by where it came from and what it
// says, so identical boilerplate in two documents survives as two records.
func FileFingerprint(path, text string) string {
	return sha1Hex(path + "::" + text)
}

// WebFingerprint identifies a web chunk by content alone; the same paragraph
// reachable under two URLs collapses to one record.
func WebFingerprint(text string) string {
	return sha1Hex(text)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Dedupe drops records whose fingerprint (or id, when no fingerprint was
// recorded) has already been seen, keeping the first occurrence. The seen set
// lives and dies with the call.
func Dedupe(records []models.Record) []models.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		key := rec.DedupeKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
