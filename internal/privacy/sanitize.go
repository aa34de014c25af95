package privacy

import "regexp"

var (
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern   = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern    = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	dataURLPattern = regexp.MustCompile(`data:[a-zA-Z0-9/+.\-]+;base64,[A-Za-z0-9+/=]+`)
)

const maxLogRunes = 200

// SanitizeForLog prepares user-supplied text for log lines: inline image
// payloads are elided, common PII patterns are masked, and the result is
// capped so a pasted transcript cannot flood the log.
func SanitizeForLog(input string) string {
	out := dataURLPattern.ReplaceAllString(input, "[inline image]")
	out = emailPattern.ReplaceAllString(out, "[redacted email]")

	// Card redaction runs before phone so card numbers are not matched
	// as phone numbers.
	out = cardPattern.ReplaceAllString(out, "[redacted card]")
	out = phonePattern.ReplaceAllString(out, "[redacted phone]")

	runes := []rune(out)
	if len(runes) > maxLogRunes {
		return string(runes[:maxLogRunes]) + "…"
	}
	return out
}
