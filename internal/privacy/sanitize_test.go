package privacy

import (
	"strings"
	"testing"
)

func TestSanitizeForLogMasksPII(t *testing.T) {
	input := "내 메일은 sam@example.com 이고 전화는 +1 (555) 123-9876, 카드는 4242 4242 4242 4242."
	out := SanitizeForLog(input)
	for _, marker := range []string{"[redacted email]", "[redacted phone]", "[redacted card]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
	if strings.Contains(out, "example.com") {
		t.Fatalf("email leaked: %q", out)
	}
}

func TestSanitizeForLogElidesInlineImages(t *testing.T) {
	input := "사진 보여줘 data:image/jpeg;base64,AAAABBBBCCCCDDDD=="
	out := SanitizeForLog(input)
	if strings.Contains(out, "base64") {
		t.Fatalf("inline image payload leaked: %q", out)
	}
	if !strings.Contains(out, "[inline image]") {
		t.Fatalf("output missing elision marker: %q", out)
	}
}

func TestSanitizeForLogCapsLength(t *testing.T) {
	input := strings.Repeat("가", 500)
	out := SanitizeForLog(input)
	if got := len([]rune(out)); got > 201 {
		t.Fatalf("sanitized length = %d runes, want capped", got)
	}
	if !strings.HasSuffix(out, "…") {
		t.Fatalf("capped output should end with ellipsis: %q", out)
	}
}

func TestSanitizeForLogLeavesPlainTextAlone(t *testing.T) {
	input := "엄마 보고 싶어"
	if out := SanitizeForLog(input); out != input {
		t.Fatalf("plain text changed: %q", out)
	}
}
