package twofactor

import (
	"regexp"
	"testing"
)

func TestGenerateBackupCodes(t *testing.T) {
	codes := generateBackupCodes(10, 8)
	if len(codes) != 10 {
		t.Fatalf("expected 10 codes, got %d", len(codes))
	}
	shape := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := make(map[string]bool)
	for _, code := range codes {
		if !shape.MatchString(code) {
			t.Fatalf("code %q is not 8 uppercase alphanumeric characters", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q in a single batch", code)
		}
		seen[code] = true
	}
}

func TestConsumeBackupCodeMatch(t *testing.T) {
	codes := []string{"AAAA1111", "BBBB2222", "CCCC3333"}
	matched, remaining := consumeBackupCode(codes, "BBBB2222")
	if !matched {
		t.Fatalf("expected match")
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 remaining codes, got %d", len(remaining))
	}
	for _, code := range remaining {
		if code == "BBBB2222" {
			t.Fatalf("consumed code still present in remaining list")
		}
	}
}

func TestConsumeBackupCodeCaseInsensitive(t *testing.T) {
	codes := []string{"AAAA1111"}
	matched, remaining := consumeBackupCode(codes, " aaaa1111 ")
	if !matched {
		t.Fatalf("expected case-insensitive match")
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty remaining list, got %v", remaining)
	}
}

func TestConsumeBackupCodeMiss(t *testing.T) {
	codes := []string{"AAAA1111", "BBBB2222"}
	matched, remaining := consumeBackupCode(codes, "ZZZZ9999")
	if matched {
		t.Fatalf("expected no match")
	}
	if len(remaining) != len(codes) {
		t.Fatalf("remaining list changed on a miss: %v", remaining)
	}
}
