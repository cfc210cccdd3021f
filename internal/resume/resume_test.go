package resume

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	return path
}

func TestLoadTrimsContent(t *testing.T) {
	path := writeTemp(t, "\n  Senior Go developer, 8 years of experience.  \n")

	text, err := Load("resume", path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if text != "Senior Go developer, 8 years of experience." {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("resume", filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("job description", "   ")
	if err == nil {
		t.Fatal("expected an error for an empty path")
	}
	if !strings.Contains(err.Error(), "job description") {
		t.Errorf("error should name the document: %v", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTemp(t, "   \n\t ")

	if _, err := Load("resume", path); err == nil {
		t.Fatal("expected an error for an empty file")
	}
}

func TestLoadRejectsBinary(t *testing.T) {
	path := writeTemp(t, "%PDF-1.4\xff\xfe\x00 binary")

	if _, err := Load("resume", path); err == nil {
		t.Fatal("expected an error for non-utf8 content")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("too short"); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}

	long := strings.Repeat("Experienced engineer. ", 5)
	if err := Validate(long); err != nil {
		t.Errorf("expected long document to validate, got %v", err)
	}
}
