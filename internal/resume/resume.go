// Package resume loads candidate documents (resume and job description)
// from plain text files.
package resume

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// maxFileSize bounds document reads. Anything larger than this is not a
// resume or a job description.
const maxFileSize = 1 << 20

// Load reads a document from file and returns its trimmed text.
func Load(name, file string) (string, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return "", fmt.Errorf("%s file is not configured", name)
	}

	info, err := os.Stat(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	if info.Size() > maxFileSize {
		return "", fmt.Errorf("reading %s: file %s is larger than %d bytes", name, file, maxFileSize)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s file %s is empty", name, file)
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%s file %s is not valid utf-8 text (pdf and doc formats are not supported)", name, file)
	}

	return text, nil
}

// ErrTooShort is returned by Validate for documents too short to analyze.
var ErrTooShort = errors.New("document is too short to analyze")

// minDocumentRunes is the shortest document worth sending for analysis.
const minDocumentRunes = 40

// Validate rejects documents that are technically readable but useless
// for profile analysis.
func Validate(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minDocumentRunes {
		return ErrTooShort
	}
	return nil
}
