// Package manifest extracts project identity from the project manifest using
// line-oriented key/value matching. It is deliberately not a structured
// configuration parser: only top-level `key = value` lines are recognized, no
// escaping or multi-line values, and a matching key inside a comment or a
// value containing " = " is out of contract.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	buildpreperrors "git.home.luguber.info/inful/buildprep/internal/errors"
)

// ProjectMetadata holds the two required identity fields.
type ProjectMetadata struct {
	Name    string
	Version string
}

// NotFoundError reports a required field absent from the manifest.
type NotFoundError struct {
	Field string
	Path  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("field %q not found in %s", e.Field, e.Path)
}

// ExtractField scans the manifest for the first trimmed line starting with
// the literal prefix `fieldName + " = "` and returns its value with one
// surrounding layer of double or single quotes stripped.
func ExtractField(manifestPath, fieldName string) (string, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return "", buildpreperrors.ManifestUnreadable(manifestPath, err)
	}
	defer file.Close()

	prefix := fieldName + " = "
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		return stripQuotes(value), nil
	}
	if err := scanner.Err(); err != nil {
		return "", buildpreperrors.ManifestUnreadable(manifestPath, err)
	}
	return "", &NotFoundError{Field: fieldName, Path: manifestPath}
}

// stripQuotes removes one surrounding layer of matching double or single quotes.
func stripQuotes(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// Extract reads the name and version fields from the manifest. Either field
// missing is fatal and the error names the missing field.
func Extract(manifestPath, nameField, versionField string) (ProjectMetadata, error) {
	name, err := ExtractField(manifestPath, nameField)
	if err != nil {
		return ProjectMetadata{}, wrapMissing(err, nameField, manifestPath)
	}
	version, err := ExtractField(manifestPath, versionField)
	if err != nil {
		return ProjectMetadata{}, wrapMissing(err, versionField, manifestPath)
	}
	return ProjectMetadata{Name: name, Version: version}, nil
}

func wrapMissing(err error, field, path string) error {
	if _, ok := err.(*NotFoundError); ok {
		return buildpreperrors.ManifestFieldMissing(field, path)
	}
	return err
}
