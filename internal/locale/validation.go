package locale

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

// Validation error types
const (
	ErrTypeMissingTranslation  = "missing_translation"
	ErrTypeEmptyTranslation    = "empty_translation"
	ErrTypeUnusedKey           = "unused_key"
	ErrTypeDuplicateKey        = "duplicate_key"
	ErrTypePlaceholderMismatch = "placeholder_mismatch"
)

var placeholderPattern = regexp.MustCompile(`\{\{\.f\d+\}\}`)

// ValidationError represents a single problem found in the translation files
type ValidationError struct {
	Type    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// ValidationResult contains all validation errors found
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// OfType returns the errors of one type
func (r *ValidationResult) OfType(typ string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// String returns a formatted string of all errors
func (r *ValidationResult) String() string {
	if !r.HasErrors() {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d validation errors:\n", len(r.Errors)))
	for i, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

func (r *ValidationResult) add(typ, format string, args ...interface{}) {
	r.Errors = append(r.Errors, ValidationError{Type: typ, Message: fmt.Sprintf(format, args...)})
}

// ValidateTranslations checks keys.go against every bundled translation.
// It reads keys.go from source, so it is meant for tests and development.
func ValidateTranslations() (*ValidationResult, error) {
	_, filename, _, _ := runtime.Caller(0)
	messageKeys, err := extractMessageKeysFromFile(filepath.Join(filepath.Dir(filename), "keys.go"))
	if err != nil {
		return nil, fmt.Errorf("failed to extract message keys: %w", err)
	}

	translations := make(map[string]map[string]string, len(Languages))
	for _, lang := range Languages {
		name := fmt.Sprintf("locales/%s.json", lang)
		data, err := localizedata.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		var trans map[string]string
		if err := json.Unmarshal(data, &trans); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		translations[lang] = trans
	}

	return validate(messageKeys, translations), nil
}

func validate(messageKeys []string, translations map[string]map[string]string) *ValidationResult {
	result := &ValidationResult{}

	keySet := make(map[string]bool, len(messageKeys))
	for _, key := range messageKeys {
		if keySet[key] {
			result.add(ErrTypeDuplicateKey, "Duplicate key definition in keys.go: %s", key)
		}
		keySet[key] = true
	}

	for _, key := range messageKeys {
		var reference []string
		for i, lang := range Languages {
			value, ok := translations[lang][key]
			if !ok {
				result.add(ErrTypeMissingTranslation, "Missing %s translation for key: %s", lang, key)
				continue
			}
			if strings.TrimSpace(value) == "" {
				result.add(ErrTypeEmptyTranslation, "Empty %s translation for key: %s", lang, key)
			}
			found := placeholders(value)
			if i == 0 {
				reference = found
				continue
			}
			if strings.Join(found, ",") != strings.Join(reference, ",") {
				result.add(ErrTypePlaceholderMismatch, "Key %s uses %v in %s but %v in %s", key, found, lang, reference, Languages[0])
			}
		}
	}

	for _, lang := range Languages {
		for key := range translations[lang] {
			if !keySet[key] {
				result.add(ErrTypeUnusedKey, "Key %s exists in %s.json but not defined in keys.go", key, lang)
			}
		}
	}

	return result
}

// placeholders returns the distinct template fields of a message, sorted
func placeholders(message string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range placeholderPattern.FindAllString(message, -1) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// extractMessageKeysFromFile extracts all message key constants from keys.go
func extractMessageKeysFromFile(filename string) ([]string, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, decl := range node.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok || len(valueSpec.Values) == 0 {
				continue
			}
			if basicLit, ok := valueSpec.Values[0].(*ast.BasicLit); ok && basicLit.Kind == token.STRING {
				keys = append(keys, strings.Trim(basicLit.Value, "\"`"))
			}
		}
	}

	return keys, nil
}
