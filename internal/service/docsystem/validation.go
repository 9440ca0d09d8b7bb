package docsystem

import (
	"strings"

	"portal/internal/config"
	"portal/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// validateFolderName checks a trimmed folder name
func validateFolderName(name string) error {
	return validateField("name", name,
		validation.Required.Error("folder name cannot be empty"),
		validation.RuneLength(1, config.MaxFolderNameLength),
	)
}

// validateDocumentTitle checks a trimmed document title
func validateDocumentTitle(title string) error {
	return validateField("title", title,
		validation.Required.Error("document title cannot be empty"),
		validation.RuneLength(1, config.MaxDocumentTitleLength),
	)
}

func validateOriginalName(name string) error {
	return validateField("original_name", name,
		validation.Required.Error("original file name is required"),
		validation.RuneLength(1, config.MaxOriginalNameLength),
	)
}

// validateField runs ozzo rules and converts the failure into a ValidationError
func validateField(field, value string, rules ...validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return domain.NewValidation("%s: %v", field, err)
	}
	return nil
}

// normalizeID treats nil, "" and whitespace as "no reference" (root / unfiled)
func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func equalID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
