package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	TagDatabaseName   = "dbname"   // MongoDB database name
	TagCollectionName = "collname" // MongoDB collection name
)

const (
	// maxDatabaseNameBytes is the server limit on database name length.
	maxDatabaseNameBytes = 63
	// invalidDatabaseChars may not appear in a database name on any platform.
	invalidDatabaseChars = "/\\. \"$*<>:|?\x00"
)

// registerCustomRules registers all custom validation rules.
func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagDatabaseName, validateDatabaseName)
	_ = v.validate.RegisterValidation(TagCollectionName, validateCollectionName)
}

// validateDatabaseName validates MongoDB database names.
func validateDatabaseName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	return IsDatabaseName(value)
}

// validateCollectionName validates MongoDB collection names.
func validateCollectionName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return IsCollectionName(value)
}

// IsDatabaseName reports whether name is accepted by the server as a
// database name.
func IsDatabaseName(name string) bool {
	if name == "" || len(name) > maxDatabaseNameBytes {
		return false
	}
	return !strings.ContainsAny(name, invalidDatabaseChars)
}

// IsCollectionName reports whether name can be used for a user collection.
func IsCollectionName(name string) bool {
	if name == "" || strings.TrimSpace(name) == "" {
		return false
	}
	if strings.ContainsAny(name, "$\x00") {
		return false
	}
	return !strings.HasPrefix(name, "system.")
}
