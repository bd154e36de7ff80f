package database

import "regexp"

var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// InvalidIdentifierError is returned when a table or column name from
// configuration contains characters outside [A-Za-z0-9_].
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}

// ValidateIdentifier rejects names that cannot be safely interpolated into SQL.
func ValidateIdentifier(names ...string) error {
	for _, name := range names {
		if !validIdentifier.MatchString(name) {
			return &InvalidIdentifierError{Name: name}
		}
	}
	return nil
}
