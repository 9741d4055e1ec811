package utils

// NewNullString is a helper for string pointers, returning nil if the string is empty.
// Useful for optional fields that should be NULL in the database when not provided.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
