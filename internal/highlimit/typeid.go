package highlimit

import "strings"

// TypeIDPrefix prefixes the inner type id of a two-level map.
const TypeIDPrefix = "highlimit-"

// TypeID returns the type id of a two-level map wrapping innerTypeID.
func TypeID(innerTypeID string) string {
	return TypeIDPrefix + innerTypeID
}

// IsHighLimitTypeID reports whether typeID describes a two-level map.
func IsHighLimitTypeID(typeID string) bool {
	return strings.HasPrefix(typeID, TypeIDPrefix) && len(typeID) > len(TypeIDPrefix)
}

// InnerTypeID returns the inner type id of a two-level map's type id.
func InnerTypeID(typeID string) (string, bool) {
	if !IsHighLimitTypeID(typeID) {
		return "", false
	}
	return typeID[len(TypeIDPrefix):], true
}
