package auditlog

import (
	"encoding/json"
	"strings"
)

// sensitiveKeys are step input fields whose values are redacted before
// audit storage. Matching is case-insensitive.
var sensitiveKeys = map[string]struct{}{
	"token":        {},
	"accesstoken":  {},
	"refreshtoken": {},
	"password":     {},
	"apikey":       {},
	"secret":       {},
	"clientsecret": {},
}

// SanitizeInput renders a step's input as JSON with sensitive values
// redacted. It never fails: unmarshalable input degrades to an empty
// object so the audit write itself cannot be blocked.
func SanitizeInput(input map[string]any) string {
	cleaned := make(map[string]any, len(input))
	for key, value := range input {
		if _, ok := sensitiveKeys[strings.ToLower(key)]; ok {
			cleaned[key] = "<redacted>"
			continue
		}
		cleaned[key] = value
	}

	data, err := json.Marshal(cleaned)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// MarshalOutput renders a tool result for audit storage, degrading to
// empty on encoding failure.
func MarshalOutput(output any) string {
	if output == nil {
		return ""
	}
	data, err := json.Marshal(output)
	if err != nil {
		return ""
	}
	return string(data)
}
