package data

// PayloadString extracts a string field from an event payload, returning ""
// when the field is missing or not a string. Routers rely on this to degrade
// gracefully instead of panicking on malformed payloads.
func PayloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// PayloadInt extracts a numeric field from an event payload. JSON numbers
// decode as float64; anything else yields (0, false).
func PayloadInt(payload map[string]any, key string) (int, bool) {
	if payload == nil {
		return 0, false
	}
	switch v := payload[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
