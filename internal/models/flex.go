package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexTime accepts the two date encodings used by upstream systems:
// Unix seconds (LMS exports) and ISO-8601 strings (locally owned rows).
type FlexTime struct {
	time.Time
}

// UnmarshalJSON decodes either a numeric Unix timestamp or a date string.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if raw[0] != '"' {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parse unix timestamp %q: %w", raw, err)
		}
		t.Time = time.Unix(secs, 0)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported date value %q", s)
}

// MarshalJSON emits RFC3339 to keep the outbound contract canonical.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// StatusValue accepts the two enum encodings used by upstream serializers:
// a bare string or an object wrapping the string under "value".
type StatusValue string

// UnmarshalJSON unwraps {"value": "..."} payloads and plain strings alike.
func (s *StatusValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*s = ""
		return nil
	}
	if raw[0] == '{' {
		var wrapper struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return fmt.Errorf("unwrap status value: %w", err)
		}
		*s = StatusValue(wrapper.Value)
		return nil
	}
	var plain string
	if err := json.Unmarshal(data, &plain); err != nil {
		return fmt.Errorf("decode status value: %w", err)
	}
	*s = StatusValue(plain)
	return nil
}

// String returns the unwrapped value.
func (s StatusValue) String() string {
	return string(s)
}

// Equals compares case-sensitively against a plain string.
func (s StatusValue) Equals(other string) bool {
	return string(s) == other
}

// Value stores the plain string in the database.
func (s StatusValue) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan reads the plain string back from the database.
func (s *StatusValue) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = ""
	case string:
		*s = StatusValue(v)
	case []byte:
		*s = StatusValue(v)
	default:
		return fmt.Errorf("unsupported type %T for StatusValue", value)
	}
	return nil
}
