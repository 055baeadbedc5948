package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray is a tag or category list persisted as a JSON text column.
// Rows imported from the old CMS may hold a bare string or a comma separated
// list instead; both are read back as a list.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	b, err := json.Marshal(a.orEmpty())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON never emits null so clients can always iterate the field.
func (a StringArray) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.orEmpty())
}

func (a *StringArray) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.StringArray: cannot scan %T", value)
	}
	*a = parseStringArray(raw)
	return nil
}

func (a StringArray) orEmpty() []string {
	if a == nil {
		return []string{}
	}
	return a
}

func parseStringArray(raw string) StringArray {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return StringArray{}
	}
	if strings.HasPrefix(raw, "[") {
		var items []string
		if json.Unmarshal([]byte(raw), &items) == nil {
			return StringArray(items).orEmpty()
		}
	}
	if strings.HasPrefix(raw, `"`) {
		var single string
		if json.Unmarshal([]byte(raw), &single) == nil {
			raw = single
		}
	}

	out := StringArray{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
