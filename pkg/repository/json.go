package repository

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type jsonScanner struct {
	dst any
}

// JSONScanner returns a sql.Scanner that decodes a JSON or JSONB column into
// dst. NULL leaves dst untouched.
func JSONScanner(dst any) sql.Scanner {
	return jsonScanner{dst: dst}
}

func (s jsonScanner) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan json: unsupported source type %T", src)
	}
	return json.Unmarshal(data, s.dst)
}

type jsonValue struct {
	v any
}

// JSONValue returns a driver.Valuer that encodes v as JSON for a JSON or
// JSONB parameter.
func JSONValue(v any) driver.Valuer {
	return jsonValue{v: v}
}

func (j jsonValue) Value() (driver.Value, error) {
	data, err := json.Marshal(j.v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
