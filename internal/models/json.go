package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number decodes JSON numbers and numeric strings ("25.00" as decimals are serialized).
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// TableRef is the "table" field of a booking: either a bare id or a nested object.
type TableRef struct {
	ID       int64
	Name     string
	AreaName string
}

func (r *TableRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*r = TableRef{}
		return nil
	}
	if data[0] != '{' {
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = TableRef{ID: id}
		return nil
	}

	var obj struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Area *struct {
			Name string `json:"name"`
		} `json:"area"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = TableRef{ID: obj.ID, Name: obj.Name}
	if obj.Area != nil {
		r.AreaName = obj.Area.Name
	}
	return nil
}

func (r TableRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}
