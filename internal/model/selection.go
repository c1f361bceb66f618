package model

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
)

type OptionValue struct {
	Name  string
	Value string
}

// Selection maps option names to chosen values. It is kept sorted by name so
// two selections with the same pairs are structurally equal. On the wire it
// is a plain JSON object, e.g. {"Size":"M","Flavor":"Chocolate"}.
type Selection []OptionValue

func NewSelection(m map[string]string) Selection {
	s := make(Selection, 0, len(m))
	for k, v := range m {
		s = append(s, OptionValue{Name: k, Value: v})
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
	return s
}

func (s Selection) Get(name string) (string, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].Name >= name })
	if i < len(s) && s[i].Name == name {
		return s[i].Value, true
	}
	return "", false
}

// Covers reports whether every pair in sel is present in s with the same value.
func (s Selection) Covers(sel Selection) bool {
	for _, p := range sel {
		v, ok := s.Get(p.Name)
		if !ok || v != p.Value {
			return false
		}
	}
	return true
}

func (s Selection) Equal(o Selection) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Selection) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, p := range s {
		m[p.Name] = p.Value
	}
	return m
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s *Selection) UnmarshalJSON(b []byte) error {
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*s = NewSelection(m)
	return nil
}

func (s Selection) Value() (driver.Value, error) { return jsonValue(s) }
func (s *Selection) Scan(src any) error          { return scanJSON(src, s) }
