// Package keyvalue reads Valve KeyValues (VDF) text blobs of the shape
// root -> id -> flat record, as written to Steam's loginusers.vdf.
//
// Two root shapes are accepted. The canonical one maps ids directly under the
// root key. Some cache files carry a duplicated wrapper, root -> wrapper ->
// id -> record; that shape is a compatibility shim for files seen in the
// wild, not a supported format.
package keyvalue

import (
	"sort"
	"strings"
	"unicode"

	"github.com/andygrunwald/vdf"
)

// Record is one flat entry. Field names are lower-cased.
type Record map[string]string

// Get returns the value of field, matched case-insensitively.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[strings.ToLower(field)]
	return v, ok
}

// Records is an id -> Record map that remembers source order.
type Records struct {
	keys  []string
	items map[string]Record
}

// NewRecords returns an empty set of records.
func NewRecords() *Records {
	return &Records{items: make(map[string]Record)}
}

// Add appends or replaces a record. Replacing keeps the original position.
func (rs *Records) Add(id string, rec Record) {
	if _, ok := rs.items[id]; !ok {
		rs.keys = append(rs.keys, id)
	}
	rs.items[id] = rec
}

// Keys returns ids in insertion order.
func (rs *Records) Keys() []string {
	out := make([]string, len(rs.keys))
	copy(out, rs.keys)
	return out
}

// Get returns the record for id.
func (rs *Records) Get(id string) (Record, bool) {
	rec, ok := rs.items[id]
	return rec, ok
}

// Len returns the number of records.
func (rs *Records) Len() int {
	return len(rs.keys)
}

// Parse reads text and returns the id -> record map it contains.
// It never fails: malformed input or an unrecognised shape yields an empty
// result.
func Parse(text string) *Records {
	root, err := vdf.NewParser(strings.NewReader(text)).Parse()
	if err != nil {
		return NewRecords()
	}
	root = normalizeKeys(root)

	body, ok := rootBody(root)
	if !ok {
		return NewRecords()
	}

	// Shape (a): root -> id -> record.
	if looksLikeIDMap(body) {
		return collect(body, text)
	}

	// Shape (b): root -> wrapper -> id -> record.
	if inner, ok := unwrap(body); ok {
		return collect(inner, text)
	}

	return NewRecords()
}

// normalizeKeys recursively lowercases all keys.
// VDF keys are case-insensitive but Go map lookups are not.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

func rootBody(root map[string]any) (map[string]any, bool) {
	if len(root) == 1 {
		for _, v := range root {
			body, ok := v.(map[string]any)
			return body, ok
		}
	}
	body, ok := root["users"].(map[string]any)
	return body, ok
}

// looksLikeIDMap accepts the map when at least one key resembles a 64-bit
// account id. This is an approximation and can misjudge odd inputs.
func looksLikeIDMap(m map[string]any) bool {
	for k := range m {
		if len(k) > 10 && isDigits(k) {
			return true
		}
	}
	return false
}

func unwrap(m map[string]any) (map[string]any, bool) {
	if len(m) != 1 {
		return nil, false
	}
	for _, v := range m {
		inner, ok := v.(map[string]any)
		return inner, ok
	}
	return nil, false
}

func collect(m map[string]any, text string) *Records {
	ids := make([]string, 0, len(m))
	for id, v := range m {
		if _, ok := v.(map[string]any); ok {
			ids = append(ids, id)
		}
	}

	// vdf hands back an unordered map; source order is recovered from where
	// each id opens its block in the original text.
	sort.Strings(ids)
	offsets := make(map[string]int, len(ids))
	for _, id := range ids {
		offsets[id] = blockOffset(text, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return offsets[ids[i]] < offsets[ids[j]]
	})

	out := NewRecords()
	for _, id := range ids {
		fields := m[id].(map[string]any)
		rec := make(Record, len(fields))
		for name, v := range fields {
			if s, ok := v.(string); ok {
				rec[name] = s
			}
		}
		out.Add(id, rec)
	}
	return out
}

// blockOffset finds the first `"id"` that is followed by an opening brace.
// Ids that cannot be located sort last.
func blockOffset(text, id string) int {
	lowered := strings.ToLower(text)
	needle := `"` + id + `"`
	from := 0
	for {
		i := strings.Index(lowered[from:], needle)
		if i < 0 {
			return len(text)
		}
		pos := from + i
		rest := strings.TrimLeftFunc(lowered[pos+len(needle):], unicode.IsSpace)
		if strings.HasPrefix(rest, "{") {
			return pos
		}
		from = pos + len(needle)
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
