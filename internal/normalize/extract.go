// Package normalize flattens ESPN payloads into table rows. Every accessor
// here tolerates missing or mistyped fields; absence becomes a NULL column.
package normalize

import (
	"database/sql"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

func extractMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key]; ok {
		if mapVal, ok := v.(map[string]any); ok {
			return mapVal
		}
	}
	return map[string]any{}
}

func extractArray(m map[string]any, key string) []any {
	if v, ok := m[key]; ok {
		if arrVal, ok := v.([]any); ok {
			return arrVal
		}
	}
	return []any{}
}

// dig walks nested objects, returning nil as soon as a level is missing.
func dig(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

func firstMap(arr []any) map[string]any {
	if len(arr) == 0 {
		return map[string]any{}
	}
	if m, ok := arr[0].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func maps(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func str(v any) sql.NullString {
	s, ok := toString(v)
	return sql.NullString{String: s, Valid: ok}
}

func integer(v any) sql.NullInt64 {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return sql.NullInt64{}
		}
		return sql.NullInt64{Int64: int64(val), Valid: true}
	case int:
		return sql.NullInt64{Int64: int64(val), Valid: true}
	case int64:
		return sql.NullInt64{Int64: val, Valid: true}
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return sql.NullInt64{}
		}
		return sql.NullInt64{Int64: i, Valid: true}
	default:
		return sql.NullInt64{}
	}
}

func float(v any) sql.NullFloat64 {
	switch val := v.(type) {
	case float64:
		return sql.NullFloat64{Float64: val, Valid: true}
	case int:
		return sql.NullFloat64{Float64: float64(val), Valid: true}
	case int64:
		return sql.NullFloat64{Float64: float64(val), Valid: true}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return sql.NullFloat64{}
		}
		return sql.NullFloat64{Float64: f, Valid: true}
	default:
		return sql.NullFloat64{}
	}
}

func boolean(v any) sql.NullBool {
	switch val := v.(type) {
	case bool:
		return sql.NullBool{Bool: val, Valid: true}
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return sql.NullBool{}
		}
		return sql.NullBool{Bool: b, Valid: true}
	default:
		return sql.NullBool{}
	}
}

// Blob serializes an embedded collection for an opaque text column.
// A missing value stays NULL.
func Blob(v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	out, err := sonic.MarshalString(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: out, Valid: true}
}

// DecodeBlob parses a column written by Blob back into its structural shape.
func DecodeBlob(blob sql.NullString) (any, error) {
	if !blob.Valid {
		return nil, nil
	}
	var out any
	if err := sonic.UnmarshalString(blob.String, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FirstLogoHref returns the href of the first logo in a logos blob.
func FirstLogoHref(logos sql.NullString) (string, bool) {
	decoded, err := DecodeBlob(logos)
	if err != nil {
		return "", false
	}
	arr, ok := decoded.([]any)
	if !ok {
		return "", false
	}
	href, ok := toString(firstMap(arr)["href"])
	return href, ok && href != ""
}

// IDFromRef extracts the path segment that follows /{collection}/ in an
// ESPN $ref URL, e.g. IDFromRef(".../events/401?lang=en", "events") == "401".
func IDFromRef(ref, collection string) string {
	marker := "/" + collection + "/"
	idx := strings.LastIndex(ref, marker)
	if idx < 0 {
		return ""
	}
	rest := ref[idx+len(marker):]
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		rest = rest[:cut]
	}
	return rest
}

// RefPage reads a paged ESPN collection: the $ref of each item and the
// reported page count (1 when absent).
func RefPage(data map[string]any) ([]string, int) {
	items := maps(extractArray(data, "items"))
	refs := make([]string, 0, len(items))
	for _, item := range items {
		if ref, ok := item["$ref"].(string); ok && ref != "" {
			refs = append(refs, ref)
		}
	}
	pageCount := 1
	if pc := integer(data["pageCount"]); pc.Valid && pc.Int64 > 0 {
		pageCount = int(pc.Int64)
	}
	return refs, pageCount
}

// ZipStats pairs a label list with a value list positionally, keeping only
// labels listed in keep. Lengths may differ; unmatched entries are dropped.
func ZipStats(labels, values []any, keep []string) map[string]sql.NullString {
	allowed := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		allowed[k] = struct{}{}
	}
	out := make(map[string]sql.NullString, len(keep))
	n := len(labels)
	if len(values) < n {
		n = len(values)
	}
	for i := 0; i < n; i++ {
		label, ok := labels[i].(string)
		if !ok {
			continue
		}
		if _, ok := allowed[label]; !ok {
			continue
		}
		out[label] = str(values[i])
	}
	return out
}

// refID reads an entity id from {"id": ...} or, failing that, from its $ref.
func refID(obj map[string]any, collection string) sql.NullString {
	if id := str(obj["id"]); id.Valid && id.String != "" {
		return id
	}
	if ref, ok := obj["$ref"].(string); ok {
		if id := IDFromRef(ref, collection); id != "" {
			return sql.NullString{String: id, Valid: true}
		}
	}
	return sql.NullString{}
}
