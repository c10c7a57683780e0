package lead

import "strings"

// aliases maps the shorthand identifiers accepted by saved views, sort specs
// and rule definitions onto canonical field keys. Aliases survive renames of
// the wire schema without invalidating stored view state.
var aliases = map[string]string{
	"name":        FieldFullName,
	"score":       FieldLeadScore,
	"probability": FieldConversionProb,
	"conversion":  FieldConversionProb,
	"created":     FieldCreatedAt,
	"contacted":   FieldLastContactedAt,
	"sla":         FieldSLAState,
	"term":        FieldIntakeTerm,
}

// Canonical maps an incoming field identifier to its canonical key. Unknown
// identifiers pass through unchanged.
func Canonical(key string) string {
	trimmed := strings.TrimSpace(key)
	if mapped, ok := aliases[strings.ToLower(trimmed)]; ok {
		return mapped
	}
	return trimmed
}

// Resolve looks up a field value on a lead. It follows aliases, then the
// record's own fields, then derived fields. The second return reports whether
// the value resolved; callers treat false as "undefined", never as an error.
func Resolve(l Lead, key string) (any, bool) {
	canonical := Canonical(key)
	if canonical == "" {
		return nil, false
	}

	if l.Fields != nil {
		if v, ok := l.Fields[canonical]; ok && v != nil {
			return v, true
		}
	}

	switch canonical {
	case FieldFullName:
		return deriveFullName(l)
	case "uid":
		if l.UID == "" {
			return nil, false
		}
		return l.UID, true
	}

	return nil, false
}

// deriveFullName joins the name parts, tolerating either being absent. A
// record with neither part resolves as undefined rather than empty string so
// missing names sort last like any other missing value.
func deriveFullName(l Lead) (any, bool) {
	first, _ := rawString(l, FieldFirstName)
	last, _ := rawString(l, FieldLastName)

	full := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if full == "" {
		return nil, false
	}
	return full, true
}

func rawString(l Lead, key string) (string, bool) {
	if l.Fields == nil {
		return "", false
	}
	v, ok := l.Fields[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
