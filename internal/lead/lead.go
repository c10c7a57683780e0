// Package lead defines the admissions lead record and the field resolution
// layer the rest of the engine reads records through. Every downstream
// consumer (filtering, tagging, ranking, search) resolves values via
// Resolve rather than touching the field map directly, so aliases and
// derived fields behave identically everywhere.
package lead

// Lead is a single admissions lead. UID is the stable identity used for
// overrides, manual tags and rank scores. Seq is a legacy human-facing
// counter kept for display; it is never used as a key.
type Lead struct {
	UID    string         `json:"uid"`
	Seq    int            `json:"seq,omitempty"`
	Fields map[string]any `json:"fields"`
}

// Kind describes how a field's values compare and sort.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
	KindBool
)

// Field describes one entry of the lead field catalog.
type Field struct {
	Key   string
	Label string
	Kind  Kind
}

// Canonical field keys. Records may carry additional ad hoc keys; those
// resolve directly and compare as strings.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldFullName        = "fullName"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldSchool          = "school"
	FieldProgram         = "program"
	FieldIntakeTerm      = "intakeTerm"
	FieldCountry         = "country"
	FieldCity            = "city"
	FieldSource          = "source"
	FieldOwner           = "owner"
	FieldStage           = "stage"
	FieldLeadScore       = "leadScore"
	FieldConversionProb  = "conversionProbability"
	FieldSLAState        = "slaState"
	FieldColdLead        = "coldLead"
	FieldCreatedAt       = "createdAt"
	FieldLastContactedAt = "lastContactedAt"
	FieldNotes           = "notes"
)

// Catalog lists the fields the engine understands, in display order.
var Catalog = []Field{
	{Key: FieldFullName, Label: "Name", Kind: KindString},
	{Key: FieldEmail, Label: "Email", Kind: KindString},
	{Key: FieldPhone, Label: "Phone", Kind: KindString},
	{Key: FieldSchool, Label: "School", Kind: KindString},
	{Key: FieldProgram, Label: "Program", Kind: KindString},
	{Key: FieldIntakeTerm, Label: "Intake Term", Kind: KindString},
	{Key: FieldCountry, Label: "Country", Kind: KindString},
	{Key: FieldCity, Label: "City", Kind: KindString},
	{Key: FieldSource, Label: "Source", Kind: KindString},
	{Key: FieldOwner, Label: "Owner", Kind: KindString},
	{Key: FieldStage, Label: "Stage", Kind: KindString},
	{Key: FieldLeadScore, Label: "Score", Kind: KindNumber},
	{Key: FieldConversionProb, Label: "Conversion", Kind: KindNumber},
	{Key: FieldSLAState, Label: "SLA", Kind: KindString},
	{Key: FieldColdLead, Label: "Cold", Kind: KindBool},
	{Key: FieldCreatedAt, Label: "Created", Kind: KindDate},
	{Key: FieldLastContactedAt, Label: "Last Contacted", Kind: KindDate},
	{Key: FieldNotes, Label: "Notes", Kind: KindString},
}

var catalogByKey = func() map[string]Field {
	m := make(map[string]Field, len(Catalog))
	for _, f := range Catalog {
		m[f.Key] = f
	}
	m[FieldFirstName] = Field{Key: FieldFirstName, Label: "First Name", Kind: KindString}
	m[FieldLastName] = Field{Key: FieldLastName, Label: "Last Name", Kind: KindString}
	return m
}()

// KindOf reports the catalog kind for a resolved field key. Unknown keys
// compare as strings.
func KindOf(key string) Kind {
	if f, ok := catalogByKey[Canonical(key)]; ok {
		return f.Kind
	}
	return KindString
}

// LabelOf returns the display label for a field key, falling back to the key
// itself for ad hoc fields.
func LabelOf(key string) string {
	if f, ok := catalogByKey[Canonical(key)]; ok {
		return f.Label
	}
	return key
}
