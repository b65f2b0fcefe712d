package record

import "strings"

// MaxSubmissionBytes is the accepted limit on the combined size of all field
// values in one submission.
const MaxSubmissionBytes = 2048

// Fields is the form-shaped input supplied by the caller: field name to
// ordered values. Only the variant entry's "nym" field is meaningfully
// multi-valued; every other field uses the first value.
type Fields map[string][]string

// Get returns the first value for a field, whitespace-trimmed, or "".
func (f Fields) Get(name string) string {
	vs := f[name]
	if len(vs) == 0 {
		return ""
	}
	return strings.TrimSpace(vs[0])
}

// List returns all values for a field in order, whitespace-trimmed.
func (f Fields) List(name string) []string {
	vs := f[name]
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// checkSize rejects oversized submissions before any other processing.
func (f Fields) checkSize() error {
	size := 0
	for _, vs := range f {
		for _, v := range vs {
			size += len(v)
		}
	}
	if size > MaxSubmissionBytes {
		return &TooLargeError{Size: size, Limit: MaxSubmissionBytes}
	}
	return nil
}

// ConceptFromFields builds a ConceptEntry from form input.
func ConceptFromFields(f Fields) (*ConceptEntry, error) {
	if err := f.checkSize(); err != nil {
		return nil, err
	}
	return &ConceptEntry{
		Nym:  f.Get("nym"),
		Gen:  f.Get("gen"),
		Etym: f.Get("etym"),
		Usg:  f.Get("usg"),
		Def:  f.Get("def"),
		Lit:  f.Get("lit"),
		Note: f.Get("note"),
	}, nil
}

// VariantFromFields builds a VariantEntry from form input. The "dim" field
// follows checkbox semantics: present with value "on" means true.
func VariantFromFields(f Fields) (*VariantEntry, error) {
	if err := f.checkSize(); err != nil {
		return nil, err
	}
	return &VariantEntry{
		Name:   f.Get("name"),
		Nyms:   f.List("nym"),
		Gen:    f.Get("gen"),
		Case:   f.Get("case"),
		Dim:    f.Get("dim") == "on",
		Lang:   f.Get("lang"),
		Place:  f.Get("place"),
		Date:   f.Get("date"),
		BibKey: f.Get("key"),
		BibLoc: f.Get("loc"),
		Note:   f.Get("note"),
	}, nil
}

// BibliographyFromFields builds a BibliographyEntry from form input.
func BibliographyFromFields(f Fields) (*BibliographyEntry, error) {
	if err := f.checkSize(); err != nil {
		return nil, err
	}
	return &BibliographyEntry{
		Key:   f.Get("key"),
		Entry: f.Get("entry"),
	}, nil
}
