package record

import "strings"

// Kind identifies one of the three record kinds. The value doubles as the
// XML root tag of the record's document.
type Kind string

const (
	KindConcept      Kind = "cnf"
	KindVariant      Kind = "vnf"
	KindBibliography Kind = "bib"
)

// Record is one submitted entry, before encoding. The concrete types form a
// closed set; field presence is checked by the schema validator, not here.
type Record interface {
	// Kind returns the record kind.
	Kind() Kind

	// DisplayName returns the name shown to the contributor on success.
	DisplayName() string

	// PathKey returns the raw semantic key the sharded file path is derived
	// from. It has not been sanitized yet.
	PathKey() string
}

// ConceptEntry describes an abstract name-concept (a "nym") independent of
// its surface spellings. Etym, Usg, Def, Lit and Note may carry limited
// inline markup.
type ConceptEntry struct {
	Nym  string
	Gen  string
	Etym string
	Usg  string
	Def  string
	Lit  string
	Note string
}

func (c *ConceptEntry) Kind() Kind          { return KindConcept }
func (c *ConceptEntry) DisplayName() string { return c.Nym }
func (c *ConceptEntry) PathKey() string     { return c.Nym }

// VariantEntry describes one attested surface form of a concept, tied to a
// date, place, language and bibliographic source. Nyms holds the associated
// concept identifiers in submission order.
type VariantEntry struct {
	Name   string
	Nyms   []string
	Gen    string
	Case   string
	Dim    bool
	Lang   string
	Place  string
	Date   string
	BibKey string
	BibLoc string
	Note   string
}

func (v *VariantEntry) Kind() Kind          { return KindVariant }
func (v *VariantEntry) DisplayName() string { return v.Name }

// PathKey combines name, date and bibliography key. Slashes in dates (e.g.
// "1599/1600") would break path construction, so they are replaced with "s".
func (v *VariantEntry) PathKey() string {
	date := strings.ReplaceAll(v.Date, "/", "s")
	return v.Name + "_" + date + "_" + v.BibKey
}

// BibliographyEntry is a citation record referenced by key from variant
// entries. Entry is a pre-formed citation body in raw markup.
type BibliographyEntry struct {
	Key   string
	Entry string
}

func (b *BibliographyEntry) Kind() Kind          { return KindBibliography }
func (b *BibliographyEntry) DisplayName() string { return b.Key }
func (b *BibliographyEntry) PathKey() string     { return b.Key }
