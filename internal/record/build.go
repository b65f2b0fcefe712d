package record

import (
	"fmt"

	"github.com/beevik/etree"
)

// BuildDocument assembles the XML document for a record. Scalar fields are
// emitted only when non-empty so the schema never sees malformed empty
// elements; the etymology element is the exception, required by the schema
// even when blank. Fields that may carry inline markup are parsed as raw
// fragments instead of being text-escaped. Concept and variant entries get
// a meta/live=false node unconditionally: new entries are never live.
//
// Identical input always yields a byte-identical document, so committed
// files diff cleanly.
func BuildDocument(r Record) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	var err error
	switch rec := r.(type) {
	case *ConceptEntry:
		err = buildConcept(doc, rec)
	case *VariantEntry:
		err = buildVariant(doc, rec)
	case *BibliographyEntry:
		err = buildBibliography(doc, rec)
	default:
		err = fmt.Errorf("unknown record type %T", r)
	}
	if err != nil {
		return nil, err
	}

	doc.Indent(2)
	return doc, nil
}

// EncodeDocument serializes a built document to its on-disk byte form.
func EncodeDocument(doc *etree.Document) ([]byte, error) {
	b, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}
	return b, nil
}

func buildConcept(doc *etree.Document, c *ConceptEntry) error {
	root := doc.CreateElement("cnf")
	if err := addRaw(root, "nym", c.Nym, true); err != nil {
		return err
	}
	addMetaLive(root)
	addScalar(root, "gen", c.Gen)
	if err := addRaw(root, "etym", c.Etym, false); err != nil {
		return err
	}
	if err := addRaw(root, "usg", c.Usg, true); err != nil {
		return err
	}
	if err := addRaw(root, "def", c.Def, true); err != nil {
		return err
	}
	if err := addRaw(root, "lit", c.Lit, true); err != nil {
		return err
	}
	return addRaw(root, "note", c.Note, true)
}

func buildVariant(doc *etree.Document, v *VariantEntry) error {
	root := doc.CreateElement("vnf")
	if err := addRaw(root, "name", v.Name, true); err != nil {
		return err
	}
	addMetaLive(root)

	// One nym reference per non-empty value, in submission order.
	for _, nym := range v.Nyms {
		if err := addRaw(root, "nym", nym, true); err != nil {
			return err
		}
	}

	addScalar(root, "gen", v.Gen)
	addScalar(root, "case", v.Case)

	dim := root.CreateElement("dim")
	if v.Dim {
		dim.SetText("true")
	} else {
		dim.SetText("false")
	}

	if err := addRaw(root, "lang", v.Lang, true); err != nil {
		return err
	}
	if err := addRaw(root, "place", v.Place, true); err != nil {
		return err
	}
	if err := addRaw(root, "date", v.Date, true); err != nil {
		return err
	}

	bibl := root.CreateElement("bibl")
	addScalar(bibl, "key", v.BibKey)
	if err := addRaw(bibl, "loc", v.BibLoc, true); err != nil {
		return err
	}

	return addRaw(root, "note", v.Note, true)
}

func buildBibliography(doc *etree.Document, b *BibliographyEntry) error {
	root := doc.CreateElement("bibl")
	addScalar(root, "key", b.Key)

	// The citation body is a complete pre-formed element.
	entry, err := parseFragment(b.Entry)
	if err != nil {
		return &ViolationError{Detail: fmt.Sprintf("field entry: %v", err)}
	}
	root.AddChild(entry)
	return nil
}

// addScalar appends a text-escaped child element, skipping empty values.
func addScalar(parent *etree.Element, name, val string) {
	if val == "" {
		return
	}
	parent.CreateElement(name).SetText(val)
}

// addRaw appends a child element whose value is parsed as a raw markup
// fragment, allowing limited inline markup. Unparseable markup surfaces as
// a ViolationError.
func addRaw(parent *etree.Element, name, val string, skipEmpty bool) error {
	if skipEmpty && val == "" {
		return nil
	}
	el, err := parseFragment(fmt.Sprintf("<%s>%s</%s>", name, val, name))
	if err != nil {
		return &ViolationError{Detail: fmt.Sprintf("field %s: %v", name, err)}
	}
	parent.AddChild(el)
	return nil
}

// addMetaLive appends the implicit meta/live=false node.
func addMetaLive(parent *etree.Element) {
	parent.CreateElement("meta").CreateElement("live").SetText("false")
}

// parseFragment parses a standalone element from raw markup.
func parseFragment(markup string) (*etree.Element, error) {
	frag := etree.NewDocument()
	if err := frag.ReadFromString(markup); err != nil {
		return nil, err
	}
	root := frag.Root()
	if root == nil {
		return nil, fmt.Errorf("no element in fragment")
	}
	// Detach so the element can be adopted by the record document.
	frag.RemoveChild(root)
	return root, nil
}
