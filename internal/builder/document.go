package builder

type GroupKind int

const (
	FieldGroup GroupKind = iota
	SectionGroup
)

// Group is one root-level unit of the document: either a lone field or
// a section header with its children. Sections never nest.
type Group struct {
	Kind     GroupKind
	Field    *Field
	Children []*Field

	// brk is the persisted break marker that closed this section in the
	// flat form, if any. Flatten reuses it so saving an untouched
	// document does not churn database rows.
	brk *Field
}

// Document is the editable schema: an ordered list of groups.
type Document struct {
	Groups []*Group
}

// ParseFields groups a flat persisted field list. A SECTION field opens
// a group (closing any open one); a SECTION with the break sentinel
// closes the open group; every other field joins the open group or, if
// none is open, stands alone at root level.
func ParseFields(flat []*Field) *Document {
	d := &Document{}
	var open *Group
	for _, f := range flat {
		if f.IsBreak() {
			if open != nil {
				open.brk = f
				open = nil
			}
			continue
		}
		if f.Type == sectionType {
			g := &Group{Kind: SectionGroup, Field: f}
			d.Groups = append(d.Groups, g)
			open = g
			continue
		}
		if open != nil {
			open.Children = append(open.Children, f)
			continue
		}
		d.Groups = append(d.Groups, &Group{Kind: FieldGroup, Field: f})
	}
	return d
}

// Flatten renders the document back to the flat sentinel-encoded array.
// A break marker is emitted after every section that is followed by
// more groups. A trailing section keeps its parsed break if it had one;
// otherwise end of list closes it implicitly.
func (d *Document) Flatten() []*Field {
	var out []*Field
	for i, g := range d.Groups {
		out = append(out, g.Field)
		if g.Kind != SectionGroup {
			continue
		}
		out = append(out, g.Children...)
		if i == len(d.Groups)-1 {
			if g.brk != nil {
				out = append(out, g.brk)
			}
			continue
		}
		b := g.brk
		if b == nil {
			b = newBreak()
		}
		out = append(out, b)
	}
	return out
}

// Fields returns every real field (headers and questions, no break
// markers) in document order.
func (d *Document) Fields() []*Field {
	var out []*Field
	for _, g := range d.Groups {
		out = append(out, g.Field)
		out = append(out, g.Children...)
	}
	return out
}

// FindByUID locates a field by its opaque identity.
func (d *Document) FindByUID(uid string) (Loc, *Field, bool) {
	for gi, g := range d.Groups {
		if g.Field.UID == uid {
			return Loc{Group: gi, Child: -1}, g.Field, true
		}
		for ci, c := range g.Children {
			if c.UID == uid {
				return Loc{Group: gi, Child: ci}, c, true
			}
		}
	}
	return Loc{}, nil, false
}
