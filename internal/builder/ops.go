package builder

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ccvida/reportes/internal/schema"
)

var (
	ErrBadLocation   = errors.New("location out of range")
	ErrNotSection    = errors.New("target group is not a section")
	ErrNestedSection = errors.New("sections cannot be nested")
)

// Loc addresses a field in the document. Child < 0 means the group's
// own field (a lone field or a section header); Child >= 0 indexes into
// a section's children.
type Loc struct {
	Group int
	Child int
}

// AddField appends a new field at root level. Appending after an open
// section implicitly closes it: the flat form gains a break marker when
// flattened, so the new field never lands inside the previous section.
func (d *Document) AddField(typ string) *Field {
	f := NewField(typ)
	kind := FieldGroup
	if typ == sectionType {
		kind = SectionGroup
	}
	d.Groups = append(d.Groups, &Group{Kind: kind, Field: f})
	return f
}

// AddFieldToSection appends a new field after the last child of the
// given section, extending its range.
func (d *Document) AddFieldToSection(section int, typ string) (*Field, error) {
	if section < 0 || section >= len(d.Groups) {
		return nil, ErrBadLocation
	}
	g := d.Groups[section]
	if g.Kind != SectionGroup {
		return nil, ErrNotSection
	}
	if typ == sectionType {
		return nil, ErrNestedSection
	}
	f := NewField(typ)
	g.Children = append(g.Children, f)
	return f, nil
}

// Duplicate clones the field at loc under a new identity, immediately
// after the original. The label gets a "(Copia)" suffix and the key a
// numeric suffix to stay unique. Duplicating a section header yields a
// new empty section; children are not cloned.
func (d *Document) Duplicate(loc Loc) (*Field, error) {
	g, err := d.group(loc.Group)
	if err != nil {
		return nil, err
	}
	if loc.Child < 0 {
		c := g.Field.Clone()
		d.retitleCopy(c)
		ng := &Group{Kind: g.Kind, Field: c}
		d.Groups = insertGroup(d.Groups, loc.Group+1, ng)
		return c, nil
	}
	if loc.Child >= len(g.Children) {
		return nil, ErrBadLocation
	}
	c := g.Children[loc.Child].Clone()
	d.retitleCopy(c)
	g.Children = insertField(g.Children, loc.Child+1, c)
	return c, nil
}

// Remove deletes the field at loc. Removing a section header does not
// cascade: its children are promoted to root-level fields in place.
func (d *Document) Remove(loc Loc) error {
	g, err := d.group(loc.Group)
	if err != nil {
		return err
	}
	if loc.Child >= 0 {
		if loc.Child >= len(g.Children) {
			return ErrBadLocation
		}
		g.Children = append(g.Children[:loc.Child], g.Children[loc.Child+1:]...)
		return nil
	}
	if g.Kind != SectionGroup || len(g.Children) == 0 {
		d.Groups = append(d.Groups[:loc.Group], d.Groups[loc.Group+1:]...)
		return nil
	}
	orphans := make([]*Group, len(g.Children))
	for i, c := range g.Children {
		orphans[i] = &Group{Kind: FieldGroup, Field: c}
	}
	rest := append(orphans, d.Groups[loc.Group+1:]...)
	d.Groups = append(d.Groups[:loc.Group], rest...)
	return nil
}

// Reorder moves the field (or whole section) at src to dst. Same-list
// destinations are interpreted against the document with the source
// already removed, the usual drag-and-drop convention. Moving a section
// carries its children with it and sections never enter another
// section's range.
func (d *Document) Reorder(src, dst Loc) error {
	sg, err := d.group(src.Group)
	if err != nil {
		return err
	}

	// Whole group drag: a section with its children, or a lone field.
	if src.Child < 0 {
		if sg.Kind == SectionGroup && dst.Child >= 0 {
			return ErrNestedSection
		}
		if dst.Child >= 0 {
			// Lone field dropped into a section's sub-list. Cross-list
			// destinations address the target as it stood before the
			// source was lifted out.
			tg, err := d.group(dst.Group)
			if err != nil {
				return err
			}
			if tg.Kind != SectionGroup {
				return ErrNotSection
			}
			d.Groups = append(d.Groups[:src.Group], d.Groups[src.Group+1:]...)
			tg.Children = insertField(tg.Children, clamp(dst.Child, len(tg.Children)), sg.Field)
			return nil
		}
		d.Groups = append(d.Groups[:src.Group], d.Groups[src.Group+1:]...)
		d.Groups = insertGroup(d.Groups, clamp(dst.Group, len(d.Groups)), sg)
		return nil
	}

	// Child drag out of a section.
	if src.Child >= len(sg.Children) {
		return ErrBadLocation
	}
	f := sg.Children[src.Child]
	sg.Children = append(sg.Children[:src.Child], sg.Children[src.Child+1:]...)

	if dst.Child < 0 {
		// Dropped at root level: becomes its own group, never silently
		// absorbed into a neighboring section.
		ng := &Group{Kind: FieldGroup, Field: f}
		d.Groups = insertGroup(d.Groups, clamp(dst.Group, len(d.Groups)), ng)
		return nil
	}

	tg, err := d.group(dst.Group)
	if err != nil {
		sg.Children = insertField(sg.Children, src.Child, f) // undo
		return err
	}
	if tg.Kind != SectionGroup {
		sg.Children = insertField(sg.Children, src.Child, f)
		return ErrNotSection
	}
	tg.Children = insertField(tg.Children, clamp(dst.Child, len(tg.Children)), f)
	return nil
}

// EnsureKeys derives keys for fields that have none (slug of the
// label, falling back to the lowercased type) and suffixes the derived
// key until it is unique in the document. Explicit keys pass through
// untouched; colliding ones are the caller's to reject. Persisted keys
// are locked: changing them would orphan previously collected values.
func (d *Document) EnsureKeys() {
	for _, f := range d.Fields() {
		if f.IsBreak() || f.Persisted || f.Key != "" {
			continue
		}
		base := schema.Slugify(f.Label)
		if base == "" {
			base = strings.ToLower(f.Type)
		}
		f.Key = d.uniqueKey(base)
	}
}

func (d *Document) retitleCopy(c *Field) {
	base := c.Key
	if c.Label != "" {
		c.Label += " (Copia)"
	}
	if c.IsBreak() {
		return
	}
	if base == "" {
		base = schema.Slugify(c.Label)
	}
	if base == "" {
		base = strings.ToLower(c.Type)
	}
	c.Key = d.uniqueKey(base)
}

func (d *Document) uniqueKey(base string) string {
	taken := make(map[string]bool)
	for _, f := range d.Fields() {
		if f.Key != "" {
			taken[f.Key] = true
		}
	}
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		k := base + "_" + strconv.Itoa(i)
		if !taken[k] {
			return k
		}
	}
}

func (d *Document) group(i int) (*Group, error) {
	if i < 0 || i >= len(d.Groups) {
		return nil, ErrBadLocation
	}
	return d.Groups[i], nil
}

func insertGroup(s []*Group, i int, g *Group) []*Group {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = g
	return s
}

func insertField(s []*Field, i int, f *Field) []*Field {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = f
	return s
}

func clamp(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
