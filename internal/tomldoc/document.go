package tomldoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
)

// EntryKind classifies the value shape of a table entry.
type EntryKind int

const (
	// KindString is a bare string value.
	KindString EntryKind = iota
	// KindTableLike is an inline table, a sub-table header, or a dotted
	// key, anything with addressable sub-fields.
	KindTableLike
	// KindOther is any other value shape (integer, array, ...).
	KindOther
)

func (k EntryKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindTableLike:
		return "table"
	default:
		return "other"
	}
}

type span struct {
	start, end int
}

type valueInfo struct {
	kind   EntryKind
	val    span                  // full value span in the source
	fields map[string]*valueInfo // sub-fields when kind == KindTableLike
	order  []string
}

type tableInfo struct {
	parts      []string
	arrayTable bool
	entries    map[string]*valueInfo
	order      []string
	end        int // insertion offset: just past the last line of the table
}

type edit struct {
	start, end int
	text       string
}

// Document is a TOML file indexed for span edits.
type Document struct {
	src    []byte
	tables map[string]*tableInfo
	order  []string

	edits       []edit
	pending     map[string][]string // table key -> entry lines, for tables created at render time
	pendingKeys []string
}

// Parse indexes TOML source for editing. The source is validated by the
// same parser that positions the spans.
func Parse(src []byte) (*Document, error) {
	d := &Document{
		src:     src,
		tables:  make(map[string]*tableInfo),
		pending: make(map[string][]string),
	}

	root := &tableInfo{entries: make(map[string]*valueInfo)}
	d.tables[""] = root
	d.order = append(d.order, "")
	current := root

	var p unstable.Parser
	p.Reset(src)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			parts, keyEnd := keyParts(expr.Key())
			key := strings.Join(parts, ".")
			t, ok := d.tables[key]
			if !ok {
				t = &tableInfo{
					parts:      parts,
					arrayTable: expr.Kind == unstable.ArrayTable,
					entries:    make(map[string]*valueInfo),
				}
				d.tables[key] = t
				d.order = append(d.order, key)
			}
			t.end = lineEnd(src, keyEnd)
			current = t
		case unstable.KeyValue:
			if err := d.indexKeyValue(current, expr); err != nil {
				return nil, err
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	return d, nil
}

func (d *Document) indexKeyValue(t *tableInfo, expr *unstable.Node) error {
	parts, keyEnd := keyParts(expr.Key())
	if len(parts) == 0 {
		return fmt.Errorf("tomldoc: key-value without key")
	}
	val, err := d.valueInfoOf(expr.Value(), keyEnd)
	if err != nil {
		return err
	}

	name := parts[0]
	if len(parts) > 1 {
		// Dotted key: index as a table-like entry with one leaf field.
		field := val
		for i := len(parts) - 1; i > 1; i-- {
			field = &valueInfo{
				kind:   KindTableLike,
				val:    val.val,
				fields: map[string]*valueInfo{parts[i]: field},
				order:  []string{parts[i]},
			}
		}
		holder, ok := t.entries[name]
		if !ok {
			holder = &valueInfo{
				kind:   KindTableLike,
				val:    val.val,
				fields: make(map[string]*valueInfo),
			}
			t.entries[name] = holder
			t.order = append(t.order, name)
		}
		if _, ok := holder.fields[parts[1]]; !ok {
			holder.order = append(holder.order, parts[1])
		}
		holder.fields[parts[1]] = field
		holder.val.end = val.val.end
	} else {
		if _, ok := t.entries[name]; !ok {
			t.order = append(t.order, name)
		}
		t.entries[name] = val
	}

	t.end = lineEnd(d.src, val.val.end)
	return nil
}

// valueInfoOf computes the span and shape of a value node. keyEnd is the
// offset just past the entry's last key part, used to locate composite
// values that the parser does not record raw ranges for.
func (d *Document) valueInfoOf(node *unstable.Node, keyEnd int) (*valueInfo, error) {
	switch node.Kind {
	case unstable.String:
		start := int(node.Raw.Offset)
		return &valueInfo{kind: KindString, val: span{start, start + int(node.Raw.Length)}}, nil
	case unstable.InlineTable:
		start, err := scanValueStart(d.src, keyEnd)
		if err != nil {
			return nil, err
		}
		end, err := scanCompositeEnd(d.src, start)
		if err != nil {
			return nil, err
		}
		info := &valueInfo{
			kind:   KindTableLike,
			val:    span{start, end},
			fields: make(map[string]*valueInfo),
		}
		children := node.Children()
		for children.Next() {
			child := children.Node()
			if child.Kind != unstable.KeyValue {
				continue
			}
			parts, childKeyEnd := keyParts(child.Key())
			if len(parts) != 1 {
				continue
			}
			fieldVal, err := d.valueInfoOf(child.Value(), childKeyEnd)
			if err != nil {
				return nil, err
			}
			if _, ok := info.fields[parts[0]]; !ok {
				info.order = append(info.order, parts[0])
			}
			info.fields[parts[0]] = fieldVal
		}
		return info, nil
	case unstable.Array:
		start, err := scanValueStart(d.src, keyEnd)
		if err != nil {
			return nil, err
		}
		end, err := scanCompositeEnd(d.src, start)
		if err != nil {
			return nil, err
		}
		return &valueInfo{kind: KindOther, val: span{start, end}}, nil
	default:
		start := int(node.Raw.Offset)
		end := start + int(node.Raw.Length)
		if node.Raw.Length == 0 {
			var err error
			start, err = scanValueStart(d.src, keyEnd)
			if err != nil {
				return nil, err
			}
			end = lineEnd(d.src, start) - 1
		}
		return &valueInfo{kind: KindOther, val: span{start, end}}, nil
	}
}

// keyParts decodes a key iterator into its parts and returns the offset
// just past the last part's raw bytes.
func keyParts(it unstable.Iterator) ([]string, int) {
	var parts []string
	end := 0
	for it.Next() {
		n := it.Node()
		parts = append(parts, string(n.Data))
		if e := int(n.Raw.Offset) + int(n.Raw.Length); e > end {
			end = e
		}
	}
	return parts, end
}

// HasTable reports whether the document declares the given table header
// (dotted key).
func (d *Document) HasTable(key string) bool {
	_, ok := d.tables[key]
	return ok
}

// Keys returns the entry names of a table in document order, including
// names introduced by immediate sub-tables ([table.name]).
func (d *Document) Keys(tableKey string) []string {
	var names []string
	seen := make(map[string]bool)
	if t, ok := d.tables[tableKey]; ok {
		for _, name := range t.order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	prefix := tableKey + "."
	for _, key := range d.order {
		if key == "" || !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if strings.Contains(rest, ".") {
			continue
		}
		if !seen[rest] {
			seen[rest] = true
			names = append(names, rest)
		}
	}
	return names
}

// Entry looks up a table entry by name. A name declared as an immediate
// sub-table ([table.name]) is returned as a table-like entry whose fields
// are the sub-table's keys.
func (d *Document) Entry(tableKey, name string) (*Entry, bool) {
	if t, ok := d.tables[tableKey]; ok {
		if val, ok := t.entries[name]; ok {
			return &Entry{doc: d, name: name, val: val}, true
		}
	}
	if sub, ok := d.tables[tableKey+"."+name]; ok {
		if sub.arrayTable {
			return &Entry{doc: d, name: name, val: &valueInfo{kind: KindOther}}, true
		}
		val := &valueInfo{
			kind:   KindTableLike,
			fields: sub.entries,
			order:  sub.order,
		}
		return &Entry{doc: d, name: name, val: val}, true
	}
	return nil, false
}

// SetEntry inserts or overwrites "name = rawValue" in the given table.
// rawValue must be valid TOML for a value. A missing table section is
// created at the end of the document when the edits are rendered.
func (d *Document) SetEntry(tableKey, name, rawValue string) {
	if t, ok := d.tables[tableKey]; ok {
		if val, ok := t.entries[name]; ok {
			d.edits = append(d.edits, edit{start: val.val.start, end: val.val.end, text: rawValue})
			return
		}
		d.edits = append(d.edits, edit{start: t.end, end: t.end, text: EncodeKey(name) + " = " + rawValue + "\n"})
		return
	}
	if _, ok := d.pending[tableKey]; !ok {
		d.pendingKeys = append(d.pendingKeys, tableKey)
	}
	d.pending[tableKey] = append(d.pending[tableKey], EncodeKey(name)+" = "+rawValue+"\n")
}

// Render applies all queued edits and validates that the result is still
// well-formed TOML. The original source is not modified.
func (d *Document) Render() ([]byte, error) {
	edits := make([]edit, len(d.edits))
	copy(edits, d.edits)

	if len(d.pendingKeys) > 0 {
		var b strings.Builder
		if len(d.src) > 0 && d.src[len(d.src)-1] != '\n' {
			b.WriteString("\n")
		}
		for _, key := range d.pendingKeys {
			b.WriteString("\n[" + key + "]\n")
			for _, line := range d.pending[key] {
				b.WriteString(line)
			}
		}
		edits = append(edits, edit{start: len(d.src), end: len(d.src), text: b.String()})
	}

	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	for i := 1; i < len(edits); i++ {
		if edits[i].start < edits[i-1].end {
			return nil, fmt.Errorf("tomldoc: overlapping edits at offset %d", edits[i].start)
		}
	}

	var out []byte
	last := 0
	for _, e := range edits {
		out = append(out, d.src[last:e.start]...)
		out = append(out, e.text...)
		last = e.end
	}
	out = append(out, d.src[last:]...)

	var p unstable.Parser
	p.Reset(out)
	for p.NextExpression() {
	}
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("tomldoc: rendered document is not valid TOML: %w", err)
	}
	return out, nil
}

// Entry is one table entry addressed for editing.
type Entry struct {
	doc  *Document
	name string
	val  *valueInfo
}

// Name returns the entry's key within its table.
func (e *Entry) Name() string { return e.name }

// Kind returns the entry's value shape.
func (e *Entry) Kind() EntryKind { return e.val.kind }

// Field returns a sub-field of a table-like entry.
func (e *Entry) Field(name string) (*Entry, bool) {
	if e.val.kind != KindTableLike {
		return nil, false
	}
	val, ok := e.val.fields[name]
	if !ok {
		return nil, false
	}
	return &Entry{doc: e.doc, name: name, val: val}, true
}

// SetString replaces a string value with a freshly quoted one. The entry
// must be string-valued.
func (e *Entry) SetString(value string) error {
	if e.val.kind != KindString {
		return fmt.Errorf("tomldoc: entry %q is not a string value", e.name)
	}
	e.doc.edits = append(e.doc.edits, edit{start: e.val.val.start, end: e.val.val.end, text: Quote(value)})
	return nil
}
