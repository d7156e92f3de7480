package composer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// indentUnit matches Composer's own four-space serialization style.
const indentUnit = "    "

type nodeKind int

const (
	literalNode nodeKind = iota
	objectNode
	arrayNode
)

// Node is one value in a parsed JSON document. Object members keep their
// declared order; scalar values keep their literal bytes so an unmodified
// subtree round-trips without content changes.
type Node struct {
	kind    nodeKind
	lit     json.RawMessage
	keys    []string
	members map[string]*Node
	rawKeys map[string]json.RawMessage
	items   []*Node
}

// Document is an order-preserving representation of a JSON file whose top
// level is an object.
type Document struct {
	root *Node
}

// ParseDocument parses JSON bytes into a Document.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	p := &docParser{data: data, dec: dec}

	root, err := p.parseValue()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON document: %w", err)
	}
	if root.kind != objectNode {
		return nil, fmt.Errorf("parsing JSON document: top-level value is not an object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parsing JSON document: trailing content after top-level object")
	}
	return &Document{root: root}, nil
}

// LoadDocument reads and parses a JSON file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Root returns the top-level object node.
func (d *Document) Root() *Node {
	return d.root
}

// Encode serializes the document with stable four-space indentation and a
// trailing newline.
func (d *Document) Encode() []byte {
	var buf bytes.Buffer
	writeNode(&buf, d.root, 0)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Save writes the document to a temporary sibling file and atomically
// renames it over path.
func (d *Document) Save(path string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, d.Encode(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// docParser keeps the source bytes alongside the decoder so scalar string
// literals can be stored verbatim. Round-tripping through json.Marshal
// would rewrite escape sequences: PHP-style "\/" unescapes to "/", and
// "&", "<", ">" become \uXXXX. Keeping the original bytes makes an
// unmodified subtree content-stable.
type docParser struct {
	data []byte
	dec  *json.Decoder
}

func (p *docParser) parseValue() (*Node, error) {
	start := p.dec.InputOffset()
	tok, err := p.dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := NewObject()
			for p.dec.More() {
				keyStart := p.dec.InputOffset()
				keyTok, err := p.dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				rawKey := p.rawStringLiteral(keyStart)
				val, err := p.parseValue()
				if err != nil {
					return nil, err
				}
				n.Set(key, val)
				if n.rawKeys == nil {
					n.rawKeys = make(map[string]json.RawMessage)
				}
				n.rawKeys[key] = rawKey
			}
			if _, err := p.dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return n, nil
		case '[':
			n := NewArray()
			for p.dec.More() {
				val, err := p.parseValue()
				if err != nil {
					return nil, err
				}
				n.items = append(n.items, val)
			}
			if _, err := p.dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		return &Node{kind: literalNode, lit: json.RawMessage(t.String())}, nil
	case string:
		return &Node{kind: literalNode, lit: p.rawStringLiteral(start)}, nil
	case bool:
		if t {
			return &Node{kind: literalNode, lit: json.RawMessage("true")}, nil
		}
		return &Node{kind: literalNode, lit: json.RawMessage("false")}, nil
	case nil:
		return &Node{kind: literalNode, lit: json.RawMessage("null")}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// rawStringLiteral slices the just-decoded string literal out of the source.
// Between start and the decoder's current offset lie only separators and
// whitespace before the literal, so the first quote begins it; the decoder
// stops right after the closing quote.
func (p *docParser) rawStringLiteral(start int64) json.RawMessage {
	seg := p.data[start:p.dec.InputOffset()]
	if i := bytes.IndexByte(seg, '"'); i >= 0 {
		seg = seg[i:]
	}
	lit := make(json.RawMessage, len(seg))
	copy(lit, seg)
	return lit
}

func writeNode(buf *bytes.Buffer, n *Node, depth int) {
	switch n.kind {
	case literalNode:
		buf.Write(n.lit)
	case objectNode:
		if len(n.keys) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteString("{\n")
		for i, key := range n.keys {
			writeIndent(buf, depth+1)
			buf.Write(n.keyLiteral(key))
			buf.WriteString(": ")
			writeNode(buf, n.members[key], depth+1)
			if i < len(n.keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')
	case arrayNode:
		if len(n.items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteString("[\n")
		for i, item := range n.items {
			writeIndent(buf, depth+1)
			writeNode(buf, item, depth+1)
			if i < len(n.items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte(']')
	}
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indentUnit)
	}
}

func encodeString(s string) []byte {
	out, _ := json.Marshal(s)
	return out
}

// keyLiteral returns the member name as it appeared in the source, falling
// back to a fresh encoding for keys added after parsing. Replacing a
// member's value keeps the original key text.
func (n *Node) keyLiteral(key string) []byte {
	if raw, ok := n.rawKeys[key]; ok {
		return raw
	}
	return encodeString(key)
}

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{kind: objectNode, members: make(map[string]*Node)}
}

// NewArray returns an empty array node.
func NewArray() *Node {
	return &Node{kind: arrayNode}
}

// NewString returns a string literal node.
func NewString(s string) *Node {
	return &Node{kind: literalNode, lit: encodeString(s)}
}

// IsObject reports whether the node is a JSON object.
func (n *Node) IsObject() bool { return n != nil && n.kind == objectNode }

// IsArray reports whether the node is a JSON array.
func (n *Node) IsArray() bool { return n != nil && n.kind == arrayNode }

// StringValue returns the node's value if it is a string literal.
func (n *Node) StringValue() (string, bool) {
	if n == nil || n.kind != literalNode {
		return "", false
	}
	var s string
	if err := json.Unmarshal(n.lit, &s); err != nil {
		return "", false
	}
	return s, true
}

// Member returns the named member of an object node, or nil.
func (n *Node) Member(key string) *Node {
	if !n.IsObject() {
		return nil
	}
	return n.members[key]
}

// Path walks nested object members and returns the node at the end, or nil.
func (n *Node) Path(keys ...string) *Node {
	cur := n
	for _, key := range keys {
		cur = cur.Member(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Keys returns an object's member names in declared order.
func (n *Node) Keys() []string {
	if !n.IsObject() {
		return nil
	}
	return n.keys
}

// Items returns an array's elements in order.
func (n *Node) Items() []*Node {
	if !n.IsArray() {
		return nil
	}
	return n.items
}

// Set adds or replaces a member on an object node. A new key is appended
// after the existing members; replacing keeps the original position.
func (n *Node) Set(key string, val *Node) {
	if !n.IsObject() {
		return
	}
	if _, exists := n.members[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.members[key] = val
}

// EnsureObject returns the named member, creating an empty object member if
// absent. It fails if the member exists with a non-object value.
func (n *Node) EnsureObject(key string) (*Node, error) {
	if existing := n.Member(key); existing != nil {
		if !existing.IsObject() {
			return nil, fmt.Errorf("%q is not an object", key)
		}
		return existing, nil
	}
	obj := NewObject()
	n.Set(key, obj)
	return obj, nil
}

// Append adds an element to an array node.
func (n *Node) Append(val *Node) {
	if !n.IsArray() {
		return
	}
	n.items = append(n.items, val)
}

// copyFile duplicates src to dst, preserving content but not metadata.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
