package tsfront

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/cxref/internal/unit"
)

// declarationTable is the result of one flattening pass over a parsed
// tree: every recorded item, in document order, plus the set of files
// #include'd by the translation unit.
type declarationTable struct {
	items    []*item
	includes []string
}

// buildDeclarationTable walks root once, collecting definition and usage
// items and resolving usages against a same-file, name-keyed declaration
// map. This is a syntactic approximation of libclang's semantic USR
// resolution: it resolves a call or type reference only if a matching
// declaration with the same spelling appears earlier in the same file.
func buildDeclarationTable(tu *translationUnit, root *tree_sitter.Node) *declarationTable {
	b := &builder{tu: tu, decls: make(map[string]*item)}
	b.walk(root, nil)
	return &declarationTable{items: b.items, includes: b.includes}
}

type builder struct {
	tu       *translationUnit
	decls    map[string]*item
	items    []*item
	includes []string
}

func (b *builder) text(n *tree_sitter.Node) string {
	return string(b.tu.content[n.StartByte():n.EndByte()])
}

func (b *builder) location(n *tree_sitter.Node) unit.Location {
	p := n.StartPosition()
	return unit.Location{Path: b.tu.filename, Line: int(p.Row) + 1, Col: int(p.Column) + 1}
}

func (b *builder) walk(n *tree_sitter.Node, parent *item) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "preproc_include":
		b.addInclude(n)
		return

	case "access_specifier":
		b.items = append(b.items, &item{kind: unit.KindAccessSpecifier})
		return

	case "function_definition":
		b.visitFunctionDefinition(n, parent)
		return

	case "class_specifier", "struct_specifier", "enum_specifier":
		b.visitTypeSpecifier(n, parent)
		return

	case "namespace_definition":
		b.visitNamespace(n, parent)
		return

	case "call_expression":
		b.visitCall(n, parent)

	case "type_identifier":
		b.visitTypeReference(n, parent)
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		b.walk(n.Child(i), parent)
	}
}

func (b *builder) addInclude(n *tree_sitter.Node) {
	raw := b.text(n)
	// raw is '#include "foo.h"' or '#include <foo.h>'; strip to the path.
	start := -1
	var closer byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '"' || raw[i] == '<' {
			start = i + 1
			if raw[i] == '"' {
				closer = '"'
			} else {
				closer = '>'
			}
			break
		}
	}
	if start < 0 {
		return
	}
	end := start
	for end < len(raw) && raw[end] != closer {
		end++
	}
	if end > start {
		b.includes = append(b.includes, raw[start:end])
	}
}

func (b *builder) visitFunctionDefinition(n *tree_sitter.Node, parent *item) {
	declarator := n.ChildByFieldName("declarator")
	name, nameNode, fnDeclarator := b.declaratorName(declarator)
	if name == "" {
		b.walkChildren(n, parent)
		return
	}

	params := ""
	if fnDeclarator != nil {
		if pl := fnDeclarator.ChildByFieldName("parameters"); pl != nil {
			params = b.text(pl)
		}
	}

	it := &item{
		isDef:  true,
		usr:    synthesizeUSR("function", name, parent),
		name:   name + params,
		loc:    b.location(nameNode),
		parent: parent,
	}
	b.items = append(b.items, it)
	b.decls[name] = it

	if body := n.ChildByFieldName("body"); body != nil {
		b.walk(body, it)
	}
}

func (b *builder) visitTypeSpecifier(n *tree_sitter.Node, parent *item) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		b.walkChildren(n, parent)
		return
	}
	name := b.text(nameNode)
	it := &item{
		isDef:  true,
		usr:    synthesizeUSR(n.Kind(), name, parent),
		name:   name,
		loc:    b.location(nameNode),
		parent: parent,
	}
	b.items = append(b.items, it)
	b.decls[name] = it

	if body := n.ChildByFieldName("body"); body != nil {
		b.walk(body, it)
	}
}

func (b *builder) visitNamespace(n *tree_sitter.Node, parent *item) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		b.walkChildren(n, parent)
		return
	}
	name := b.text(nameNode)
	it := &item{
		isDef:  true,
		usr:    synthesizeUSR("namespace", name, parent),
		name:   name,
		loc:    b.location(nameNode),
		parent: parent,
	}
	b.items = append(b.items, it)
	b.decls[name] = it

	if body := n.ChildByFieldName("body"); body != nil {
		b.walk(body, it)
	}
}

func (b *builder) visitCall(n *tree_sitter.Node, parent *item) {
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" {
		return
	}
	name := b.text(fn)
	b.addUsage(name, b.location(fn), parent)
}

func (b *builder) visitTypeReference(n *tree_sitter.Node, parent *item) {
	name := b.text(n)
	b.addUsage(name, b.location(n), parent)
}

func (b *builder) addUsage(name string, loc unit.Location, parent *item) {
	decl, ok := b.decls[name]
	if !ok {
		return // unresolved: matches libclang's "no USR, not recordable" path
	}
	b.items = append(b.items, &item{
		isDef:    false,
		name:     name,
		loc:      loc,
		parent:   parent,
		refUsr:   decl.usr,
		resolved: true,
	})
}

func (b *builder) walkChildren(n *tree_sitter.Node, parent *item) {
	for i := uint(0); i < n.ChildCount(); i++ {
		b.walk(n.Child(i), parent)
	}
}

// declaratorName extracts the declared identifier's spelling and its own
// node (for the name's spelling location, not the enclosing declarator's)
// from a (possibly pointer/reference-wrapped) declarator, plus the
// innermost function_declarator node if there is one (so callers can
// reach its parameter list).
func (b *builder) declaratorName(n *tree_sitter.Node) (name string, nameNode, fnDeclarator *tree_sitter.Node) {
	if n == nil {
		return "", nil, nil
	}
	switch n.Kind() {
	case "identifier", "field_identifier", "qualified_identifier", "destructor_name", "operator_name":
		return b.text(n), n, nil
	case "function_declarator":
		inner := n.ChildByFieldName("declarator")
		name, nameNode, _ := b.declaratorName(inner)
		return name, nameNode, n
	case "pointer_declarator", "reference_declarator", "parenthesized_declarator":
		return b.declaratorName(n.ChildByFieldName("declarator"))
	}
	return "", nil, nil
}
