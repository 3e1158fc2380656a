// Package treesitter is a highlight backend that classifies the leaves of
// a tree-sitter parse tree. It also builds leveled outlines from
// declaration nodes.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/outline"
	"hlkit/internal/textrange"
)

// checkEvery is how many nodes are visited between cancellation checks.
const checkEvery = 512

// Parser is safe for concurrent use; each call borrows its own
// sitter.Parser.
type Parser struct {
	lang    *Language
	parsers sync.Pool
}

func NewParser(l *Language) *Parser {
	return &Parser{
		lang: l,
		parsers: sync.Pool{New: func() any {
			p := sitter.NewParser()
			p.SetLanguage(l.lang)
			return p
		}},
	}
}

func (p *Parser) Language() *Language { return p.lang }

func (p *Parser) IsEmpty() bool { return false }

// source is the UTF-8 encoding of a rune buffer with the byte offset of
// every rune.
type source struct {
	src     []byte
	offsets []int
}

func encode(text []rune) source {
	s := source{offsets: make([]int, len(text)+1)}
	buf := make([]byte, 0, len(text))
	for i, r := range text {
		s.offsets[i] = len(buf)
		buf = utf8.AppendRune(buf, r)
	}
	s.offsets[len(text)] = len(buf)
	s.src = buf
	return s
}

func (s source) runeIndex(b int) int {
	return sort.SearchInts(s.offsets, b)
}

func (s source) runeRange(n *sitter.Node) textrange.Range {
	return textrange.Range{Start: s.runeIndex(int(n.StartByte())), End: s.runeIndex(int(n.EndByte()))}
}

func (p *Parser) parse(ctx context.Context, src source) (*sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parser := p.parsers.Get().(*sitter.Parser)

	tree, err := parser.ParseCtx(ctx, nil, src.src)
	if err != nil || tree == nil {
		// an interrupted parser keeps partial state
		parser.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err == nil {
			err = errors.New("no tree")
		}
		return nil, fmt.Errorf("tree-sitter %s: %w", p.lang.Name, err)
	}
	p.parsers.Put(parser)
	return tree, nil
}

// Parse highlights rng. The whole text is parsed so nodes crossing the
// range bounds are classified in context; spans are clipped to rng.
func (p *Parser) Parse(ctx context.Context, text []rune, rng textrange.Range) ([]highlight.Highlight, error) {
	rng = rng.Clamp(len(text))
	if rng.IsEmpty() {
		return nil, nil
	}

	src := encode(text)
	tree, err := p.parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	w := walker{
		ctx:  ctx,
		lang: p.lang,
		src:  src,
		rng:  rng,
		lo:   src.offsets[rng.Start],
		hi:   src.offsets[rng.End],
		out:  make(map[grammar.Category][]textrange.Range),
	}
	w.collect(tree.RootNode(), "", "", false)
	if w.err != nil {
		return nil, w.err
	}
	return highlight.Merge(w.out), nil
}

type walker struct {
	ctx     context.Context
	lang    *Language
	src     source
	rng     textrange.Range
	lo, hi  int
	visited int
	err     error
	out     map[grammar.Category][]textrange.Range
}

func (w *walker) cancelled() bool {
	if w.err != nil {
		return true
	}
	w.visited++
	if w.visited%checkEvery == 0 {
		w.err = w.ctx.Err()
	}
	return w.err != nil
}

func (w *walker) collect(node *sitter.Node, parentType, grandType string, isKey bool) {
	if node == nil || w.cancelled() {
		return
	}
	start, end := int(node.StartByte()), int(node.EndByte())
	if end <= w.lo || start >= w.hi {
		return
	}

	cat, ok, whole := w.lang.classify(node, parentType, grandType, isKey, w.src.src)
	if ok {
		if r, ok := w.src.runeRange(node).Intersection(w.rng); ok && !r.IsEmpty() {
			w.out[cat] = append(w.out[cat], r)
		}
	}
	if whole || node.ChildCount() == 0 {
		return
	}

	nextParent := strings.ToLower(node.Type())
	var key *sitter.Node
	if w.lang.keyContext[nextParent] {
		key = node.ChildByFieldName("key")
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		w.collect(child, nextParent, parentType, isKey || sameNode(child, key))
	}
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// Outline lists declarations, each indented by the number of enclosing
// declarations.
func (p *Parser) Outline(ctx context.Context, text []rune) ([]outline.Item, error) {
	if len(text) == 0 || len(p.lang.declarations) == 0 {
		return nil, nil
	}

	src := encode(text)
	tree, err := p.parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var (
		items   []outline.Item
		visited int
		walk    func(n *sitter.Node, depth int) error
	)
	walk = func(n *sitter.Node, depth int) error {
		visited++
		if visited%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if decl, ok := p.lang.declarations[n.Type()]; ok {
			if item, ok := declarationItem(n, decl, src, depth); ok {
				items = append(items, item)
				depth++
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if err := walk(n.NamedChild(i), depth); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tree.RootNode(), 0); err != nil {
		return nil, err
	}
	return items, nil
}

func declarationItem(n *sitter.Node, decl Declaration, src source, depth int) (outline.Item, bool) {
	var name *sitter.Node
	if decl.NameField != "" {
		name = n.ChildByFieldName(decl.NameField)
	} else if n.NamedChildCount() > 0 {
		name = n.NamedChild(0)
	}
	if name == nil {
		return outline.Item{}, false
	}

	title := strings.Join(strings.Fields(name.Content(src.src)), " ")
	if decl.Kind == grammar.OutlineValue {
		title = strings.Trim(title, `"'`)
	}
	if title == "" {
		return outline.Item{}, false
	}
	return outline.Item{
		Title:  title,
		Range:  src.runeRange(name),
		Kind:   decl.Kind,
		Indent: outline.LevelIndent(depth),
	}, true
}
