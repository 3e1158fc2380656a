package treesitter

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"hlkit/internal/grammar"
)

// classify returns the category for node. whole is true when the node is
// coloured as one span instead of by its leaves. isKey marks nodes under
// the key of a mapping pair.
func (l *Language) classify(node *sitter.Node, parentType, grandType string, isKey bool, src []byte) (cat grammar.Category, ok, whole bool) {
	nodeType := strings.ToLower(node.Type())

	if strings.Contains(nodeType, "comment") {
		return grammar.Comments, true, true
	}
	if isStringNode(nodeType) {
		if isKey {
			return grammar.Attributes, true, true
		}
		if strings.Contains(nodeType, "char") && !strings.Contains(nodeType, "string") {
			return grammar.Characters, true, true
		}
		return grammar.Strings, true, true
	}
	if node.ChildCount() > 0 {
		return 0, false, false
	}

	lexeme := strings.ToLower(strings.TrimSpace(node.Content(src)))

	if nodeType == "error" || strings.Contains(nodeType, "invalid") {
		return 0, false, false
	}
	if isNumberNode(nodeType) {
		return grammar.Numbers, true, false
	}
	switch lexeme {
	case "true", "false", "null", "nil", "none", "undefined":
		return grammar.Values, true, false
	}

	if strings.HasSuffix(nodeType, "keyword") {
		return grammar.Keywords, true, false
	}
	if strings.Contains(nodeType, "type_identifier") || strings.Contains(nodeType, "primitive_type") || strings.Contains(nodeType, "predefined_type") {
		return grammar.Types, true, false
	}

	if isIdentifierNode(nodeType) {
		if isKey {
			return grammar.Attributes, true, false
		}
		if l.isTypeContext(parentType, grandType) {
			return grammar.Types, true, false
		}
		if l.isFunctionContext(parentType, grandType) {
			return grammar.Commands, true, false
		}
		if isLikelyConstant(lexeme, node.Content(src)) {
			return grammar.Values, true, false
		}
		return grammar.Variables, nodeType == "field_identifier" || nodeType == "property_identifier", false
	}

	if !node.IsNamed() && keywordSet[lexeme] {
		return grammar.Keywords, true, false
	}
	return 0, false, false
}

func isStringNode(nodeType string) bool {
	return strings.Contains(nodeType, "string") || strings.Contains(nodeType, "char_literal") ||
		strings.Contains(nodeType, "rune_literal") || strings.Contains(nodeType, "heredoc")
}

func isNumberNode(nodeType string) bool {
	for _, part := range []string{"number", "integer", "float", "numeric", "int_literal", "imaginary_literal"} {
		if strings.Contains(nodeType, part) {
			return true
		}
	}
	return false
}

func isIdentifierNode(nodeType string) bool {
	return nodeType == "identifier" || strings.HasSuffix(nodeType, "identifier") || strings.HasSuffix(nodeType, "name")
}

func (l *Language) isFunctionContext(parentType, grandType string) bool {
	for _, t := range []string{parentType, grandType} {
		if strings.Contains(t, "function") || strings.Contains(t, "method") || strings.Contains(t, "call") {
			return true
		}
	}
	return l.functionContext[parentType] || l.functionContext[grandType]
}

func (l *Language) isTypeContext(parentType, grandType string) bool {
	for _, t := range []string{parentType, grandType} {
		for _, part := range []string{"type", "class", "struct", "interface", "trait"} {
			if strings.Contains(t, part) {
				return true
			}
		}
	}
	return l.typeContext[parentType] || l.typeContext[grandType]
}

// isLikelyConstant reports SCREAMING_CASE identifiers. lexeme is lowered,
// raw keeps the source casing.
func isLikelyConstant(lexeme, raw string) bool {
	if len(lexeme) < 2 {
		return false
	}
	hasLetter := false
	for _, r := range raw {
		switch {
		case r == '_', unicode.IsDigit(r):
		case unicode.IsLetter(r):
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		default:
			return false
		}
	}
	return hasLetter
}

var keywordSet = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "case": true,
	"catch": true, "class": true, "const": true, "continue": true, "def": true,
	"default": true, "defer": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "fallthrough": true, "finally": true,
	"fn": true, "for": true, "from": true, "func": true, "function": true,
	"go": true, "if": true, "impl": true, "import": true, "in": true,
	"include": true, "interface": true, "let": true, "loop": true,
	"map": true, "match": true, "mod": true, "module": true, "mut": true,
	"namespace": true, "new": true, "package": true, "pub": true,
	"raise": true, "range": true, "return": true, "select": true,
	"struct": true, "switch": true, "trait": true, "try": true, "type": true,
	"use": true, "var": true, "while": true, "with": true, "yield": true,
}
