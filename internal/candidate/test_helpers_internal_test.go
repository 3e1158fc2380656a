package candidate

import (
	"fmt"

	"hlkit/internal/grammar"
)

func makeFixtureCandidates(n int) []Candidate {
	out := make([]Candidate, n)
	for i := 0; i < n; i++ {
		name := "Go"
		file := fmt.Sprintf("pkg/mod%d/file%d.go", i%100, i%37)
		text := fmt.Sprintf("func Symbol%dHandler(input%d int) int { return input%d + %d }", i, i, i, i%11)
		kind := grammar.OutlineFunction

		switch i % 4 {
		case 1:
			name = "TypeScript"
			file = fmt.Sprintf("src/mod%d/file%d.ts", i%90, i%45)
			text = fmt.Sprintf("export const symbol%dHandler = (input%d: number) => input%d + %d", i, i, i, i%13)
			kind = grammar.OutlineValue
		case 2:
			name = "Rust"
			file = fmt.Sprintf("crates/mod%d/file%d.rs", i%70, i%29)
			text = fmt.Sprintf("pub fn symbol%d_handler(input%d: i64) -> i64 { input%d + %d }", i, i, i, i%17)
		case 3:
			name = "Python"
			file = fmt.Sprintf("py/mod%d/file%d.py", i%60, i%31)
			text = fmt.Sprintf("def symbol_%d_handler(input_%d): return input_%d + %d", i, i, i, i%19)
		}

		out[i] = Candidate{
			ID:      i + 1,
			File:    file,
			Line:    (i % 400) + 1,
			Col:     1,
			Text:    text,
			Key:     fmt.Sprintf("Symbol%dHandler", i),
			Grammar: name,
			Kind:    kind,
		}
		out[i].SemanticScore = semanticScore(kind, 0)
	}
	return out
}
