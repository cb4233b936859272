// Package extractor pulls candidate solutions out of raw model responses.
// All functions are pure and deterministic.
package extractor

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	// answerTagRe matches a line-anchored "ANSWER: value", case-insensitive.
	answerTagRe = regexp.MustCompile(`(?im)ANSWER:[ \t]*(.+)$`)

	// numberRe matches integer and decimal tokens, used as the last-resort
	// answer extraction strategy.
	numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Code extracts a Python function definition from a model response.
//
// Strategy, in order: among fenced ```python/```py blocks, prefer the first
// one containing a definition of functionName; otherwise the first fenced
// block; otherwise a raw-text scan for "def functionName(" followed by its
// indented body. Ok is false when nothing can be located.
func Code(response, functionName string) (code string, ok bool) {
	blocks := pythonBlocks(response)

	if len(blocks) > 0 {
		needle := "def " + functionName
		for _, block := range blocks {
			if strings.Contains(block, needle) {
				return strings.TrimSpace(block), true
			}
		}
		return strings.TrimSpace(blocks[0]), true
	}

	// No fenced block: look for the bare function in raw text. The body runs
	// over consecutive indented lines and stops at the first unindented one.
	bareRe := regexp.MustCompile(
		`def ` + regexp.QuoteMeta(functionName) + `\(.*\n(?:[ \t]+.*\S.*(?:\n|$))*`)
	if m := bareRe.FindString(response); m != "" {
		return strings.TrimSpace(m), true
	}

	return "", false
}

// pythonBlocks walks the markdown AST and collects the bodies of fenced code
// blocks tagged python or py, in document order.
func pythonBlocks(response string) []string {
	source := []byte(response)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, isFenced := n.(*ast.FencedCodeBlock)
		if !isFenced {
			return ast.WalkContinue, nil
		}

		lang := string(fc.Language(source))
		if lang != "python" && lang != "py" {
			return ast.WalkContinue, nil
		}

		var body strings.Builder
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			body.Write(seg.Value(source))
		}
		blocks = append(blocks, body.String())
		return ast.WalkContinue, nil
	})
	return blocks
}

// Answer extracts a reasoning answer from a model response.
//
// The last line-anchored "ANSWER:" tag wins, so a model that changes its mind
// mid-response is scored on its final answer. When no tag is present, falls
// back to the last numeric token anywhere in the text.
func Answer(response string) (answer string, ok bool) {
	if matches := answerTagRe.FindAllStringSubmatch(response, -1); len(matches) > 0 {
		return strings.TrimSpace(matches[len(matches)-1][1]), true
	}

	if numbers := numberRe.FindAllString(response, -1); len(numbers) > 0 {
		return numbers[len(numbers)-1], true
	}

	return "", false
}
