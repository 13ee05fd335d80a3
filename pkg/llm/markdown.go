package llm

import (
	"regexp"
	"strings"
)

// codeBlockPattern matches fenced code blocks with an optional language tag
// immediately after the opening fence.
var codeBlockPattern = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)```")

// CodeBlock is a fenced code block extracted from a model response.
// Lang is the empty string when the fence carries no language tag.
type CodeBlock struct {
	Lang    string
	Content string
}

// ExtractCodeBlocks extracts fenced code blocks from markdown-formatted text
// in order of appearance. Content is trimmed of surrounding whitespace.
// Returns an empty slice when the text contains no fenced blocks; callers
// decide whether that is a failure.
func ExtractCodeBlocks(text string) []CodeBlock {
	matches := codeBlockPattern.FindAllStringSubmatch(text, -1)

	blocks := make([]CodeBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, CodeBlock{
			Lang:    m[1],
			Content: strings.TrimSpace(m[2]),
		})
	}
	return blocks
}
