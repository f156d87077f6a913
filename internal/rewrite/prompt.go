package rewrite

import (
	"strings"
)

const promptPreamble = "You are a skilled programmer. Follow the user's instruction and modify the given source code. " +
	"Output ONLY the full modified code, with no explanation or preamble."

const (
	instructionHeading = "## Instruction"
	sourceHeading      = "# Source code"
)

// BuildPrompt embeds the instruction and the file content verbatim in the
// fixed template.  Neither string is escaped.
func BuildPrompt(instruction, content string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\n")
	b.WriteString(instructionHeading)
	b.WriteString("\n\n")
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(sourceHeading)
	b.WriteString("\n\n")
	b.WriteString(content)
	return b.String()
}
