package rewrite

import (
	"strings"
	"testing"
)

func TestBuildPromptDeterministic(t *testing.T) {
	a := BuildPrompt("rename foo to bar", "def foo(): pass\n")
	b := BuildPrompt("rename foo to bar", "def foo(): pass\n")
	if a != b {
		t.Fatalf("prompts differ:\n%q\n%q", a, b)
	}
}

func TestBuildPromptEmbedsVerbatim(t *testing.T) {
	instruction := "use ## Instruction literally\nand keep `ticks`"
	content := "# Source code\nprint('```')\n"

	prompt := BuildPrompt(instruction, content)

	if !strings.HasPrefix(prompt, promptPreamble) {
		t.Fatalf("prompt does not start with preamble: %q", prompt)
	}
	if !strings.Contains(prompt, instruction) {
		t.Fatalf("instruction not embedded verbatim: %q", prompt)
	}
	if !strings.HasSuffix(prompt, content) {
		t.Fatalf("content not embedded verbatim at the end: %q", prompt)
	}
	if strings.Index(prompt, instruction) > strings.LastIndex(prompt, content) {
		t.Fatal("instruction must precede the source code")
	}
}

func TestBuildPromptLayout(t *testing.T) {
	got := BuildPrompt("I", "C")
	want := promptPreamble + "\n\n## Instruction\n\nI\n\n# Source code\n\nC"
	if got != want {
		t.Fatalf("prompt = %q, want %q", got, want)
	}
}
