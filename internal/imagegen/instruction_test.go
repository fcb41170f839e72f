package imagegen

import (
	"strings"
	"testing"
)

func TestBuildInstruction(t *testing.T) {
	got := BuildInstruction("a cat astronaut")

	checks := []string{
		`"a cat astronaut"`,
		"16:9 aspect ratio",
		"central 80%",
		"DO NOT add people",
		"DO NOT invent text",
	}
	for _, expect := range checks {
		if !strings.Contains(got, expect) {
			t.Fatalf("instruction missing %q: %s", expect, got)
		}
	}
}

func TestBuildInstructionTrimsPrompt(t *testing.T) {
	got := BuildInstruction("  mountain sunrise  ")
	if !strings.Contains(got, `"mountain sunrise"`) {
		t.Fatalf("prompt not trimmed: %s", got)
	}
}
