package format

import (
	"strings"
	"testing"

	"github.com/satyamtg/git-ai/internal/authorship"
)

func TestRenderBlame(t *testing.T) {
	rec := &authorship.PromptRecord{
		AgentID: authorship.AgentID{Tool: "claude-code", ID: "c", Model: "claude-sonnet-4-5"},
	}
	lines := []BlameLine{
		{Number: 1, Text: "package main", Hash: "", Record: nil},
		{Number: 2, Text: "func main() {}", Hash: "d9978a8723e02b52", Record: rec},
	}

	out := RenderBlame(lines, false)
	if !strings.Contains(out, "claude-code") {
		t.Errorf("AI line missing tool label:\n%s", out)
	}
	if !strings.Contains(out, "d9978a8") {
		t.Errorf("AI line missing short session hash:\n%s", out)
	}
	if !strings.Contains(out, "package main") || !strings.Contains(out, "func main() {}") {
		t.Errorf("line text missing:\n%s", out)
	}
}

func TestRenderBlameVerbose(t *testing.T) {
	rec := &authorship.PromptRecord{
		AgentID:       authorship.AgentID{Tool: "cursor", ID: "c", Model: "gpt-5"},
		AcceptedLines: 4,
	}
	out := RenderBlame([]BlameLine{{Number: 1, Text: "x", Hash: "abc1234def567890", Record: rec}}, true)
	if !strings.Contains(out, "model=gpt-5") || !strings.Contains(out, "accepted=4") {
		t.Errorf("verbose detail missing:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	log := authorship.NewLog("sha")
	if !strings.Contains(Summary(log), "no AI attribution") {
		t.Error("empty log should say so")
	}

	log.Metadata.Prompts["d9978a8723e02b52"] = &authorship.PromptRecord{
		AgentID:        authorship.AgentID{Tool: "claude-code", Model: "m"},
		TotalAdditions: 3,
		AcceptedLines:  2,
	}
	out := Summary(log)
	if !strings.Contains(out, "d9978a8") || !strings.Contains(out, "+3") || !strings.Contains(out, "accepted 2") {
		t.Errorf("summary = %q", out)
	}
}
