package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSystemPromptIncludesEnvironment(t *testing.T) {
	got := SystemPrompt()

	for _, want := range []string{"Argos", "Current time:", "Operating system:", "Working directory:"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.txt")
	if err := os.WriteFile(path, []byte("You are a grumpy librarian."), 0o644); err != nil {
		t.Fatal(err)
	}

	got := FromFile(path)()
	if !strings.HasPrefix(got, "You are a grumpy librarian.") {
		t.Errorf("prompt = %q, want file persona first", got)
	}
	if !strings.Contains(got, "Working directory:") {
		t.Error("file persona missing environment block")
	}
}

func TestFromFileMissingFallsBack(t *testing.T) {
	got := FromFile("/nonexistent/persona.txt")()
	if !strings.Contains(got, "Argos") {
		t.Error("missing persona file did not fall back to built-in persona")
	}
}
