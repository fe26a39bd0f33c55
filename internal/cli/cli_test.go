package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestChatCommandRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"chat"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error without OPENAI_API_KEY")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error = %v", err)
	}
}

func TestRenderErrorContainsMessage(t *testing.T) {
	// Execute() errors are silenced on the command tree, so the rendered
	// banner is the only place startup failures become visible.
	out := renderError(errors.New("OPENAI_API_KEY is required"))
	if !strings.Contains(out, "OPENAI_API_KEY is required") {
		t.Errorf("rendered error hides the message: %q", out)
	}
	if !strings.Contains(out, "An error occurred") {
		t.Errorf("rendered error missing banner prefix: %q", out)
	}
}

func TestWelcomeTitle(t *testing.T) {
	if welcomeTitle != "Toyota Agentic Assistant" {
		t.Errorf("welcomeTitle = %q", welcomeTitle)
	}
}
