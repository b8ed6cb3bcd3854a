// Package prompts builds the system persona injected at the start of
// each session.
package prompts

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

const persona = `You are Argos, a capable assistant with access to tools.

Guidelines:
- Use tools when a question needs fresh information, files, or
  repository access; answer directly when you already know.
- When a tool returns an error observation, explain the problem to the
  user instead of retrying blindly.
- Keep answers concise and concrete.`

// SystemPrompt returns the persona text with the current environment
// appended. Called once per session, when the log is still empty.
func SystemPrompt() string {
	return withEnvironment(persona)
}

// FromFile returns a SystemPrompt-style function that reads the
// persona body from a file, falling back to the built-in persona when
// the file cannot be read. The environment block is appended either
// way.
func FromFile(path string) func() string {
	return func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			return SystemPrompt()
		}
		return withEnvironment(strings.TrimSpace(string(data)))
	}
}

// withEnvironment appends the dynamic environment block so the model
// knows when and where it is running.
func withEnvironment(base string) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nEnvironment:\n")
	fmt.Fprintf(&b, "- Current time: %s\n", time.Now().Format(time.RFC1123))
	fmt.Fprintf(&b, "- Operating system: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "- Working directory: %s\n", cwd)
	return b.String()
}
