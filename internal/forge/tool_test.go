package forge

import (
	"context"
	"strings"
	"testing"

	"github.com/Bacoazul/Argos-Core/internal/tools"
)

// stubProvider records calls; trip makes any network-level call a
// test failure.
type stubProvider struct {
	t        *testing.T
	trip     bool
	gotRepo  string
	gotPath  string
	gotIssue *NewIssue
}

func (s *stubProvider) fail() {
	if s.trip {
		s.t.Error("provider reached despite local rejection")
	}
}

func (s *stubProvider) ListContents(ctx context.Context, repo, path string) ([]Entry, error) {
	s.fail()
	s.gotRepo, s.gotPath = repo, path
	return []Entry{{Name: "a.go", Path: "a.go", Type: "file", Size: 10}}, nil
}

func (s *stubProvider) ReadFile(ctx context.Context, repo, path string) (*File, error) {
	s.fail()
	s.gotRepo, s.gotPath = repo, path
	return &File{Path: path, Content: "content", Size: 7}, nil
}

func (s *stubProvider) CreateIssue(ctx context.Context, repo string, issue *NewIssue) (*Issue, error) {
	s.fail()
	s.gotRepo, s.gotIssue = repo, issue
	return &Issue{Number: 1, Title: issue.Title, State: "open", URL: "https://example.com/1"}, nil
}

func run(t *testing.T, ft *Tools, args map[string]any) (string, error) {
	t.Helper()
	return ft.Tool().Handler(context.Background(), args)
}

func TestRepoToolMissingToken(t *testing.T) {
	ft := NewTools(nil, "", nil)
	_, err := run(t, ft, map[string]any{"action": "list", "repo": "acme/app"})
	if tools.KindOf(err) != tools.KindUnauthorized {
		t.Errorf("err = %v, want unauthorized credential observation", err)
	}
}

func TestRepoToolUnknownAction(t *testing.T) {
	ft := NewTools(&stubProvider{t: t}, "", nil)
	_, err := run(t, ft, map[string]any{"action": "delete_everything", "repo": "acme/app"})
	if tools.KindOf(err) != tools.KindInvalid {
		t.Errorf("err = %v, want invalid action", err)
	}
}

func TestRepoToolPathTraversalRejectedBeforeNetwork(t *testing.T) {
	stub := &stubProvider{t: t, trip: true}
	ft := NewTools(stub, "", nil)

	for _, p := range []string{"../secrets", "a/../../b", "/abs/path"} {
		for _, action := range []string{"list", "read"} {
			_, err := run(t, ft, map[string]any{"action": action, "repo": "acme/app", "path": p})
			if tools.KindOf(err) != tools.KindPermissionDenied {
				t.Errorf("%s %q: err = %v, want permission_denied", action, p, err)
			}
		}
	}
}

func TestRepoToolPathNormalization(t *testing.T) {
	stub := &stubProvider{t: t}
	ft := NewTools(stub, "", nil)

	if _, err := run(t, ft, map[string]any{"action": "read", "repo": "acme/app", "path": "src/./sub/../main.go"}); err != nil {
		t.Fatal(err)
	}
	if stub.gotPath != "src/main.go" {
		t.Errorf("provider saw path %q, want src/main.go", stub.gotPath)
	}
}

func TestRepoToolDefaultOwner(t *testing.T) {
	stub := &stubProvider{t: t}
	ft := NewTools(stub, "acme", nil)

	if _, err := run(t, ft, map[string]any{"action": "list", "repo": "app"}); err != nil {
		t.Fatal(err)
	}
	if stub.gotRepo != "acme/app" {
		t.Errorf("provider saw repo %q, want acme/app", stub.gotRepo)
	}

	// No default owner configured: bare names are rejected.
	bare := NewTools(stub, "", nil)
	if _, err := run(t, bare, map[string]any{"action": "list", "repo": "app"}); tools.KindOf(err) != tools.KindInvalid {
		t.Errorf("err = %v, want invalid repo", err)
	}
}

func TestRepoToolListFormatting(t *testing.T) {
	ft := NewTools(&stubProvider{t: t}, "", nil)
	out, err := run(t, ft, map[string]any{"action": "list", "repo": "acme/app", "path": "."})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a.go (10 bytes)") {
		t.Errorf("listing = %q, want entry with size", out)
	}
}

func TestRepoToolCreateIssueTruncation(t *testing.T) {
	stub := &stubProvider{t: t}
	ft := NewTools(stub, "", nil)

	out, err := run(t, ft, map[string]any{
		"action": "create_issue",
		"repo":   "acme/app",
		"title":  strings.Repeat("t", MaxIssueTitleLen+50),
		"body":   strings.Repeat("b", MaxIssueBodyLen+50),
		"labels": []any{"bug", "urgent"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(stub.gotIssue.Title) != MaxIssueTitleLen {
		t.Errorf("title length = %d, want %d", len(stub.gotIssue.Title), MaxIssueTitleLen)
	}
	if len(stub.gotIssue.Body) > MaxIssueBodyLen+len(tools.TruncationMarker) {
		t.Errorf("body length = %d exceeds cap", len(stub.gotIssue.Body))
	}
	if got := stub.gotIssue.Labels; len(got) != 2 || got[0] != "bug" {
		t.Errorf("labels = %v", got)
	}
	if !strings.Contains(out, "truncated") {
		t.Errorf("observation %q does not flag truncation", out)
	}
}

func TestRepoToolCreateIssueRequiresTitle(t *testing.T) {
	ft := NewTools(&stubProvider{t: t}, "", nil)
	_, err := run(t, ft, map[string]any{"action": "create_issue", "repo": "acme/app", "title": "  "})
	if tools.KindOf(err) != tools.KindInvalid {
		t.Errorf("err = %v, want invalid", err)
	}
}

func TestRepoToolReadRequiresPath(t *testing.T) {
	ft := NewTools(&stubProvider{t: t}, "", nil)
	_, err := run(t, ft, map[string]any{"action": "read", "repo": "acme/app"})
	if tools.KindOf(err) != tools.KindInvalid {
		t.Errorf("err = %v, want invalid", err)
	}
}
