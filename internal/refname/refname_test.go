package refname

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOK  bool
		wantRef RefName
	}{
		{"local branch", "refs/heads/main", true, LocalBranch("main")},
		{"local branch with slash", "refs/heads/feature/foo", true, LocalBranch("feature/foo")},
		{"remote branch", "refs/remotes/origin/main", true, RemoteBranch("origin", "main")},
		{"remote branch nested", "refs/remotes/origin/feature/foo", true, RemoteBranch("origin", "feature/foo")},
		{"tag", "refs/tags/v1.0.0", true, TagName("v1.0.0")},
		{"HEAD is not recognized", "HEAD", false, RefName{}},
		{"bare heads prefix", "refs/heads/", false, RefName{}},
		{"bare remotes prefix", "refs/remotes/", false, RefName{}},
		{"remote with no branch", "refs/remotes/origin", false, RefName{}},
		{"notes are not recognized", "refs/notes/commits", false, RefName{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.wantRef {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.wantRef)
			}
		})
	}
}

func TestRenderLocal(t *testing.T) {
	if got := RenderLocal("main"); got != "refs/heads/main" {
		t.Errorf("RenderLocal(main) = %q, want refs/heads/main", got)
	}
}

func TestRoundtrip(t *testing.T) {
	names := []string{
		"refs/heads/main",
		"refs/remotes/origin/main",
		"refs/tags/v1.0.0",
	}
	for _, name := range names {
		ref, ok := Parse(name)
		if !ok {
			t.Fatalf("Parse(%q) failed", name)
		}
		if got := ref.String(); got != name {
			t.Errorf("roundtrip %q -> %q", name, got)
		}
	}
}

func TestIsRemoteHead(t *testing.T) {
	tests := map[string]bool{
		"refs/remotes/origin/HEAD": true,
		"refs/remotes/origin/main": false,
		"refs/heads/HEAD":          false,
		"HEAD":                     false,
	}
	for name, want := range tests {
		if got := IsRemoteHead(name); got != want {
			t.Errorf("IsRemoteHead(%q) = %v, want %v", name, got, want)
		}
	}
}
