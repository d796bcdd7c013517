package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `
targets:
  - jack
  - xdevelopers
tweetLimit: 50
delayBetweenTargets: 2s
outputDir: /tmp/out
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Config{
		Targets:             []string{"jack", "xdevelopers"},
		TweetLimit:          50,
		DelayBetweenTargets: 2 * time.Second,
		OutputDir:           "/tmp/out",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `targets: [jack]`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TweetLimit != 10 {
		t.Errorf("TweetLimit = %d, want default 10", cfg.TweetLimit)
	}
	if cfg.DelayBetweenTargets != time.Second {
		t.Errorf("DelayBetweenTargets = %v, want default 1s", cfg.DelayBetweenTargets)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("OutputDir = %q, want default output", cfg.OutputDir)
	}
}

func TestLoadNoLimit(t *testing.T) {
	path := writeFile(t, "config.yaml", "targets: [jack]\ntweetLimit: -1\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TweetLimit != NoLimit {
		t.Errorf("TweetLimit = %d, want NoLimit", cfg.TweetLimit)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero_limit", "tweetLimit: 0"},
		{"below_sentinel", "tweetLimit: -2"},
		{"negative_delay", "delayBetweenTargets: -1s"},
		{"not_yaml", "targets: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load should fail")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load should fail on missing file")
	}
}

func TestTargetsFromFile(t *testing.T) {
	path := writeFile(t, "targets.txt", `
# team accounts
jack
@xdevelopers

  spaced
`)

	targets, err := TargetsFromFile(path)
	if err != nil {
		t.Fatalf("TargetsFromFile failed: %v", err)
	}

	want := []string{"jack", "xdevelopers", "spaced"}
	if diff := cmp.Diff(want, targets); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("TW_AUTH_TOKEN", "tok")
	t.Setenv("TW_CT0_TOKEN", "csrf")
	t.Setenv("TW_USER_AGENT", "")

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}

	if creds.AuthToken != "tok" || creds.CSRFToken != "csrf" {
		t.Errorf("creds = %+v", creds)
	}

	cookies := creds.Cookies()
	want := map[string]string{"auth_token": "tok", "ct0": "csrf"}
	if diff := cmp.Diff(want, cookies); diff != "" {
		t.Errorf("Cookies mismatch (-want +got):\n%s", diff)
	}
}

func TestCredentialsCookiesOmitEmpty(t *testing.T) {
	cookies := Credentials{AuthToken: "tok"}.Cookies()
	if _, ok := cookies["ct0"]; ok {
		t.Error("empty ct0 should be omitted")
	}
	if cookies["auth_token"] != "tok" {
		t.Errorf("auth_token = %q", cookies["auth_token"])
	}
}
