package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
)

// TestHelperProcess stands in for the external engine when re-invoked by the
// tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	var keywordsFile string
	for i, arg := range args {
		if arg == "--keywords" && i+1 < len(args) {
			keywordsFile = args[i+1]
		}
	}

	switch os.Getenv("HELPER_MODE") {
	case "null":
		fmt.Print("null")
	case "fail":
		fmt.Fprint(os.Stderr, "crawler blew up")
		os.Exit(3)
	default:
		data, _ := os.ReadFile(keywordsFile)
		keyword := strings.Split(strings.TrimSpace(string(data)), "\n")[0]
		digest := pushDomain.Digest{
			GroupedMatches: map[string][]pushDomain.Item{keyword: {{Title: keyword + " headline", URL: "https://x"}}},
		}
		json.NewEncoder(os.Stdout).Encode(digest)
	}
}

func helperAnalyzer(t *testing.T, mode string) *CommandAnalyzer {
	t.Helper()
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("HELPER_MODE", mode)

	a, err := NewCommandAnalyzer(os.Args[0] + " -test.run=TestHelperProcess --")
	if err != nil {
		t.Fatalf("analyzer: %v", err)
	}
	return a
}

func helperSnapshot(t *testing.T) *pushDomain.Snapshot {
	t.Helper()
	dir := t.TempDir()
	snap := &pushDomain.Snapshot{
		SubscriberID: "u1",
		ConfigFile:   dir + "/config.yaml",
		KeywordsFile: dir + "/frequency_words.txt",
	}
	os.WriteFile(snap.ConfigFile, []byte("app: {}\n"), 0600)
	os.WriteFile(snap.KeywordsFile, []byte("芯片\nAI\n"), 0600)
	return snap
}

func TestCommandAnalyzerParsesDigest(t *testing.T) {
	digest, err := helperAnalyzer(t, "ok").Analyze(context.Background(), helperSnapshot(t))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if digest == nil || len(digest.GroupedMatches["芯片"]) != 1 {
		t.Fatalf("unexpected digest: %+v", digest)
	}
}

func TestCommandAnalyzerNullMeansNoDigest(t *testing.T) {
	digest, err := helperAnalyzer(t, "null").Analyze(context.Background(), helperSnapshot(t))
	if err != nil || digest != nil {
		t.Fatalf("expected nil digest, got %+v (%v)", digest, err)
	}
}

func TestCommandAnalyzerFailure(t *testing.T) {
	_, err := helperAnalyzer(t, "fail").Analyze(context.Background(), helperSnapshot(t))
	if err == nil {
		t.Fatal("expected an error for a failing engine")
	}
}

func TestNewCommandAnalyzerRejectsEmpty(t *testing.T) {
	if _, err := NewCommandAnalyzer("   "); err == nil {
		t.Fatal("expected an error for an empty command")
	}
}
