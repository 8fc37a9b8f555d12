package service

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	"github.com/samber/oops"
)

const maxStderrTail = 2048

// CommandAnalyzer delegates to an external engine. The engine is invoked as
//
//	<command...> --config <snapshot.yaml> --keywords <keywords.txt>
//
// and must print a JSON digest on stdout; empty output or "null" means no
// data was available.
type CommandAnalyzer struct {
	command []string
}

// NewCommandAnalyzer parses a whitespace separated command line
func NewCommandAnalyzer(commandLine string) (*CommandAnalyzer, error) {
	command := strings.Fields(commandLine)
	if len(command) == 0 {
		return nil, oops.Errorf("analyzer command is empty")
	}
	return &CommandAnalyzer{command: command}, nil
}

func (a *CommandAnalyzer) Analyze(ctx context.Context, snap *pushDomain.Snapshot) (*pushDomain.Digest, error) {
	args := make([]string, 0, len(a.command)+3)
	args = append(args, a.command[1:]...)
	args = append(args, "--config", snap.ConfigFile, "--keywords", snap.KeywordsFile)

	cmd := exec.CommandContext(ctx, a.command[0], args...)
	cmd.Env = append(os.Environ(),
		"CONFIG_PATH="+snap.ConfigFile,
		"FREQUENCY_WORDS_PATH="+snap.KeywordsFile,
		"REPORT_MODE="+snap.Report.Mode.String(),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, oops.
			With("subscriber_id", snap.SubscriberID, "command", a.command[0], "stderr", tail(stderr.String(), maxStderrTail)).
			Wrap(err)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 || bytes.Equal(out, []byte("null")) {
		return nil, nil
	}

	var digest pushDomain.Digest
	if err := json.Unmarshal(out, &digest); err != nil {
		return nil, oops.With("subscriber_id", snap.SubscriberID, "context", "analyzer printed invalid JSON").Wrap(err)
	}
	if digest.GroupedMatches == nil {
		digest.GroupedMatches = map[string][]pushDomain.Item{}
	}
	return &digest, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
