package service

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

//go:embed template.yaml
var defaultTemplate []byte

const (
	configFileName   = "config.yaml"
	keywordsFileName = "frequency_words.txt"
)

// rawBytes is a koanf provider over an in-memory document
type rawBytes []byte

func (r rawBytes) ReadBytes() ([]byte, error) {
	return r, nil
}

func (r rawBytes) Read() (map[string]interface{}, error) {
	return nil, oops.Errorf("raw bytes provider does not support Read")
}

// Resolver merges subscriber fields over the base template and materializes
// the result as scratch files for the analyzer.
type Resolver struct {
	base       *koanf.Koanf
	scratchDir string
}

// NewResolver loads the embedded template, overlaid with templatePath when set
func NewResolver(templatePath, scratchDir string) (*Resolver, error) {
	k := koanf.New(".")
	if err := k.Load(rawBytes(defaultTemplate), yaml.Parser()); err != nil {
		return nil, oops.With("context", "loading embedded template").Wrap(err)
	}

	if templatePath != "" {
		var parser koanf.Parser
		switch ext := filepath.Ext(templatePath); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported template extension: %s", ext)
		}

		if err := k.Load(file.Provider(templatePath), parser); err != nil {
			return nil, oops.With("template", templatePath).Wrap(err)
		}
	}

	if scratchDir != "" {
		if err := os.MkdirAll(scratchDir, 0o755); err != nil {
			return nil, oops.With("scratch_dir", scratchDir, "context", "failed to create scratch directory").Wrap(err)
		}
	}

	return &Resolver{base: k, scratchDir: scratchDir}, nil
}

// Resolve builds the effective snapshot for sub. The caller must Release it.
func (r *Resolver) Resolve(sub *subscriberDomain.Subscriber) (*domain.Snapshot, error) {
	k := r.base.Copy()
	k.Set("subscriber_id", sub.ID)
	k.Set("keywords", append([]string{}, sub.Keywords...))
	k.Set("app.timezone", sub.Timezone)
	k.Set("report.mode", sub.ReportMode.String())
	k.Set("platforms.sources", lo.Map(sub.Sources, func(id string, _ int) map[string]interface{} {
		return map[string]interface{}{"id": id, "name": subscriberDomain.SourceName(id)}
	}))

	var snap domain.Snapshot
	if err := k.Unmarshal("", &snap); err != nil {
		return nil, oops.With("subscriber_id", sub.ID, "context", "failed to unmarshal snapshot").Wrap(err)
	}

	dir, err := os.MkdirTemp(r.scratchDir, "digest-*")
	if err != nil {
		return nil, oops.With("subscriber_id", sub.ID, "context", "failed to create scratch directory").Wrap(err)
	}
	snap.SetRelease(func() { os.RemoveAll(dir) })

	document, err := k.Marshal(yaml.Parser())
	if err != nil {
		snap.Release()
		return nil, oops.With("subscriber_id", sub.ID, "context", "failed to marshal snapshot").Wrap(err)
	}

	snap.ConfigFile = filepath.Join(dir, configFileName)
	snap.KeywordsFile = filepath.Join(dir, keywordsFileName)

	if err := os.WriteFile(snap.ConfigFile, document, 0600); err != nil {
		snap.Release()
		return nil, oops.With("subscriber_id", sub.ID, "context", "failed to write scratch config").Wrap(err)
	}
	if err := os.WriteFile(snap.KeywordsFile, []byte(strings.Join(sub.Keywords, "\n")+"\n"), 0600); err != nil {
		snap.Release()
		return nil, oops.With("subscriber_id", sub.ID, "context", "failed to write scratch keywords").Wrap(err)
	}

	return &snap, nil
}
