package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
)

func TestResolveMergesSubscriberOverTemplate(t *testing.T) {
	r, err := NewResolver("", t.TempDir())
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	sub := subscriberDomain.NewDefault("u1", "Europe/Paris", time.Now())
	sub.ReportMode = subscriberDomain.ReportModeIncremental
	sub.Sources = []string{"weibo", "thepaper"}

	snap, err := r.Resolve(sub)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	defer snap.Release()

	if snap.App.Timezone != "Europe/Paris" || snap.Report.Mode != subscriberDomain.ReportModeIncremental {
		t.Fatalf("subscriber fields not applied: %+v", snap)
	}
	if snap.Report.MaxNewItems != 5 || snap.Report.MaxItemsPerKeyword != 3 {
		t.Fatalf("template defaults lost: %+v", snap.Report)
	}
	if len(snap.Platforms.Sources) != 2 || snap.Platforms.Sources[1].Name != "The Paper" {
		t.Fatalf("unexpected sources: %+v", snap.Platforms.Sources)
	}
	if snap.Platforms.Feeds["weibo"] == "" {
		t.Fatal("feed urls from the template are missing")
	}

	keywords, err := os.ReadFile(snap.KeywordsFile)
	if err != nil {
		t.Fatalf("read keywords: %v", err)
	}
	if strings.TrimSpace(string(keywords)) != "AI\n区块链" {
		t.Fatalf("unexpected keyword file: %q", keywords)
	}

	config, err := os.ReadFile(snap.ConfigFile)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(config), "Europe/Paris") {
		t.Fatalf("scratch config misses the timezone:\n%s", config)
	}
}

func TestResolveOverlayTemplate(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "base.yaml")
	if err := os.WriteFile(overlay, []byte("report:\n  max_new_items: 8\nplatforms:\n  feeds:\n    weibo: https://feeds.local/weibo\n"), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	r, err := NewResolver(overlay, dir)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	snap, err := r.Resolve(subscriberDomain.NewDefault("u1", "", time.Now()))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	defer snap.Release()

	if snap.Report.MaxNewItems != 8 || snap.Platforms.Feeds["weibo"] != "https://feeds.local/weibo" {
		t.Fatalf("overlay not applied: %+v", snap)
	}
	if snap.Platforms.Feeds["zhihu"] == "" {
		t.Fatal("overlay must merge with, not replace, the embedded template")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	r, err := NewResolver("", t.TempDir())
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	snap, err := r.Resolve(subscriberDomain.NewDefault("u1", "", time.Now()))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	snap.Release()
	snap.Release()

	if _, err := os.Stat(filepath.Dir(snap.ConfigFile)); !os.IsNotExist(err) {
		t.Fatal("scratch directory should be gone")
	}
}

func TestUnsupportedTemplateExtension(t *testing.T) {
	if _, err := NewResolver("base.ini", ""); err == nil {
		t.Fatal("expected an error for an unknown template format")
	}
}
