package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/warcsift/internal/archive"
	"github.com/nao1215/warcsift/internal/config"
	"github.com/nao1215/warcsift/internal/database"
	"github.com/nao1215/warcsift/internal/log"
	"github.com/nao1215/warcsift/internal/model"
	"github.com/nao1215/warcsift/internal/nlp"
	"github.com/nao1215/warcsift/internal/quality"
)

var (
	archiveProse  = strings.Repeat("The archive keeps historical websites for researchers and the crawler visits pages every night. ", 10)
	volcanoProse  = strings.Repeat("The volcano erupted with molten lava and the villagers fled toward coastal shelters quickly. ", 10)
	germanProse   = strings.Repeat("Der Vulkan brach aus und die Dorfbewohner flohen schnell zu den Notunterkünften an der Küste. ", 10)
	gibberishText = strings.Repeat("xkcdq zzptr qwrtp bcdfg hjklm ", 8)
)

// fakeDetector calls text English when it contains the word "the".
type fakeDetector struct{}

func (fakeDetector) Confidences(text string) ([]quality.Confidence, error) {
	if slices.Contains(strings.Fields(strings.ToLower(text)), "the") {
		return []quality.Confidence{{Language: quality.English, Value: 0.95}, {Language: "German", Value: 0.05}}, nil
	}
	return []quality.Confidence{{Language: "German", Value: 0.9}, {Language: quality.English, Value: 0.1}}, nil
}

// fakeAnalyzer avoids loading tagging models.
type fakeAnalyzer struct {
	panicOn string
}

func (a fakeAnalyzer) Features(text string, topK, _ int) (nlp.Features, error) {
	if a.panicOn != "" && strings.Contains(text, a.panicOn) {
		panic("analyzer exploded")
	}
	cleaned := nlp.CleanText(text)
	var ents model.Entities
	ents.Add("TOPIC", "archive")
	return nlp.Features{
		CleanedText: cleaned,
		Keywords:    nlp.ExtractKeywords(cleaned, topK),
		Summary:     strings.SplitAfter(text, ".")[0],
		Entities:    ents,
	}, nil
}

type page struct {
	url     string
	headers string
	body    string
}

func htmlPage(url, title, text string) page {
	return page{
		url:     url,
		headers: "Content-Type: text/html; charset=utf-8\r\n",
		body:    "<html><title>" + title + "</title><body><p>" + text,
	}
}

func writeWARC(t *testing.T, pages ...page) string {
	t.Helper()
	var buf bytes.Buffer
	w := archive.NewWriter(&buf)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range pages {
		msg := []byte("HTTP/1.1 200 OK\r\n" + p.headers + "\r\n" + p.body)
		if err := w.WriteRecord(archive.NewResponseRecord(p.url, msg, at)); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "crawl.warc.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T, archivePath string) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.ArchivePath = archivePath
	cfg.DBDir = t.TempDir()
	cfg.Workers = 4
	return cfg
}

func openDB(t *testing.T, cfg *config.Config) *database.WebpageDB {
	t.Helper()
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func run(t *testing.T, cfg *config.Config, db Store, res Resources, opts ...Option) (*model.RunSummary, error) {
	t.Helper()
	opts = append([]Option{WithLogger(log.Discard())}, opts...)
	runner, err := NewRunner(cfg, res, db, opts...)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner.Run(context.Background())
}

var fakes = Resources{Detector: fakeDetector{}, Analyzer: fakeAnalyzer{}}

func TestRunnerScenarios(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("english html page is retained", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, writeWARC(t, htmlPage("http://a.example/", "T", archiveProse)))
		db := openDB(t, cfg)

		summary, err := run(t, cfg, db, fakes)
		if err != nil {
			t.Fatal(err)
		}
		if summary.Retained != 1 || summary.PagesStored != 1 {
			t.Fatalf("unexpected summary %+v", summary)
		}
		got, err := db.GetWebpageByURL(ctx, "http://a.example/")
		if err != nil || got == nil {
			t.Fatalf("page not stored: %v", err)
		}
		if got.ContentType != model.ContentTypeHTML || got.Title != "T" || got.LanguageScore < 0.8 {
			t.Errorf("unexpected page %+v", got)
		}
		if summary.ArchiveDigest == "" {
			t.Error("expected an archive digest")
		}
		runs, err := db.ListRuns(ctx, 5)
		if err != nil || len(runs) != 1 || runs[0].ID != summary.ID {
			t.Errorf("run not recorded: %v %v", runs, err)
		}
	})

	t.Run("gibberish and foreign text are rejected by reason", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, writeWARC(t,
			htmlPage("http://noise.example/", "N", "the "+gibberishText),
			htmlPage("http://de.example/", "D", germanProse),
			page{url: "http://img.example/x.png", headers: "Content-Type: image/png\r\n", body: "\x89PNG"},
			htmlPage("http://short.example/", "S", "The end."),
		))
		db := openDB(t, cfg)

		summary, err := run(t, cfg, db, fakes)
		if err != nil {
			t.Fatal(err)
		}
		want := map[model.SkipReason]int{
			model.SkipLowQuality: 1,
			model.SkipNotEnglish: 1,
			model.SkipNonText:    1,
			model.SkipTooShort:   1,
		}
		for reason, n := range want {
			if summary.Skipped[reason] != n {
				t.Errorf("%s: expected %d, got %d", reason, n, summary.Skipped[reason])
			}
		}
		if summary.Retained != 0 || summary.PagesStored != 0 {
			t.Errorf("nothing should be stored: %+v", summary)
		}
	})

	t.Run("near-identical pages get one strong edge, unrelated pages none", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, writeWARC(t,
			htmlPage("http://a.example/", "A", archiveProse),
			htmlPage("http://b.example/", "B", archiveProse+" Contact us."),
			htmlPage("http://v.example/", "V", volcanoProse),
		))
		db := openDB(t, cfg)

		summary, err := run(t, cfg, db, fakes)
		if err != nil {
			t.Fatal(err)
		}
		if summary.EdgesStored != 1 {
			t.Fatalf("expected one edge, got %d", summary.EdgesStored)
		}
		a, _ := db.GetWebpageByURL(ctx, "http://a.example/")
		v, _ := db.GetWebpageByURL(ctx, "http://v.example/")
		similar, err := db.GetSimilarWebpages(ctx, a.ID, 5, 0.5)
		if err != nil {
			t.Fatal(err)
		}
		if len(similar) != 1 || similar[0].URL != "http://b.example/" || similar[0].Similarity < 0.9 {
			t.Errorf("unexpected neighbours %+v", similar)
		}
		if none, _ := db.GetSimilarWebpages(ctx, v.ID, 5, 0); len(none) != 0 {
			t.Errorf("volcano page should have no neighbours, got %+v", none)
		}
	})

	t.Run("re-ingesting a url updates the row in place", func(t *testing.T) {
		t.Parallel()
		first := testConfig(t, writeWARC(t, htmlPage("http://a.example/", "Old", archiveProse)))
		db := openDB(t, first)
		if _, err := run(t, first, db, fakes); err != nil {
			t.Fatal(err)
		}
		before, _ := db.GetWebpageByURL(ctx, "http://a.example/")

		second := testConfig(t, writeWARC(t, htmlPage("http://a.example/", "New", volcanoProse)))
		second.DBDir = first.DBDir
		if _, err := run(t, second, db, fakes); err != nil {
			t.Fatal(err)
		}
		after, err := db.GetWebpageMetadata(ctx, before.ID)
		if err != nil || after == nil {
			t.Fatalf("page lost: %v", err)
		}
		if after.Title != "New" || !strings.Contains(after.CleanedText, "volcano") {
			t.Errorf("update not visible: %+v", after)
		}
		if n, _ := db.CountWebpages(ctx); n != 1 {
			t.Errorf("expected one row, got %d", n)
		}
	})

	t.Run("invalid gzip body falls back to raw bytes", func(t *testing.T) {
		t.Parallel()
		p := htmlPage("http://gz.example/", "G", archiveProse)
		p.headers += "Content-Encoding: gzip\r\n"
		cfg := testConfig(t, writeWARC(t, p))
		db := openDB(t, cfg)

		summary, err := run(t, cfg, db, fakes)
		if err != nil {
			t.Fatal(err)
		}
		if summary.Retained != 1 || summary.Errors != 0 {
			t.Errorf("unexpected summary %+v", summary)
		}
	})

	t.Run("duplicate captures keep the later one", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, writeWARC(t,
			htmlPage("http://dup.example/", "First", archiveProse),
			htmlPage("http://dup.example/", "Second", archiveProse),
		))
		db := openDB(t, cfg)

		summary, err := run(t, cfg, db, fakes)
		if err != nil {
			t.Fatal(err)
		}
		if summary.Duplicates != 1 || summary.PagesStored != 1 || summary.EdgesStored != 0 {
			t.Errorf("unexpected summary %+v", summary)
		}
		got, _ := db.GetWebpageByURL(ctx, "http://dup.example/")
		if got == nil || got.Title != "Second" {
			t.Errorf("expected the later capture, got %+v", got)
		}
	})
}

func TestRunnerErrors(t *testing.T) {
	t.Parallel()

	t.Run("panic in one record does not abort the batch", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, writeWARC(t,
			htmlPage("http://boom.example/", "B", volcanoProse),
			htmlPage("http://ok.example/", "O", archiveProse),
		))
		db := openDB(t, cfg)
		res := Resources{Detector: fakeDetector{}, Analyzer: fakeAnalyzer{panicOn: "volcano"}}

		summary, err := run(t, cfg, db, res)
		if err != nil {
			t.Fatal(err)
		}
		if summary.Errors != 1 || summary.PagesStored != 1 {
			t.Errorf("unexpected summary %+v", summary)
		}
	})

	t.Run("missing archive is fatal", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.warc.gz"))
		summary, err := run(t, cfg, openDB(t, cfg), fakes)
		if err == nil || summary != nil {
			t.Errorf("expected fatal error, got %v %v", summary, err)
		}
	})

	t.Run("missing resources are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewRunner(config.NewConfig(), Resources{Detector: fakeDetector{}}, nil)
		if !errors.Is(err, ErrMissingResource) {
			t.Errorf("expected ErrMissingResource, got %v", err)
		}
	})

	t.Run("floor below the store floor is rejected before any write", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, writeWARC(t,
			htmlPage("http://a.example/", "A", archiveProse),
			htmlPage("http://b.example/", "B", volcanoProse),
		))
		cfg.SimilarityFloor = 0.05
		db := openDB(t, cfg)
		_, err := NewRunner(cfg, fakes, db, WithLogger(log.Discard()))
		if !errors.Is(err, config.ErrInvalidSimilarityFloor) {
			t.Fatalf("expected ErrInvalidSimilarityFloor, got %v", err)
		}
		if n, _ := db.CountWebpages(context.Background()); n != 0 {
			t.Errorf("expected no rows, got %d", n)
		}
	})

	t.Run("cancelled run writes nothing", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, writeWARC(t, htmlPage("http://a.example/", "A", archiveProse)))
		db := openDB(t, cfg)
		runner, err := NewRunner(cfg, fakes, db, WithLogger(log.Discard()))
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		summary, err := runner.Run(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if !summary.Cancelled {
			t.Error("summary should be marked cancelled")
		}
		if n, _ := db.CountWebpages(context.Background()); n != 0 {
			t.Errorf("expected no rows, got %d", n)
		}
	})
}

type countingObserver struct{ n atomic.Int64 }

func (c *countingObserver) ObserveOutcome(model.Outcome) { c.n.Add(1) }

func TestFilter(t *testing.T) {
	t.Parallel()

	path := writeWARC(t,
		htmlPage("http://keep1.example/", "K1", archiveProse),
		htmlPage("http://drop.example/", "D", germanProse),
		htmlPage("http://keep2.example/", "K2", volcanoProse),
		page{url: "http://img.example/", headers: "Content-Type: image/gif\r\n", body: "GIF89a"},
	)
	cfg := testConfig(t, path)
	obs := &countingObserver{}

	var out bytes.Buffer
	summary, err := Filter(context.Background(), cfg, fakeDetector{}, &out, WithLogger(log.Discard()), WithObserver(obs))
	if err != nil {
		t.Fatal(err)
	}
	if summary.PagesStored != 2 || summary.Skipped[model.SkipNotEnglish] != 1 || summary.Skipped[model.SkipNonText] != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if obs.n.Load() != 4 {
		t.Errorf("observer saw %d outcomes", obs.n.Load())
	}

	filtered := filepath.Join(t.TempDir(), "filtered.warc.gz")
	if err := os.WriteFile(filtered, out.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err := archive.Open(filtered)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close() //nolint:errcheck // test

	var urls []string
	for {
		rec, err := r.Next()
		if err != nil {
			break
		}
		urls = append(urls, rec.TargetURI())
		resp, err := rec.HTTPResponse(0)
		if err != nil || !strings.Contains(string(resp.Body), "<title>") {
			t.Errorf("payload not preserved for %s", rec.TargetURI())
		}
	}
	if strings.Join(urls, ",") != "http://keep1.example/,http://keep2.example/" {
		t.Errorf("unexpected kept records %v", urls)
	}
}

func TestArena(t *testing.T) {
	t.Parallel()

	a := NewArena()
	a.Add(5, &model.Page{URL: "http://b/", Title: "b"})
	a.Add(1, &model.Page{URL: "http://a/", Title: "a-late"})
	a.Add(0, &model.Page{URL: "http://a/", Title: "a-early"})
	a.Add(3, &model.Page{URL: "http://c/", Title: "c"})

	pages := a.Pages()
	var titles []string
	for _, p := range pages {
		titles = append(titles, p.Title)
	}
	if strings.Join(titles, ",") != "a-late,c,b" {
		t.Errorf("unexpected order %v", titles)
	}
	if a.Len() != 3 || a.Duplicates() != 1 {
		t.Errorf("len=%d duplicates=%d", a.Len(), a.Duplicates())
	}
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(config.NewConfig(), fakes, nil, WithLogger(log.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	want := "response,extract,length,gate,features"
	if got := strings.Join(r.pipeline.StepNames(), ","); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
