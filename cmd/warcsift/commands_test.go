package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/warcsift/internal/archive"
	"github.com/nao1215/warcsift/internal/config"
	"github.com/nao1215/warcsift/internal/database"
	"github.com/nao1215/warcsift/internal/log"
	"github.com/nao1215/warcsift/internal/model"
	"github.com/nao1215/warcsift/internal/nlp"
	"github.com/nao1215/warcsift/internal/pipeline"
	"github.com/nao1215/warcsift/internal/quality"
)

var (
	gardenText = strings.Repeat("The garden needs water in the morning and the tomatoes grow quickly under warm sunlight. ", 6)
	germanText = strings.Repeat("Der Garten braucht am Morgen Wasser und die Tomaten wachsen schnell im warmen Licht. ", 6)
)

type englishDetector struct{}

func (englishDetector) Confidences(text string) ([]quality.Confidence, error) {
	if slices.Contains(strings.Fields(strings.ToLower(text)), "the") {
		return []quality.Confidence{{Language: quality.English, Value: 0.99}}, nil
	}
	return []quality.Confidence{{Language: "German", Value: 0.99}}, nil
}

type plainAnalyzer struct{}

func (plainAnalyzer) Features(text string, topK, _ int) (nlp.Features, error) {
	cleaned := nlp.CleanText(text)
	return nlp.Features{CleanedText: cleaned, Keywords: nlp.ExtractKeywords(cleaned, topK), Summary: text[:40]}, nil
}

func writeTestArchive(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	w := archive.NewWriter(&buf)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for url, body := range map[string]string{
		"http://garden.example/":  "<html><title>Garden</title><p>" + gardenText,
		"http://garden2.example/": "<html><title>Garden 2</title><p>" + gardenText,
		"http://garten.example/":  "<html><title>Garten</title><p>" + germanText,
	} {
		msg := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n" + body)
		if err := w.WriteRecord(archive.NewResponseRecord(url, msg, at)); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "garden.warc.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func outputCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestIngest(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.ArchivePath = writeTestArchive(t)
	cfg.DBDir = t.TempDir()
	cfg.Report = config.ReportJSON
	cfg.MetricsFile = filepath.Join(t.TempDir(), "warcsift.prom")
	res := pipeline.Resources{Detector: englishDetector{}, Analyzer: plainAnalyzer{}}

	cmd, out := outputCommand()
	if err := ingest(context.Background(), cmd, cfg, res, log.Discard()); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	var summary struct {
		Retained    int            `json:"retained"`
		PagesStored int            `json:"pages_stored"`
		EdgesStored int            `json:"edges_stored"`
		Skipped     map[string]int `json:"skipped"`
	}
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out)
	}
	if summary.Retained != 2 || summary.PagesStored != 2 || summary.EdgesStored != 1 || summary.Skipped["not_english"] != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}

	metrics, err := os.ReadFile(cfg.MetricsFile)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(metrics), `warcsift_records_processed_total{outcome="retained"} 2`) {
		t.Errorf("unexpected metrics:\n%s", metrics)
	}
}

func TestIngestCancelled(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.ArchivePath = writeTestArchive(t)
	cfg.DBDir = t.TempDir()
	res := pipeline.Resources{Detector: englishDetector{}, Analyzer: plainAnalyzer{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd, out := outputCommand()
	err := ingest(ctx, cmd, cfg, res, log.Discard())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !strings.Contains(out.String(), "CANCELLED") {
		t.Errorf("cancelled run should still be reported:\n%s", out)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.ArchivePath = writeTestArchive(t)
	outDir := t.TempDir()
	output := filepath.Join(outDir, "garden.en.warc.gz")

	cmd, out := outputCommand()
	if err := filter(context.Background(), cmd, cfg, englishDetector{}, output, log.Discard()); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(out.String(), "Pages:        2") {
		t.Errorf("unexpected report:\n%s", out)
	}

	r, err := archive.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close() //nolint:errcheck // test
	n := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		n++
	}
	if n != 2 {
		t.Errorf("expected 2 records, got %d", n)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestFilterMissingInput(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.ArchivePath = filepath.Join(t.TempDir(), "missing.warc.gz")
	outDir := t.TempDir()

	cmd, _ := outputCommand()
	if err := filter(context.Background(), cmd, cfg, englishDetector{}, filepath.Join(outDir, "out.warc.gz"), log.Discard()); err == nil {
		t.Fatal("expected an error")
	}
	if entries, _ := os.ReadDir(outDir); len(entries) != 0 {
		t.Errorf("output directory not clean: %v", entries)
	}
}

// seedDatabase stores three pages and two edges and returns the database directory.
func seedDatabase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close() //nolint:errcheck // test

	ctx := context.Background()
	ids := make([]int64, 3)
	for i, url := range []string{"http://a.example/", "http://b.example/", "http://c.example/"} {
		ids[i], err = db.AddWebpage(ctx, &model.Page{
			URL:           url,
			Title:         "Page " + url,
			ContentType:   model.ContentTypeHTML,
			LanguageScore: 0.9,
			Summary:       "summary",
			Keywords:      []string{"garden"},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := db.AddSimilarities(ctx, []model.SimilarityEdge{
		{PageA: ids[0], PageB: ids[1], Score: 0.9},
		{PageA: ids[0], PageB: ids[2], Score: 0.3},
	}); err != nil {
		t.Fatal(err)
	}
	run := model.NewRunSummary("run-1", "/data/a.warc.gz")
	run.FinishedAt = run.StartedAt.Add(time.Second)
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCommands(t *testing.T) {
	t.Parallel()

	dbDir := seedDatabase(t)
	cfgPath := writeConfigFile(t, "{}\n")
	common := []string{"--config", cfgPath, "--db-dir", dbDir}

	t.Run("similar applies the threshold", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, append([]string{"similar", "-f", "json", "1"}, common...)...)
		if err != nil {
			t.Fatal(err)
		}
		var got struct {
			ID      int64 `json:"id"`
			Similar []struct {
				URL        string  `json:"url"`
				Similarity float64 `json:"similarity"`
			} `json:"similar"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if got.ID != 1 || len(got.Similar) != 1 || got.Similar[0].URL != "http://b.example/" {
			t.Errorf("unexpected result %+v", got)
		}
	})

	t.Run("similar with lower threshold", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, append([]string{"similar", "-t", "0.25", "1"}, common...)...)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "http://b.example/") || !strings.Contains(out, "http://c.example/") {
			t.Errorf("expected both neighbours:\n%s", out)
		}
	})

	t.Run("similar for unknown page", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, append([]string{"similar", "99"}, common...)...)
		if !errors.Is(err, ErrPageNotFound) {
			t.Errorf("expected ErrPageNotFound, got %v", err)
		}
	})

	t.Run("show", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, append([]string{"show", "2"}, common...)...)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "http://b.example/") || !strings.Contains(out, "garden") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("runs", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, append([]string{"runs", "-f", "markdown"}, common...)...)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "run-1") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("missing database is reported", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "show", "1", "--config", cfgPath, "--db-dir", t.TempDir())
		if !errors.Is(err, database.ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})
}
