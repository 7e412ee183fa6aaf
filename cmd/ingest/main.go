// Command ingest seeds the law corpus: it imports local files
// (.md/.txt/.html/.pdf) or crawls an HTTP site, chunks and embeds the text,
// and stores it in the vector index.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nyayasetu/legal-assistant-rag/internal/config"
	"github.com/nyayasetu/legal-assistant-rag/internal/db"
	"github.com/nyayasetu/legal-assistant-rag/internal/index"
	"github.com/nyayasetu/legal-assistant-rag/internal/ingest"
	"github.com/nyayasetu/legal-assistant-rag/internal/llm"
	"github.com/nyayasetu/legal-assistant-rag/internal/logging"
)

func main() {
	fromFiles := flag.Bool("from-files", false, "import from local files (.md/.txt/.html/.pdf)")
	pathFlag := flag.String("path", "", "base directory for local files")
	fromURL := flag.Bool("from-url", false, "import via HTTP crawl")
	baseURLFlag := flag.String("base-url", "", "base URL for the crawl (ex: https://www.indiacode.nic.in)")
	maxPagesFlag := flag.Int("max-pages", 50, "page limit for the HTTP crawl")
	flag.Parse()

	if !*fromFiles && !*fromURL {
		log.Fatal("use at least one mode: --from-files or --from-url")
	}

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for ingestion")
	}
	pool := db.NewPool(cfg.DatabaseURL)
	defer pool.Close()
	idx := index.NewPgIndex(pool, cfg.EmbedDim)

	gemini, err := llm.NewGeminiClient(ctx, llm.Config{
		APIKey:     cfg.GeminiAPIKey,
		ChatModel:  cfg.ChatModel,
		EmbedModel: cfg.EmbedModel,
		EmbedDim:   cfg.EmbedDim,
		Timeout:    cfg.ProviderTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to init Gemini client: %v", err)
	}

	svc := ingest.NewService(gemini, idx, ingest.DefaultChunkSize, logger)

	if *fromFiles {
		if *pathFlag == "" {
			log.Fatal("--path is required with --from-files")
		}
		if err := importFromFiles(ctx, svc, *pathFlag); err != nil {
			log.Fatalf("file import failed: %v", err)
		}
	}

	if *fromURL {
		if *baseURLFlag == "" {
			log.Fatal("--base-url is required with --from-url")
		}
		if err := importFromHTTP(ctx, svc, *baseURLFlag, *maxPagesFlag); err != nil {
			log.Fatalf("HTTP import failed: %v", err)
		}
	}

	log.Println("import complete")
}

func importFromFiles(ctx context.Context, svc *ingest.Service, rootPath string) error {
	log.Printf("importing local corpus from %s", rootPath)

	return filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isTextFile(path) {
			return nil
		}

		lpath := strings.ToLower(path)
		var content string

		switch {
		case strings.HasSuffix(lpath, ".pdf"):
			text, err := ingest.ExtractPDFFile(path)
			if err != nil {
				return fmt.Errorf("reading pdf %s: %w", path, err)
			}
			content = text

		case strings.HasSuffix(lpath, ".html") || strings.HasSuffix(lpath, ".htm"):
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			content = ingest.ExtractMainText(string(data))

		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			content = string(data)
		}

		content = strings.TrimSpace(content)
		if content == "" {
			return nil
		}

		title := filenameToTitle(path)
		n, err := svc.IngestText(ctx, index.KindCorpus, title, path, content)
		if err != nil {
			return err
		}
		log.Printf("imported %d chunk(s) from %s", n, path)
		return nil
	})
}

func importFromHTTP(ctx context.Context, svc *ingest.Service, baseURL string, maxPages int) error {
	log.Printf("HTTP crawl: base=%s maxPages=%d", baseURL, maxPages)

	base, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base-url: %w", err)
	}

	visited := make(map[string]bool)
	queue := []string{base.String()}
	pages := 0

	for len(queue) > 0 && pages < maxPages {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		pages++

		log.Printf("fetching %s", current)
		resp, err := http.Get(current)
		if err != nil {
			log.Printf("GET %s failed: %v", current, err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("status %d at %s", resp.StatusCode, current)
			resp.Body.Close()
			continue
		}

		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("reading body of %s failed: %v", current, err)
			continue
		}

		htmlStr := string(bodyBytes)
		text := strings.TrimSpace(ingest.ExtractMainText(htmlStr))
		if text != "" {
			title := urlToTitle(current, base)
			if _, err := svc.IngestText(ctx, index.KindCorpus, title, current, text); err != nil {
				log.Printf("storing chunks of %s failed: %v", current, err)
			}
		}

		for _, link := range ingest.ExtractLinks(htmlStr, base) {
			if !visited[link] {
				queue = append(queue, link)
			}
		}
	}

	return nil
}

func isTextFile(path string) bool {
	l := strings.ToLower(path)
	return strings.HasSuffix(l, ".md") ||
		strings.HasSuffix(l, ".txt") ||
		strings.HasSuffix(l, ".html") ||
		strings.HasSuffix(l, ".htm") ||
		strings.HasSuffix(l, ".pdf")
}

func filenameToTitle(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

func urlToTitle(raw string, base *url.URL) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.Path == base.Path || u.Path == base.Path+"/" {
		return "Overview"
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := parts[len(parts)-1]
	last = strings.SplitN(last, ".", 2)[0]
	last = strings.ReplaceAll(last, "-", " ")
	return strings.TrimSpace(last)
}
