// Package manual downloads device manuals and extracts their text so it can be
// pasted into the inventory service's manual_text fields.
package manual

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ai-llm-demos-be/internal/pkg/logger"
)

const (
	StatusSuccess        = "success"
	StatusPartial        = "partial"
	StatusDownloadFailed = "download_failed"
	StatusError          = "error"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

var (
	errSkippedHost = errors.New("host is on the skip list")

	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

type Device struct {
	Name   string `json:"name"`
	Manual string `json:"manual"`
}

type Result struct {
	Device     string `json:"device"`
	Status     string `json:"status"`
	URL        string `json:"url,omitempty"`
	TextLength int    `json:"textLength,omitempty"`
	PDFFile    string `json:"pdfFile,omitempty"`
	TextFile   string `json:"textFile,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Extractor turns a PDF on disk into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

type Options struct {
	DownloadDir string
	TextDir     string
	// SkipHosts are never fetched; their devices are reported as download_failed.
	SkipHosts []string
	// InsecureHosts are fetched without TLS certificate verification.
	InsecureHosts []string
	Timeout       time.Duration
}

type Pipeline struct {
	opts      Options
	extractor Extractor
	client    *http.Client
	insecure  *http.Client
	logger    logger.ILogger
}

func NewPipeline(opts Options, extractor Extractor, log logger.ILogger) *Pipeline {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &Pipeline{
		opts:      opts,
		extractor: extractor,
		client:    &http.Client{Timeout: opts.Timeout},
		insecure: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // vendor doc portal ships a broken chain
			},
		},
		logger: log,
	}
}

// SafeName lower-cases name, replaces whitespace runs with '_' and drops every other non-word character.
func SafeName(name string) string {
	s := whitespaceRun.ReplaceAllString(strings.ToLower(name), "_")
	return nonWord.ReplaceAllString(s, "")
}

// Run processes devices sequentially. A failing device never stops the run.
func (p *Pipeline) Run(ctx context.Context, devices []Device) ([]Result, error) {
	for _, dir := range []string{p.opts.DownloadDir, p.opts.TextDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	results := make([]Result, 0, len(devices))
	for i, device := range devices {
		p.logger.Info("MANUALS", "Processing device", map[string]interface{}{
			"index": i + 1,
			"total": len(devices),
			"name":  device.Name,
			"url":   device.Manual,
		})
		results = append(results, p.process(ctx, device))
	}
	return results, nil
}

func (p *Pipeline) process(ctx context.Context, device Device) Result {
	safe := SafeName(device.Name)
	pdfFile := filepath.Join(p.opts.DownloadDir, safe+".pdf")
	textFile := filepath.Join(p.opts.TextDir, safe+".txt")

	if err := p.download(ctx, device.Manual, pdfFile); err != nil {
		p.logger.Warn("MANUALS", "Failed to download manual", map[string]interface{}{
			"name":  device.Name,
			"error": err.Error(),
		})
		return Result{Device: device.Name, Status: StatusDownloadFailed, URL: device.Manual, Error: err.Error()}
	}

	text, err := p.extractor.Extract(pdfFile)
	if err != nil {
		return Result{Device: device.Name, Status: StatusError, PDFFile: pdfFile, Error: err.Error()}
	}
	if err := os.WriteFile(textFile, []byte(text), 0644); err != nil {
		return Result{Device: device.Name, Status: StatusError, PDFFile: pdfFile, Error: err.Error()}
	}

	status := StatusSuccess
	if strings.TrimSpace(text) == "" {
		status = StatusPartial
	}
	return Result{
		Device:     device.Name,
		Status:     status,
		TextLength: len(text),
		PDFFile:    pdfFile,
		TextFile:   textFile,
	}
}

func (p *Pipeline) download(ctx context.Context, url, dest string) error {
	if hostMatches(url, p.opts.SkipHosts) {
		return errSkippedHost
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	client := p.client
	if hostMatches(url, p.opts.InsecureHosts) {
		client = p.insecure
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func hostMatches(url string, hosts []string) bool {
	for _, h := range hosts {
		if h != "" && strings.Contains(url, h) {
			return true
		}
	}
	return false
}

// Tally counts results per status.
func Tally(results []Result) map[string]int {
	out := make(map[string]int)
	for _, r := range results {
		out[r.Status]++
	}
	return out
}
