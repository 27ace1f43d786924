// Package httpclient implements the analysis service against an
// OpenAI-compatible chat completions endpoint.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"malim/internal/adapters/prompt"
	"malim/internal/domain"
	"malim/internal/ports"
)

const requestTimeout = 60 * time.Second

// AudioCache pre-caches synthesized audio for sentences and blocks.
type AudioCache interface {
	Ensure(ctx context.Context, articleID, lang, text, kind string) (string, error)
}

type Client struct {
	http     *resty.Client
	progress ports.ProgressPublisher
	audio    AudioCache
	log      *slog.Logger
}

// New builds the analyzer. audio may be nil, in which case pre-caching is
// skipped regardless of settings.
func New(progress ports.ProgressPublisher, audio AudioCache, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		http:     resty.New().SetTimeout(requestTimeout),
		progress: progress,
		audio:    audio,
		log:      log,
	}
}

type parsedResult struct {
	Translation string             `json:"translation"`
	Blocks      []domain.WordBlock `json:"blocks"`
}

// Analyze splits the text into sentences, annotates each through the chat
// endpoint (reusing prior results where the original text matches), and
// returns the sentences in input order. Per-sentence API failures degrade to
// an error block instead of failing the whole job.
func (c *Client) Analyze(ctx context.Context, req ports.AnalyzeRequest) ([]domain.Sentence, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, fmt.Errorf("API key is missing")
	}

	oldByOriginal := make(map[string]domain.Sentence, len(req.OldSentences))
	for _, s := range req.OldSentences {
		oldByOriginal[s.Original] = s
	}

	raws := SplitSentences(req.Text)
	total := len(raws)
	results := make([]domain.Sentence, total)

	sem := make(chan struct{}, maxInt(1, req.Concurrency))
	var completed atomic.Int64
	var wg sync.WaitGroup
	ttsSem := make(chan struct{}, maxInt(1, req.TTSConcurrency))

	for i, raw := range raws {
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			sem <- struct{}{}
			var blocks []domain.WordBlock
			var translation string
			if old, ok := oldByOriginal[raw]; ok {
				// Copy before any audio-path writes: the caller may still
				// hold these blocks inside a stored article, and sentences
				// are only ever replaced wholesale, never mutated in place.
				blocks = append([]domain.WordBlock(nil), old.Blocks...)
				translation = old.Translation
			} else {
				res, err := c.complete(ctx, req, prompt.Build(req.Language, raw))
				if err != nil {
					c.log.Warn("sentence analysis failed", "article", req.ID, "error", err)
					blocks = []domain.WordBlock{{
						Text:       raw,
						Pos:        "error",
						Definition: fmt.Sprintf("Error: %v", err),
					}}
					translation = "Translation unavailable due to error."
				} else {
					blocks, translation = res.Blocks, res.Translation
				}
			}
			<-sem

			var sentenceAudio *string
			if req.PreCacheAudio && c.audio != nil {
				sentenceAudio = c.cacheAudio(ctx, req, raw, blocks, ttsSem)
			}

			results[i] = domain.Sentence{
				ID:          fmt.Sprintf("%s_%d", req.ID, i),
				Original:    raw,
				Blocks:      blocks,
				Translation: translation,
				AudioPath:   sentenceAudio,
			}

			current := int(completed.Add(1))
			if c.progress != nil {
				c.progress.Publish(ports.ProgressEvent{
					ID:      req.ID,
					Current: current,
					Total:   total,
					Percent: int(float64(current) / float64(total) * 100),
				})
			}
		}(i, raw)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// cacheAudio synthesizes sentence audio and per-block audio, writing the
// resulting paths into blocks. Block fan-out is capped at 8; every synthesis
// holds a slot of the shared TTS semaphore.
func (c *Client) cacheAudio(ctx context.Context, req ports.AnalyzeRequest, raw string, blocks []domain.WordBlock, ttsSem chan struct{}) *string {
	sentenceCh := make(chan *string, 1)
	go func() {
		ttsSem <- struct{}{}
		defer func() { <-ttsSem }()
		p, err := c.audio.Ensure(ctx, req.ID, req.Language, raw, "sentence")
		if err != nil {
			c.log.Debug("sentence audio failed", "article", req.ID, "error", err)
			sentenceCh <- nil
			return
		}
		sentenceCh <- &p
	}()

	inner := make(chan struct{}, minInt(maxInt(1, req.TTSConcurrency), 8))
	var wg sync.WaitGroup
	for i := range blocks {
		if blocks[i].Pos == "punctuation" || strings.TrimSpace(blocks[i].Text) == "" {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inner <- struct{}{}
			defer func() { <-inner }()
			ttsSem <- struct{}{}
			defer func() { <-ttsSem }()
			p, err := c.audio.Ensure(ctx, req.ID, req.Language, blocks[i].Text, "block")
			if err != nil {
				c.log.Debug("block audio failed", "article", req.ID, "error", err)
				return
			}
			blocks[i].AudioPath = &p
		}(i)
	}
	wg.Wait()
	return <-sentenceCh
}

func (c *Client) complete(ctx context.Context, req ports.AnalyzeRequest, promptText string) (parsedResult, error) {
	body := map[string]any{
		"model": req.ModelName,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a helpful assistant that outputs only JSON."},
			{"role": "user", "content": promptText},
		},
		"temperature":     0.1,
		"stream":          false,
		"max_tokens":      8196,
		"enable_thinking": false,
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	r, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+req.APIKey).
		SetBody(body).
		SetResult(&resp).
		Post(req.APIURL)
	if err != nil {
		return parsedResult{}, fmt.Errorf("network error: %w", err)
	}
	if r.IsError() {
		return parsedResult{}, fmt.Errorf("API error %s; body: %s", r.Status(), abbreviate(r.String(), 500))
	}
	if len(resp.Choices) == 0 {
		return parsedResult{}, fmt.Errorf("API returned no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return parsedResult{}, fmt.Errorf("API returned an empty content field")
	}
	return extractResult(content)
}

// extractResult parses the model output, tolerating Markdown fences and
// surrounding prose despite the prompt's instructions.
func extractResult(content string) (parsedResult, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var out parsedResult
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return out, nil
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			if err := json.Unmarshal([]byte(s[i:j+1]), &out); err == nil {
				return out, nil
			}
		}
	}
	return parsedResult{}, fmt.Errorf("invalid JSON structure; content: %s", abbreviate(s, 500))
}

// SplitSentences cuts text after each terminal punctuation mark or newline,
// trimming whitespace and dropping empty pieces.
func SplitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for _, r := range text {
		b.WriteRune(r)
		switch r {
		case '.', '。', '!', '?', '\n':
			flush()
		}
	}
	flush()
	return out
}

func abbreviate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
