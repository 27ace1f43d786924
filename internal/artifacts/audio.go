// Package artifacts manages side-stored media for articles, currently the
// per-article TTS audio cache.
package artifacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"malim/internal/ports"
)

// VoiceFor maps a language code to the synthesis voice.
func VoiceFor(lang string) string {
	switch lang {
	case "KR":
		return "ko-KR-SunHiNeural"
	case "RU":
		return "ru-RU-SvetlanaNeural"
	default:
		return "en-US-JennyNeural"
	}
}

// AudioCache stores synthesized audio under <baseDir>/audio/<articleID>/,
// keyed by voice, kind and text so identical requests hit the same file.
type AudioCache struct {
	baseDir string
	speech  ports.Speech
	log     *slog.Logger

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

func NewAudioCache(baseDir string, speech ports.Speech, log *slog.Logger) *AudioCache {
	if log == nil {
		log = slog.Default()
	}
	return &AudioCache{
		baseDir:  baseDir,
		speech:   speech,
		log:      log,
		inflight: map[string]*sync.Mutex{},
	}
}

func hashKey(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func (c *AudioCache) dir(articleID string) (string, error) {
	d := filepath.Join(c.baseDir, "audio", articleID)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	return d, nil
}

// Ensure returns the path of the cached MP3 for the given text, synthesizing
// it first when absent. Concurrent calls for the same key are serialized so
// the synthesis runs once.
func (c *AudioCache) Ensure(ctx context.Context, articleID, lang, text, kind string) (string, error) {
	voice := VoiceFor(lang)
	key := hashKey(fmt.Sprintf("%s|%s|%s", voice, kind, text))

	c.mu.Lock()
	lock, ok := c.inflight[key]
	if !ok {
		lock = &sync.Mutex{}
		c.inflight[key] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	defer func() {
		lock.Unlock()
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}()

	dir, err := c.dir(articleID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.mp3", kind, key))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	audio, err := c.speech.Synthesize(ctx, text, voice)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".tmp_%s_%s.mp3", kind, key))
	if err := os.WriteFile(tmp, audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename audio: %w", err)
	}
	return path, nil
}

// DeleteArticleAudio removes all cached audio for the article.
func (c *AudioCache) DeleteArticleAudio(articleID string) error {
	if articleID == "" {
		return nil
	}
	dir := filepath.Join(c.baseDir, "audio", articleID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove audio dir: %w", err)
	}
	return nil
}
