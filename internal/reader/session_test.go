package reader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haragam22/litmind/internal/catalog"
	"github.com/haragam22/litmind/internal/speech"
)

// fakeTranslator answers with "<lang>:<text>"; Block makes requests
// wait until Release is called so tests can observe the pending state.
type fakeTranslator struct {
	mu      sync.Mutex
	calls   int
	fail    bool
	release chan struct{}
}

func (f *fakeTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.fail {
		return "", errors.New("gateway down")
	}
	return lang + ":" + text, nil
}

func (f *fakeTranslator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeScenes records the order of the two generation calls.
type fakeScenes struct {
	mu      sync.Mutex
	ops     []string
	failure string // "prompt" or "image"
}

func (f *fakeScenes) GeneratePrompt(ctx context.Context, text string, page int) (string, error) {
	f.mu.Lock()
	f.ops = append(f.ops, "prompt")
	f.mu.Unlock()
	if f.failure == "prompt" {
		return "", errors.New("prompt backend down")
	}
	return "a scene", nil
}

func (f *fakeScenes) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.ops = append(f.ops, "image")
	f.mu.Unlock()
	if f.failure == "image" {
		return "", errors.New("image backend down")
	}
	return "http://img/" + prompt, nil
}

func (f *fakeScenes) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

type fakeFetcher struct{ doc Document }

func (f *fakeFetcher) FetchDocument(ctx context.Context, book catalog.Book) Document {
	return f.doc
}

type sessionHarness struct {
	session    *Session
	translator *fakeTranslator
	scenes     *fakeScenes
	engine     *speech.StubEngine

	mu      sync.Mutex
	notices []Notice
}

func newHarness(t *testing.T, pages ...string) *sessionHarness {
	t.Helper()
	h := &sessionHarness{
		translator: &fakeTranslator{},
		scenes:     &fakeScenes{},
		engine:     &speech.StubEngine{},
	}
	h.session = NewSession(SessionConfig{
		Fetcher:    &fakeFetcher{doc: *testDoc(pages...)},
		Translator: h.translator,
		Scenes:     h.scenes,
		Speech:     speech.NewController(h.engine),
		Notify: func(n Notice) {
			h.mu.Lock()
			h.notices = append(h.notices, n)
			h.mu.Unlock()
		},
	})
	t.Cleanup(h.session.Close)
	return h
}

func (h *sessionHarness) Notices() []Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Notice, len(h.notices))
	copy(out, h.notices)
	return out
}

func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSessionSelectBook(t *testing.T) {
	h := newHarness(t, "p0", "p1")
	ctx := context.Background()

	doc := h.session.SelectBook(ctx, catalog.Book{ID: "b1", Title: "Test Book"})
	if doc.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", doc.PageCount())
	}
	if got := h.session.DisplayContent(); got != "p0" {
		t.Errorf("DisplayContent() = %q, want first page", got)
	}
}

func TestSessionTranslation(t *testing.T) {
	t.Run("commits and notifies", func(t *testing.T) {
		h := newHarness(t, "p0")
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SelectLanguage(ctx, "fr")
		waitUntil(t, func() bool {
			return h.session.DisplayContent() == "fr:p0"
		}, "translation never displayed")

		notices := h.Notices()
		if len(notices) != 1 || notices[0].Level != "info" {
			t.Errorf("notices = %+v, want one info", notices)
		}
		if !strings.Contains(notices[0].Detail, "French") {
			t.Errorf("notice detail = %q, want language name", notices[0].Detail)
		}
	})

	t.Run("original issues no request", func(t *testing.T) {
		h := newHarness(t, "p0")
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SelectLanguage(ctx, LanguageOriginal)
		if got := h.session.DisplayContent(); got != "p0" {
			t.Errorf("DisplayContent() = %q", got)
		}
		if h.translator.Calls() != 0 {
			t.Errorf("translator calls = %d, want 0", h.translator.Calls())
		}
	})

	t.Run("failure keeps original text and reports once", func(t *testing.T) {
		h := newHarness(t, "p0")
		h.translator.fail = true
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SelectLanguage(ctx, "es")
		waitUntil(t, func() bool {
			return h.session.State().Translation.Status == TranslationFailed
		}, "failure never settled")

		if got := h.session.DisplayContent(); got != "p0" {
			t.Errorf("DisplayContent() = %q, want original", got)
		}
		var errs int
		for _, n := range h.Notices() {
			if n.Level == "error" {
				errs++
			}
		}
		if errs != 1 {
			t.Errorf("error notices = %d, want 1", errs)
		}
	})

	t.Run("navigation is blocked while pending", func(t *testing.T) {
		h := newHarness(t, "p0", "p1")
		h.translator.release = make(chan struct{})
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SelectLanguage(ctx, "fr")
		h.session.NextPage(ctx)
		if got := h.session.State().Page; got != 0 {
			t.Errorf("Page = %d, navigation should be a no-op while pending", got)
		}

		close(h.translator.release)
		waitUntil(t, func() bool {
			return !h.session.State().Busy()
		}, "translation never settled")

		h.session.NextPage(ctx)
		waitUntil(t, func() bool {
			return h.session.DisplayContent() == "fr:p1"
		}, "follow-up translation never displayed")
	})
}

func TestSessionScene(t *testing.T) {
	t.Run("video mode runs prompt then image", func(t *testing.T) {
		h := newHarness(t, "p0")
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SetMode(ctx, ModeVideo)
		waitUntil(t, func() bool {
			return h.session.State().Playback.ImageStatus == ImageReady
		}, "image never ready")

		if ops := h.scenes.Ops(); len(ops) != 2 || ops[0] != "prompt" || ops[1] != "image" {
			t.Errorf("ops = %v, want [prompt image]", ops)
		}
		if got := h.session.State().Playback.Image; got != "http://img/a scene" {
			t.Errorf("Image = %q", got)
		}
	})

	t.Run("re-entering video mode reuses the image", func(t *testing.T) {
		h := newHarness(t, "p0")
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SetMode(ctx, ModeVideo)
		waitUntil(t, func() bool {
			return h.session.State().Playback.ImageStatus == ImageReady
		}, "image never ready")

		h.session.SetMode(ctx, ModeText)
		h.session.SetMode(ctx, ModeVideo)
		if ops := h.scenes.Ops(); len(ops) != 2 {
			t.Errorf("ops = %v, want no regeneration", ops)
		}
	})

	t.Run("prompt failure surfaces an error notice", func(t *testing.T) {
		h := newHarness(t, "p0")
		h.scenes.failure = "prompt"
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SetMode(ctx, ModeVideo)
		waitUntil(t, func() bool {
			return len(h.Notices()) > 0
		}, "no notice surfaced")

		if st := h.session.State().Playback; st.ImageStatus != ImageAbsent {
			t.Errorf("ImageStatus = %v, want absent", st.ImageStatus)
		}
		if ops := h.scenes.Ops(); len(ops) != 1 {
			t.Errorf("ops = %v, image call must not run after a prompt failure", ops)
		}
	})
}

func TestSessionSpeech(t *testing.T) {
	t.Run("play pause", func(t *testing.T) {
		h := newHarness(t, "p0")
		h.engine.Hold = true
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SetMode(ctx, ModeAudio)
		h.session.Play(ctx)
		waitUntil(t, func() bool {
			return len(h.engine.Spoken()) == 1
		}, "utterance never started")

		h.session.Pause(ctx)
		if h.session.State().Playback.IsPlaying {
			t.Error("IsPlaying = true after pause")
		}
	})

	t.Run("page turn restarts narration without overlap", func(t *testing.T) {
		h := newHarness(t, "p0", "p1")
		h.engine.Hold = true
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SetMode(ctx, ModeAudio)
		h.session.Play(ctx)
		waitUntil(t, func() bool {
			return len(h.engine.Spoken()) == 1
		}, "first utterance never started")

		h.session.NextPage(ctx)
		waitUntil(t, func() bool {
			return len(h.engine.Spoken()) == 2
		}, "narration never restarted")

		if got := h.engine.Spoken(); got[1] != "p1" {
			t.Errorf("Spoken() = %v, want new page last", got)
		}
		if h.engine.MaxInFlight() != 1 {
			t.Errorf("MaxInFlight() = %d, want 1", h.engine.MaxInFlight())
		}
	})

	t.Run("unavailable engine reports capability once", func(t *testing.T) {
		h := newHarness(t, "p0")
		h.engine.Unavailable = true
		ctx := context.Background()
		h.session.SelectBook(ctx, catalog.Book{ID: "b1"})

		h.session.SetMode(ctx, ModeAudio)
		h.session.Play(ctx)
		h.session.Play(ctx)

		var capability int
		for _, n := range h.Notices() {
			if n.Title == "Audio not supported" {
				capability++
			}
		}
		if capability != 1 {
			t.Errorf("capability notices = %d, want exactly 1", capability)
		}
		if h.session.State().Playback.IsPlaying {
			t.Error("IsPlaying must stay false without an engine")
		}
	})
}
