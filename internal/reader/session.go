package reader

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/haragam22/litmind/internal/catalog"
	"github.com/haragam22/litmind/internal/speech"
)

// Translator translates a page of text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// SceneGenerator produces an illustrative image for a page in two
// sequential steps: text to prompt, then prompt to image URL.
type SceneGenerator interface {
	GeneratePrompt(ctx context.Context, text string, pageNumber int) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// DocumentFetcher retrieves the composed document for a selected book.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, book catalog.Book) Document
}

// Notice is a transient, dismissible user-visible message.
type Notice struct {
	Level  string
	Title  string
	Detail string
}

// Session is a reading session: it owns the view-state, runs the
// transition machine, and interprets effects against the collaborators.
// All mutation flows through dispatch; async completions re-enter as
// events and are staleness-checked by the transition function.
type Session struct {
	mu    sync.Mutex
	state State

	id         string
	fetcher    DocumentFetcher
	translator Translator
	scenes     SceneGenerator
	speech     *speech.Controller
	notify     func(Notice)
	logger     *slog.Logger

	// speechNotified ensures the capability notice is reported once.
	speechNotified bool
}

// SessionConfig holds the collaborators for a session.
type SessionConfig struct {
	Fetcher    DocumentFetcher
	Translator Translator
	Scenes     SceneGenerator
	Speech     *speech.Controller
	Notify     func(Notice)
	Logger     *slog.Logger
}

// NewSession creates a reading session.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notify == nil {
		cfg.Notify = func(Notice) {}
	}
	if cfg.Speech == nil {
		cfg.Speech = speech.NewController(nil)
	}
	return &Session{
		state:      NewState(),
		id:         uuid.NewString(),
		fetcher:    cfg.Fetcher,
		translator: cfg.Translator,
		scenes:     cfg.Scenes,
		speech:     cfg.Speech,
		notify:     cfg.Notify,
		logger:     cfg.Logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns a snapshot of the current view-state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DisplayContent returns the text currently displayed.
func (s *Session) DisplayContent() string {
	return s.State().DisplayContent()
}

// SelectBook fetches the book's document (one attempt, fallback on
// failure) and resets the session around it.
func (s *Session) SelectBook(ctx context.Context, book catalog.Book) Document {
	doc := s.fetcher.FetchDocument(ctx, book)
	s.dispatch(ctx, SelectBook{Doc: doc})
	return doc
}

// GoToPage navigates to the given page. Out-of-bounds indices clamp to
// the nearest valid page; the call is a no-op while async work is in
// flight.
func (s *Session) GoToPage(ctx context.Context, index int) {
	s.dispatch(ctx, GoToPage{Index: index})
}

// NextPage advances one page.
func (s *Session) NextPage(ctx context.Context) {
	s.dispatch(ctx, GoToPage{Index: s.State().Page + 1})
}

// PrevPage goes back one page.
func (s *Session) PrevPage(ctx context.Context) {
	s.dispatch(ctx, GoToPage{Index: s.State().Page - 1})
}

// SelectLanguage switches the translation target. LanguageOriginal
// shows the untranslated page immediately with no request issued.
func (s *Session) SelectLanguage(ctx context.Context, code string) {
	s.dispatch(ctx, SelectLanguage{Code: code})
}

// SetMode switches between text, audio, and video presentation.
func (s *Session) SetMode(ctx context.Context, mode Mode) {
	s.dispatch(ctx, SetMode{Mode: mode})
}

// Play starts speech playback in audio or video mode.
func (s *Session) Play(ctx context.Context) {
	s.dispatch(ctx, Play{})
}

// Pause stops speech playback.
func (s *Session) Pause(ctx context.Context) {
	s.dispatch(ctx, Pause{})
}

// Close stops any playback and releases the session.
func (s *Session) Close() {
	s.speech.Stop()
}

// dispatch runs one transition and interprets its effects.
func (s *Session) dispatch(ctx context.Context, ev Event) {
	s.mu.Lock()
	next, effects := Transition(s.state, ev)
	s.state = next
	s.mu.Unlock()

	for _, eff := range effects {
		s.runEffect(ctx, eff)
	}
}

// runEffect executes a single effect. Network-bound effects run in
// goroutines and re-enter the machine via dispatch on completion.
func (s *Session) runEffect(ctx context.Context, eff Effect) {
	switch eff := eff.(type) {
	case EffectFetchTranslation:
		go func() {
			text, err := s.translator.Translate(ctx, eff.Text, eff.Language)
			if err != nil {
				s.logger.Warn("translation request failed",
					"session", s.id, "page", eff.Page, "language", eff.Language, "error", err)
			}
			s.dispatch(ctx, TranslationDone{
				Seq:      eff.Seq,
				Page:     eff.Page,
				Language: eff.Language,
				Text:     text,
				Err:      err,
			})
		}()

	case EffectGenerateScene:
		go func() {
			url, err := s.generateScene(ctx, eff.Text, eff.Page)
			if err != nil {
				s.logger.Warn("scene generation failed",
					"session", s.id, "page", eff.Page, "error", err)
			}
			s.dispatch(ctx, SceneDone{Seq: eff.Seq, Page: eff.Page, URL: url, Err: err})
		}()

	case EffectStopSpeech:
		s.speech.Stop()

	case EffectStartSpeech:
		if !s.speech.Available() {
			s.reportSpeechUnavailable()
			s.dispatch(ctx, SpeechUnavailable{})
			return
		}
		err := s.speech.Start(ctx, eff.Text, func(completed bool) {
			s.dispatch(ctx, SpeechEnded{Completed: completed})
		})
		if err != nil {
			s.reportSpeechUnavailable()
			s.dispatch(ctx, SpeechUnavailable{})
		}

	case EffectNotify:
		s.notify(Notice{Level: eff.Level, Title: eff.Title, Detail: eff.Detail})
	}
}

// generateScene runs the two sequential generation calls.
func (s *Session) generateScene(ctx context.Context, text string, page int) (string, error) {
	prompt, err := s.scenes.GeneratePrompt(ctx, text, page+1)
	if err != nil {
		return "", err
	}
	return s.scenes.GenerateImage(ctx, prompt)
}

// reportSpeechUnavailable surfaces the capability notice exactly once.
func (s *Session) reportSpeechUnavailable() {
	s.mu.Lock()
	already := s.speechNotified
	s.speechNotified = true
	s.mu.Unlock()
	if already {
		return
	}
	s.notify(Notice{
		Level:  "error",
		Title:  "Audio not supported",
		Detail: "Speech synthesis is not available on this platform",
	})
}
