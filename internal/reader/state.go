package reader

// Mode is one of the three mutually exclusive presentation styles.
type Mode string

const (
	ModeText  Mode = "text"
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
)

// LanguageOriginal is the sentinel meaning "show source text".
const LanguageOriginal = "ORIGINAL"

// TranslationStatus tracks the current page's translation request.
type TranslationStatus string

const (
	TranslationIdle    TranslationStatus = "idle"
	TranslationPending TranslationStatus = "pending"
	TranslationReady   TranslationStatus = "ready"
	TranslationFailed  TranslationStatus = "failed"
)

// ImageStatus tracks scene-image generation for the current page.
type ImageStatus string

const (
	ImageAbsent  ImageStatus = "absent"
	ImagePending ImageStatus = "pending"
	ImageReady   ImageStatus = "ready"
)

// TranslationState is the translation of the page currently in view.
// Seq tags the outstanding request; results with a stale sequence or a
// mismatched (page, language) key are dropped, never applied.
type TranslationState struct {
	ForPage     int
	ForLanguage string
	Text        string
	Status      TranslationStatus
	Seq         uint64
}

// PlaybackState holds the playback side of the session.
type PlaybackState struct {
	IsPlaying   bool
	Image       string
	ImageStatus ImageStatus
	ImageFor    int    // page the image (or pending generation) belongs to
	GenSeq      uint64 // sequence of the outstanding generation request
}

// State is the complete view-state of a reading session.
type State struct {
	Doc         *Document
	Page        int
	Mode        Mode
	Language    string
	Translation TranslationState
	Playback    PlaybackState

	// seq is the monotonically increasing tag for outbound async work.
	seq uint64
}

// NewState returns the initial state with no document selected.
func NewState() State {
	return State{
		Mode:        ModeText,
		Language:    LanguageOriginal,
		Translation: TranslationState{Status: TranslationIdle},
		Playback:    PlaybackState{ImageStatus: ImageAbsent},
	}
}

// Busy reports whether a translation or generation request is in
// flight. Page navigation is disabled while busy so stale results can
// never interleave with a page change.
func (s State) Busy() bool {
	return s.Translation.Status == TranslationPending || s.Playback.ImageStatus == ImagePending
}

// DisplayContent returns the text currently shown: the committed
// translation when it matches the current (page, language) pair,
// otherwise the page's original text.
func (s State) DisplayContent() string {
	t := s.Translation
	if s.Language != LanguageOriginal &&
		t.Status == TranslationReady &&
		t.ForPage == s.Page &&
		t.ForLanguage == s.Language {
		return t.Text
	}
	return s.Doc.Page(s.Page)
}

// Event is a user action or async completion fed to the machine.
type Event interface{ isEvent() }

// SelectBook installs a freshly fetched document and resets all state.
type SelectBook struct{ Doc Document }

// GoToPage navigates to a page index (clamped; no-op while Busy).
type GoToPage struct{ Index int }

// SelectLanguage picks a translation target or LanguageOriginal.
type SelectLanguage struct{ Code string }

// SetMode switches the presentation mode.
type SetMode struct{ Mode Mode }

// Play starts speech playback of the displayed text.
type Play struct{}

// Pause stops speech playback.
type Pause struct{}

// TranslationDone is the completion of a translation request.
type TranslationDone struct {
	Seq      uint64
	Page     int
	Language string
	Text     string
	Err      error
}

// SceneDone is the completion of a scene-image generation request.
type SceneDone struct {
	Seq  uint64
	Page int
	URL  string
	Err  error
}

// SpeechEnded reports that the current utterance stopped; Completed is
// true only for a natural end (not a cancellation).
type SpeechEnded struct{ Completed bool }

// SpeechUnavailable reports that the platform has no speech engine.
type SpeechUnavailable struct{}

func (SelectBook) isEvent()        {}
func (GoToPage) isEvent()          {}
func (SelectLanguage) isEvent()    {}
func (SetMode) isEvent()           {}
func (Play) isEvent()              {}
func (Pause) isEvent()             {}
func (TranslationDone) isEvent()   {}
func (SceneDone) isEvent()         {}
func (SpeechEnded) isEvent()       {}
func (SpeechUnavailable) isEvent() {}

// Effect is a side effect the interpreter must run after a transition.
type Effect interface{ isEffect() }

// EffectFetchTranslation requests a translation of text, tagged with
// the sequence and (page, language) key it was issued for.
type EffectFetchTranslation struct {
	Seq      uint64
	Page     int
	Language string
	Text     string
}

// EffectGenerateScene requests prompt and image generation for a page.
type EffectGenerateScene struct {
	Seq  uint64
	Page int
	Text string
}

// EffectStopSpeech cancels the current utterance, if any.
type EffectStopSpeech struct{}

// EffectStartSpeech begins speaking text (after any stop effect).
type EffectStartSpeech struct{ Text string }

// EffectNotify surfaces a transient, dismissible user notice.
type EffectNotify struct {
	Level  string // "info" or "error"
	Title  string
	Detail string
}

func (EffectFetchTranslation) isEffect() {}
func (EffectGenerateScene) isEffect()    {}
func (EffectStopSpeech) isEffect()       {}
func (EffectStartSpeech) isEffect()      {}
func (EffectNotify) isEffect()           {}
