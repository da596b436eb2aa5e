package reader

import "github.com/haragam22/litmind/internal/assist"

// Transition is the pure state transition function: given the current
// state and an event it returns the next state and the side effects to
// run. It performs no I/O; the session's interpreter executes effects
// and feeds completions back in as events.
func Transition(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case SelectBook:
		return transitionSelectBook(s, ev)
	case GoToPage:
		return transitionGoToPage(s, ev)
	case SelectLanguage:
		return transitionSelectLanguage(s, ev)
	case SetMode:
		return transitionSetMode(s, ev)
	case Play:
		return transitionPlay(s)
	case Pause:
		s.Playback.IsPlaying = false
		return s, []Effect{EffectStopSpeech{}}
	case TranslationDone:
		return transitionTranslationDone(s, ev)
	case SceneDone:
		return transitionSceneDone(s, ev)
	case SpeechEnded:
		if ev.Completed {
			s.Playback.IsPlaying = false
		}
		return s, nil
	case SpeechUnavailable:
		s.Playback.IsPlaying = false
		return s, nil
	default:
		return s, nil
	}
}

func transitionSelectBook(s State, ev SelectBook) (State, []Effect) {
	doc := ev.Doc
	next := NewState()
	next.Doc = &doc
	next.seq = s.seq
	return next, []Effect{EffectStopSpeech{}}
}

func transitionGoToPage(s State, ev GoToPage) (State, []Effect) {
	if s.Doc == nil || s.Busy() {
		return s, nil
	}

	target := ev.Index
	if target < 0 {
		target = 0
	}
	if max := s.Doc.PageCount() - 1; target > max {
		target = max
	}
	if target == s.Page {
		return s, nil
	}

	s.Page = target

	// A previous page's generated image is never reused.
	s.Playback.Image = ""
	s.Playback.ImageStatus = ImageAbsent
	s.Playback.ImageFor = target

	var effects []Effect

	// A non-original language selection follows the reader across pages.
	if s.Language != LanguageOriginal {
		s.seq++
		s.Translation = TranslationState{
			ForPage:     target,
			ForLanguage: s.Language,
			Text:        s.Translation.Text,
			Status:      TranslationPending,
			Seq:         s.seq,
		}
		effects = append(effects, EffectFetchTranslation{
			Seq:      s.seq,
			Page:     target,
			Language: s.Language,
			Text:     s.Doc.Page(target),
		})
	}

	if s.Mode == ModeVideo {
		s.seq++
		s.Playback.ImageStatus = ImagePending
		s.Playback.GenSeq = s.seq
		effects = append(effects, EffectGenerateScene{
			Seq:  s.seq,
			Page: target,
			Text: s.Doc.Page(target),
		})
	}

	// Restart playback against the new page, never overlapping the old.
	if s.Playback.IsPlaying {
		effects = append(effects, EffectStopSpeech{}, EffectStartSpeech{Text: s.DisplayContent()})
	}

	return s, effects
}

func transitionSelectLanguage(s State, ev SelectLanguage) (State, []Effect) {
	if s.Doc == nil {
		return s, nil
	}

	if ev.Code == LanguageOriginal {
		s.Language = LanguageOriginal
		s.Translation = TranslationState{Status: TranslationIdle}
		return s, nil
	}

	s.Language = ev.Code
	s.seq++
	s.Translation = TranslationState{
		ForPage:     s.Page,
		ForLanguage: ev.Code,
		Status:      TranslationPending,
		Seq:         s.seq,
	}
	return s, []Effect{EffectFetchTranslation{
		Seq:      s.seq,
		Page:     s.Page,
		Language: ev.Code,
		Text:     s.Doc.Page(s.Page),
	}}
}

func transitionSetMode(s State, ev SetMode) (State, []Effect) {
	if ev.Mode == s.Mode {
		return s, nil
	}
	s.Mode = ev.Mode

	switch ev.Mode {
	case ModeText:
		// Leaving a playback mode cancels speech immediately.
		s.Playback.IsPlaying = false
		return s, []Effect{EffectStopSpeech{}}

	case ModeAudio:
		// Idle until play().
		return s, nil

	case ModeVideo:
		// Reuse the image already generated for this page; otherwise
		// trigger generation.
		if s.Doc == nil {
			return s, nil
		}
		if s.Playback.ImageStatus == ImageReady && s.Playback.ImageFor == s.Page {
			return s, nil
		}
		if s.Playback.ImageStatus == ImagePending {
			return s, nil
		}
		s.seq++
		s.Playback.ImageStatus = ImagePending
		s.Playback.ImageFor = s.Page
		s.Playback.GenSeq = s.seq
		return s, []Effect{EffectGenerateScene{
			Seq:  s.seq,
			Page: s.Page,
			Text: s.Doc.Page(s.Page),
		}}
	}
	return s, nil
}

func transitionPlay(s State) (State, []Effect) {
	if s.Doc == nil || s.Mode == ModeText {
		return s, nil
	}
	s.Playback.IsPlaying = true
	// Stop first: at most one utterance in flight system-wide.
	return s, []Effect{EffectStopSpeech{}, EffectStartSpeech{Text: s.DisplayContent()}}
}

func transitionTranslationDone(s State, ev TranslationDone) (State, []Effect) {
	t := s.Translation
	// Staleness check: only the most recently issued request may commit,
	// and only when its (page, language) key still matches.
	if t.Status != TranslationPending ||
		ev.Seq != t.Seq ||
		ev.Page != t.ForPage ||
		ev.Language != t.ForLanguage {
		return s, nil
	}

	if ev.Err != nil {
		s.Translation.Status = TranslationFailed
		return s, []Effect{EffectNotify{
			Level:  "error",
			Title:  "Translation failed",
			Detail: "Please try again later",
		}}
	}

	s.Translation.Text = ev.Text
	s.Translation.Status = TranslationReady
	return s, []Effect{EffectNotify{
		Level:  "info",
		Title:  "Translation complete",
		Detail: "Page translated to " + assist.LanguageName(ev.Language),
	}}
}

func transitionSceneDone(s State, ev SceneDone) (State, []Effect) {
	p := s.Playback
	// Honor the result only when its page key still matches the page in
	// view; a generation outlived by navigation is dropped silently.
	if p.ImageStatus != ImagePending || ev.Seq != p.GenSeq || ev.Page != s.Page {
		return s, nil
	}

	if ev.Err != nil {
		s.Playback.Image = ""
		s.Playback.ImageStatus = ImageAbsent
		return s, []Effect{EffectNotify{
			Level:  "error",
			Title:  "Video generation failed",
			Detail: "Please try again later",
		}}
	}

	s.Playback.Image = ev.URL
	s.Playback.ImageStatus = ImageReady
	s.Playback.ImageFor = ev.Page
	return s, []Effect{EffectNotify{
		Level:  "info",
		Title:  "Video mode ready",
		Detail: "Image generated successfully",
	}}
}
