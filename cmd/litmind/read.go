package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/internal/assist"
	"github.com/haragam22/litmind/internal/catalog"
	"github.com/haragam22/litmind/internal/config"
	"github.com/haragam22/litmind/internal/home"
	"github.com/haragam22/litmind/internal/reader"
	"github.com/haragam22/litmind/internal/server/endpoints"
	"github.com/haragam22/litmind/internal/speech"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Start an interactive reading session",
	Long: `Start an interactive terminal reading session against a running
Litmind server.

Commands inside the session:
  search <query>        search the catalog
  open <n>              open the n-th search result
  next / prev           turn pages
  page <n>              jump to a page
  lang <code>           translate pages (lang orig to go back)
  langs                 list supported languages
  mode <text|audio|video>
  play / pause          control narration
  chat <message>        ask the reading assistant
  quit                  leave the session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReadSession(cmd.Context())
	},
}

func init() {
	readCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(readCmd)
}

// remoteBoundary adapts the server API to the session's collaborator
// interfaces so the reading machine runs unchanged in the terminal.
type remoteBoundary struct {
	client *api.Client
}

func (r *remoteBoundary) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	var resp endpoints.TranslateResponse
	req := endpoints.TranslateRequest{Text: text, TargetLanguage: targetLanguage}
	if err := r.client.Post(ctx, "/api/translate", req, &resp); err != nil {
		return "", err
	}
	return resp.TranslatedText, nil
}

func (r *remoteBoundary) GeneratePrompt(ctx context.Context, text string, pageNumber int) (string, error) {
	var resp endpoints.PromptResponse
	req := endpoints.PromptRequest{Text: text, Page: pageNumber}
	if err := r.client.Post(ctx, "/api/image-prompts", req, &resp); err != nil {
		return "", err
	}
	return resp.Prompt, nil
}

func (r *remoteBoundary) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var resp endpoints.SceneResponse
	if err := r.client.Post(ctx, "/api/scene-image", endpoints.SceneRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

func (r *remoteBoundary) FetchDocument(ctx context.Context, book catalog.Book) reader.Document {
	path := "/api/catalog/volumes/" + url.PathEscape(book.ID) +
		"?title=" + url.QueryEscape(book.Title) +
		"&description=" + url.QueryEscape(book.Description)
	for _, a := range book.Authors {
		path += "&author=" + url.QueryEscape(a)
	}
	var doc reader.Document
	if err := r.client.Get(ctx, path, &doc); err != nil {
		return reader.FallbackDocument(book)
	}
	return doc
}

func (r *remoteBoundary) Chat(ctx context.Context, messages []assist.ChatMessage, title, bookContext string) (string, error) {
	var resp endpoints.ChatResponse
	req := endpoints.ChatRequest{Messages: messages, BookTitle: title, BookContext: bookContext}
	if err := r.client.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// buildSpeechController assembles the TTS engine from local config.
// Narration is synthesized on this machine, not by the server.
func buildSpeechController() *speech.Controller {
	var engine speech.Engine

	cfgMgr, err := config.NewManager(cfgFile)
	if err == nil {
		cfg := cfgMgr.Get()
		if cfg.Speech.Provider == "openai" {
			outputDir := ""
			if h, err := home.New(homeDir); err == nil && h.EnsureExists() == nil {
				outputDir = h.AudioPath()
			}
			engine = speech.NewOpenAIEngine(speech.OpenAIConfig{
				APIKey:    config.ResolveEnvVars(cfg.Speech.APIKey),
				Model:     cfg.Speech.Model,
				Voice:     cfg.Speech.Voice,
				Speed:     cfg.Speech.Speed,
				OutputDir: outputDir,
			})
		}
	}

	return speech.NewController(engine)
}

func runReadSession(ctx context.Context) error {
	client := api.NewClient(getServerURL())
	boundary := &remoteBoundary{client: client}

	session := reader.NewSession(reader.SessionConfig{
		Fetcher:    boundary,
		Translator: boundary,
		Scenes:     boundary,
		Speech:     buildSpeechController(),
		Notify: func(n reader.Notice) {
			fmt.Printf("\n[%s] %s: %s\n> ", n.Level, n.Title, n.Detail)
		},
	})
	defer session.Close()

	fmt.Println("Litmind reading session. Type 'search <query>' to find a book, 'quit' to exit.")

	var results []catalog.Book
	var history []assist.ChatMessage

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fmt.Print("> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "", "#":
			// ignore blank lines

		case "quit", "exit":
			return nil

		case "search":
			if rest == "" {
				fmt.Println("usage: search <query>")
				break
			}
			var resp endpoints.SearchResponse
			if err := client.Get(ctx, "/api/catalog/search?q="+url.QueryEscape(rest), &resp); err != nil {
				fmt.Println("search failed:", err)
				break
			}
			results = resp.Books
			for i, b := range results {
				fmt.Printf("%2d. %s - %s\n", i+1, b.Title, strings.Join(b.Authors, ", "))
			}

		case "open":
			n, err := strconv.Atoi(rest)
			if err != nil || n < 1 || n > len(results) {
				fmt.Println("usage: open <result number>")
				break
			}
			doc := session.SelectBook(ctx, results[n-1])
			history = nil
			fmt.Printf("Opened %q (%d pages)\n", doc.Title, doc.PageCount())
			printPage(session)

		case "next":
			session.NextPage(ctx)
			printPage(session)

		case "prev":
			session.PrevPage(ctx)
			printPage(session)

		case "page":
			n, err := strconv.Atoi(rest)
			if err != nil || n < 1 {
				fmt.Println("usage: page <number>")
				break
			}
			session.GoToPage(ctx, n-1)
			printPage(session)

		case "lang":
			code := strings.ToLower(rest)
			if code == "" {
				fmt.Println("usage: lang <code>  (lang orig for the original text)")
				break
			}
			if code == "orig" || code == "original" {
				session.SelectLanguage(ctx, reader.LanguageOriginal)
				printPage(session)
				break
			}
			if !assist.LanguageSupported(code) {
				fmt.Printf("unsupported language %q; see 'langs'\n", code)
				break
			}
			session.SelectLanguage(ctx, code)
			fmt.Printf("Translating to %s...\n", assist.LanguageName(code))

		case "langs":
			for _, code := range assist.SupportedLanguages() {
				fmt.Printf("  %-6s %s\n", code, assist.LanguageName(code))
			}

		case "mode":
			switch reader.Mode(rest) {
			case reader.ModeText, reader.ModeAudio, reader.ModeVideo:
				session.SetMode(ctx, reader.Mode(rest))
				st := session.State()
				if st.Playback.Image != "" {
					fmt.Println("scene:", st.Playback.Image)
				}
			default:
				fmt.Println("usage: mode <text|audio|video>")
			}

		case "play":
			session.Play(ctx)

		case "pause":
			session.Pause(ctx)

		case "chat":
			if rest == "" {
				fmt.Println("usage: chat <message>")
				break
			}
			st := session.State()
			history = append(history, assist.ChatMessage{Role: "user", Content: rest})
			title, bookCtx := "", ""
			if st.Doc != nil {
				title = st.Doc.Title
				bookCtx = st.Doc.Page(st.Page)
			}
			reply, err := boundary.Chat(ctx, history, title, bookCtx)
			if err != nil {
				fmt.Println("chat failed:", err)
				history = history[:len(history)-1]
				break
			}
			history = append(history, assist.ChatMessage{Role: "assistant", Content: reply})
			fmt.Println(reply)

		default:
			fmt.Printf("unknown command %q\n", verb)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

// printPage renders the current page and position.
func printPage(session *reader.Session) {
	st := session.State()
	if st.Doc == nil {
		fmt.Println("no book open")
		return
	}
	fmt.Printf("--- page %d of %d ---\n", st.Page+1, st.Doc.PageCount())
	fmt.Println(session.DisplayContent())
}
