package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/simmr/internal/conversation"
	"github.com/hammamikhairi/simmr/internal/display"
	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/engine"
	"github.com/hammamikhairi/simmr/internal/idle"
	"github.com/hammamikhairi/simmr/internal/speech"
	"github.com/hammamikhairi/simmr/internal/story"
)

var (
	cookTone  string
	cookSpeak bool
)

var cookCmd = &cobra.Command{
	Use:   "cook <recipe-id>",
	Short: "Cook a recipe step by step, with a story",
	Long: `Start a cook-along. Type commands such as "next step", "last step",
"repeat", "skip", "pause", "resume", "status", "finish" or "quit".

With --speak and AZURE_SPEECH_KEY / AZURE_SPEECH_REGION set, every line is
also read aloud.`,
	Args: cobra.ExactArgs(1),
	RunE: runCook,
}

func init() {
	cookCmd.Flags().StringVar(&cookTone, "tone", "", "story tone (Cozy, Romantic, Adventure, Educational, Mystery, Humorous)")
	cookCmd.Flags().BoolVar(&cookSpeak, "speak", false, "read lines aloud with Azure text-to-speech")
}

// cookApp is one interactive cook-along.
type cookApp struct {
	engine     *engine.Engine
	parser     domain.IntentParser
	dispatcher *conversation.Dispatcher
	text       *conversation.CLINotifier
	notifier   domain.Notifier
	mouth      *speech.Mouth // nil when speech is off
	printer    *display.Printer
	sessionID  string
}

func runCook(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, true)
	if err != nil {
		return err
	}
	defer be.Close()

	out := cmd.OutOrStdout()
	printer := display.NewPrinter(out)
	text := conversation.NewCLINotifier(log, out)

	app := &cookApp{
		parser:  conversation.NewKeywordParser(log),
		text:    text,
		printer: printer,
	}
	app.notifier = text

	if cookSpeak {
		if mouth := startMouth(ctx); mouth != nil {
			app.mouth = mouth
			app.notifier = speech.NewSpeakingNotifier(text, mouth, log)
			defer func() {
				stop()
				mouth.Wait()
			}()
		}
	}

	app.engine = engine.New(be.recipes, be.sessions, log, engine.WithNarrator(narrator(ctx)))
	app.dispatcher = conversation.NewDispatcher(app.engine, log)

	var tone domain.StoryTone
	if cookTone != "" {
		tone = story.ToneOrDefault(cookTone)
	}

	uid := currentUserID()
	session, err := app.engine.StartSession(ctx, uid, args[0], tone)
	if err != nil {
		return fmt.Errorf("starting %q: %w", args[0], err)
	}
	app.sessionID = session.ID

	printer.Println(display.RenderBanner())
	if err := app.intro(ctx, be, uid, session); err != nil {
		return err
	}

	sup := idle.New(be.sessions, app.engine, app.notifier, log, idle.WithTickInterval(15*time.Second))
	sup.Start(ctx)
	defer sup.Stop()

	app.loop(ctx, cmd.InOrStdin())
	return nil
}

// startMouth wires Azure TTS to the speakers. It returns nil when speech
// cannot be set up; cooking carries on in text.
func startMouth(ctx context.Context) *speech.Mouth {
	sc := cfg.Speech
	if sc.AzureKey == "" || sc.AzureRegion == "" {
		log.Warn("speech disabled: set AZURE_SPEECH_KEY and AZURE_SPEECH_REGION")
		return nil
	}

	var opts []speech.AzureOption
	if sc.Voice != "" {
		opts = append(opts, speech.WithVoice(sc.Voice))
	}
	tts := speech.NewAzureClient(sc.AzureKey, sc.AzureRegion, log, opts...)

	player, err := speech.NewPlayer(log)
	if err != nil {
		log.Error("audio player init failed, speech disabled: %v", err)
		return nil
	}

	mouth := speech.NewMouth(tts, player, log,
		speech.WithCacheDir(sc.CacheDir),
		speech.WithDiskWrite(sc.DiskWrite),
	)
	mouth.Start(ctx)
	log.Info("TTS enabled (voice=%s, region=%s)", tts.Voice(), sc.AzureRegion)
	return mouth
}

// intro reads out the recipe, pantry readiness and the first step, and
// warms the speech cache for the rest.
func (a *cookApp) intro(ctx context.Context, be *backend, uid string, session *domain.Session) error {
	r, err := be.recipes.Get(ctx, session.RecipeID)
	if err != nil {
		return err
	}

	svc, err := be.pantryService()
	if err != nil {
		return err
	}
	report, err := svc.Readiness(ctx, uid, r)
	if err != nil {
		return err
	}
	missing := make([]string, len(report.Missing))
	for i, ing := range report.Missing {
		missing[i] = ing.Name
	}

	total := len(r.Steps)
	lines := make([]string, 0, total)
	for _, s := range r.Steps {
		lines = append(lines, conversation.LineStep(s.Order, total, s.Instruction, s.Story))
	}
	if a.mouth != nil {
		go func() {
			if err := a.mouth.Prefetch(ctx, lines...); err != nil {
				log.Debug("prefetch: %v", err)
			}
		}()
	}

	a.say(ctx, conversation.LineRecipeIntro(r.Title, report.Readiness.Percent, missing))
	a.printer.PrintHint(fmt.Sprintf("%s %s tone", session.Tone.Emoji(), session.Tone))
	a.say(ctx, conversation.LineCookingStart(r.Title, total))
	a.say(ctx, lines[0])
	return nil
}

func (a *cookApp) say(ctx context.Context, text string) {
	if err := a.notifier.Notify(ctx, text); err != nil {
		log.Error("notify: %v", err)
	}
}

// loop reads commands until the session ends, input closes or ctx is
// cancelled.
func (a *cookApp) loop(ctx context.Context, in io.Reader) {
	input := make(chan string)
	go func() {
		defer close(input)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case input <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return
		case line, ok = <-input:
			if !ok {
				return
			}
		}

		if a.handle(ctx, line) {
			a.say(ctx, conversation.LineBye())
			a.waitForSpeech(ctx)
			return
		}
	}
}

// handle runs one command and reports whether the cook-along is over.
func (a *cookApp) handle(ctx context.Context, line string) bool {
	session, err := a.engine.Status(ctx, a.sessionID)
	if err != nil {
		a.text.NotifyUrgent(ctx, err.Error())
		return true
	}
	intent, err := a.parser.Parse(ctx, line, session)
	if err != nil {
		log.Error("parsing input: %v", err)
		return false
	}
	if intent.Type == domain.IntentUnknown && intent.Payload == "" {
		return false
	}
	if a.mouth != nil {
		a.mouth.Interrupt()
	}

	out, err := a.dispatcher.Handle(ctx, a.sessionID, intent)
	if err != nil {
		a.text.NotifyUrgent(ctx, err.Error())
		return false
	}
	log.Debug("%s", out)

	if out.Summary != "" {
		if err := a.text.Story(ctx, out.Summary); err != nil {
			log.Error("story: %v", err)
		}
		if a.mouth != nil {
			a.mouth.Say(out.Summary, speech.PriorityNormal)
		}
	} else {
		a.say(ctx, out.Reply)
	}

	switch out.Session.Status {
	case domain.SessionAbandoned:
		return true
	case domain.SessionCompleted:
		return out.Summary != ""
	}
	return false
}

// waitForSpeech lets queued speech finish before exit, up to a limit.
func (a *cookApp) waitForSpeech(ctx context.Context) {
	if a.mouth == nil {
		return
	}
	deadline := time.After(30 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for a.mouth.IsSpeaking() || a.mouth.QueueLen() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-tick.C:
		}
	}
}
