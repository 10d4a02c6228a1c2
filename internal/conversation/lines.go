package conversation

import (
	"fmt"
	"strings"
)

// Every line the cook-along says out loud lives here. Keep them short; the
// voice handles inflection.

func LineWelcome(name string) string {
	if name == "" {
		return "Hi! What are we cooking today?"
	}
	return fmt.Sprintf("Hi %s! What are we cooking today?", name)
}

func LineBye() string { return "Happy cooking. Bye!" }

// LineRecipeIntro reads out the title, how ready the pantry is and what is
// still missing.
func LineRecipeIntro(title string, percent int, missing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. You have %d percent of the ingredients.", title, percent)
	if len(missing) > 0 {
		b.WriteString(" You still need ")
		b.WriteString(joinAnd(missing))
		b.WriteString(".")
	}
	return b.String()
}

func LineCookingStart(title string, steps int) string {
	return fmt.Sprintf("Let's make %s. %d steps. Say next step when you're ready to move on.", title, steps)
}

// LineStep reads a step, followed by its story if there is one.
func LineStep(order, total int, instruction, story string) string {
	s := fmt.Sprintf("Step %d of %d. %s", order, total, instruction)
	if story != "" {
		s += " " + story
	}
	return s
}

func LineStatus(title string, step, total int, paused bool) string {
	if paused {
		return fmt.Sprintf("%s is paused on step %d of %d.", title, step, total)
	}
	return fmt.Sprintf("%s, step %d of %d.", title, step, total)
}

func LineFirstStep() string { return "You're already on the first step." }
func LineSkipped() string { return "Skipped." }
func LinePaused() string { return "Paused. Say resume when you're back." }
func LineIsPaused() string { return "We're paused. Say resume to carry on." }
func LineNotPaused() string { return "We're not paused." }
func LineResumed() string { return "Welcome back." }
func LineAbandoned() string { return "Okay, stopping here." }
func LineLastStepDone() string { return "That was the last step. Say finish to hear your story." }
func LineNoSession() string { return "Nothing is cooking right now." }

func LineUnknown(input string) string {
	return fmt.Sprintf("Sorry, I didn't catch %q. Say help for the commands.", input)
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

func LineStepsLeft(n int) string {
	if n == 1 {
		return "One more step to go before we finish."
	}
	return fmt.Sprintf("%d more steps to go before we finish.", n)
}
