package campaign

import (
	"errors"
	"fmt"
	"strings"

	"campaignkit/internal/models"
)

// ErrInvalidConfiguration signals a campaign failed publish-time
// validation. Editing never enforces these rules; publishing does.
var ErrInvalidConfiguration = errors.New("invalid campaign configuration")

// Validate checks the semantic constraints a campaign must satisfy
// before it can be published. All violations are collected and reported
// in one error.
func Validate(c models.Campaign) error {
	var errs []string

	if c.Name == "" {
		errs = append(errs, "campaign name is required")
	}
	if len(c.Questions) < MinQuestions {
		errs = append(errs, fmt.Sprintf("campaign needs at least %d question", MinQuestions))
	}
	for i, q := range c.Questions {
		if q.Prompt == "" {
			errs = append(errs, fmt.Sprintf("questions[%d] has an empty prompt", i))
		}
		if q.Kind != models.QuestionMultipleChoice {
			continue
		}
		if len(q.Answers) < MinAnswers {
			errs = append(errs, fmt.Sprintf("questions[%d] needs at least %d answers", i, MinAnswers))
		}
		if c.Mode == models.ModeQuiz && !hasCorrectAnswer(q) {
			errs = append(errs, fmt.Sprintf("questions[%d] needs at least one correct answer", i))
		}
	}

	switch c.Mode {
	case models.ModeWheel:
		if c.Wheel == nil || len(c.Wheel.Segments) == 0 {
			errs = append(errs, "wheel mode needs at least one segment")
		} else {
			errs = append(errs, validateWheel(*c.Wheel)...)
		}
	case models.ModeArticle:
		if c.Article == nil || c.Article.Headline == "" {
			errs = append(errs, "article mode needs a headline")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

func hasCorrectAnswer(q models.Question) bool {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return true
		}
	}
	return false
}

// validateWheel checks segment/prize cross references. A winning segment
// pointing at an unknown prize would silently degrade to a loss at draw
// time, so publishing flags it here instead.
func validateWheel(w models.WheelConfig) []string {
	var errs []string

	known := make(map[string]bool, len(w.Prizes))
	for i, p := range w.Prizes {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("prizes[%d] has no id", i))
			continue
		}
		if known[p.ID] {
			errs = append(errs, fmt.Sprintf("prizes[%d] reuses id %q", i, p.ID))
		}
		known[p.ID] = true
		if !p.Unlimited() && p.TotalStock < 0 {
			errs = append(errs, fmt.Sprintf("prizes[%d] has negative stock", i))
		}
		if !p.Unlimited() && p.RemainingStock > p.TotalStock {
			errs = append(errs, fmt.Sprintf("prizes[%d] has remaining stock above total", i))
		}
	}
	for i, s := range w.Segments {
		if s.PrizeID != "" && !known[s.PrizeID] {
			errs = append(errs, fmt.Sprintf("segments[%d] references unknown prize %q", i, s.PrizeID))
		}
	}
	return errs
}
