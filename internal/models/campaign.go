package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign modes. Article is an optional long-form variant that carries
// an extra ArticleConfig block on the tree.
type Mode string

const (
	ModeQuiz    Mode = "quiz"
	ModeWheel   Mode = "wheel"
	ModeArticle Mode = "article"
)

// Campaign statuses.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Question kinds.
type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "multiple_choice"
	QuestionOpenText       QuestionKind = "open_text"
	QuestionRating         QuestionKind = "rating"
)

// WelcomeScreen is the fixed first screen of every campaign.
// It can be edited but never removed or re-typed.
type WelcomeScreen struct {
	Title       string `json:"title" yaml:"title"`
	Subtitle    string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	ButtonLabel string `json:"buttonLabel" yaml:"buttonLabel"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
}

// ContactField is one input slot on the contact-capture screen.
type ContactField struct {
	ID       string `json:"id" yaml:"id"`
	Number   int    `json:"number" yaml:"number"`
	Label    string `json:"label" yaml:"label"`
	Kind     string `json:"kind" yaml:"kind"` // text, email, phone, checkbox
	Required bool   `json:"required" yaml:"required"`
}

// ContactScreen captures end-user details before the result screen.
type ContactScreen struct {
	Title       string         `json:"title" yaml:"title"`
	ConsentText string         `json:"consentText,omitempty" yaml:"consentText,omitempty"`
	Fields      []ContactField `json:"fields" yaml:"fields"`
}

// Answer is one choice of a multiple-choice question.
type Answer struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// Question is one step of the campaign's question sequence.
type Question struct {
	ID       string       `json:"id" yaml:"id"`
	Number   int          `json:"number" yaml:"number"`
	Prompt   string       `json:"prompt" yaml:"prompt"`
	Kind     QuestionKind `json:"kind" yaml:"kind"`
	Required bool         `json:"required" yaml:"required"`
	ImageURL string       `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Answers  []Answer     `json:"answers,omitempty" yaml:"answers,omitempty"`
}

// WheelConfig holds the prize wheel of a wheel-mode campaign.
type WheelConfig struct {
	Segments     []Segment `json:"segments" yaml:"segments"`
	Prizes       []Prize   `json:"prizes" yaml:"prizes"`
	SpinSeconds  int       `json:"spinSeconds,omitempty" yaml:"spinSeconds,omitempty"`
	PointerColor string    `json:"pointerColor,omitempty" yaml:"pointerColor,omitempty"`
}

// ArticleConfig is the extension block of article-mode campaigns.
type ArticleConfig struct {
	Headline string `json:"headline" yaml:"headline"`
	Body     string `json:"body" yaml:"body"`
	CTALabel string `json:"ctaLabel,omitempty" yaml:"ctaLabel,omitempty"`
	CTAURL   string `json:"ctaUrl,omitempty" yaml:"ctaUrl,omitempty"`
}

// EndingScreen is the fixed result screen shown after a draw or submit.
type EndingScreen struct {
	WinTitle    string `json:"winTitle" yaml:"winTitle"`
	WinMessage  string `json:"winMessage,omitempty" yaml:"winMessage,omitempty"`
	LoseTitle   string `json:"loseTitle" yaml:"loseTitle"`
	LoseMessage string `json:"loseMessage,omitempty" yaml:"loseMessage,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty" yaml:"redirectUrl,omitempty"`
}

// Theme holds the campaign-wide visual settings.
type Theme struct {
	PrimaryColor    string `json:"primaryColor" yaml:"primaryColor"`
	BackgroundColor string `json:"backgroundColor" yaml:"backgroundColor"`
	FontFamily      string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	ButtonRadius    int    `json:"buttonRadius,omitempty" yaml:"buttonRadius,omitempty"`
	LogoURL         string `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
}

// Campaign is the complete configuration tree of one campaign: the fixed
// welcome/ending screens, the editable question and contact sequences,
// mode-specific blocks and the theme. It is a plain value; all edits go
// through campaign.ApplyUpdate and the sequence helpers.
type Campaign struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Mode      Mode           `json:"mode" yaml:"mode"`
	Status    Status         `json:"status" yaml:"status"`
	Welcome   WelcomeScreen  `json:"welcome" yaml:"welcome"`
	Contact   ContactScreen  `json:"contact" yaml:"contact"`
	Questions []Question     `json:"questions" yaml:"questions"`
	Wheel     *WheelConfig   `json:"wheel,omitempty" yaml:"wheel,omitempty"`
	Article   *ArticleConfig `json:"article,omitempty" yaml:"article,omitempty"`
	Ending    EndingScreen   `json:"ending" yaml:"ending"`
	Theme     Theme          `json:"theme" yaml:"theme"`
	Version   int            `json:"version" yaml:"-"`
	UpdatedAt time.Time      `json:"updatedAt" yaml:"-"`
}

// CampaignPatch is a sparse top-level update of a Campaign. A nil field
// leaves the corresponding campaign field untouched; a non-nil field
// replaces it wholesale. Callers that want to change a single nested key
// read the current value, copy it with the change applied and send the
// whole block back.
//
// Because nil means untouched, the optional Wheel and Article blocks can
// never be removed through their pointer fields alone; the ClearWheel and
// ClearArticle flags request that explicitly.
type CampaignPatch struct {
	Name    *string        `json:"name,omitempty"`
	Welcome *WelcomeScreen `json:"welcome,omitempty"`
	Contact *ContactScreen `json:"contact,omitempty"`
	Wheel   *WheelConfig   `json:"wheel,omitempty"`
	Article *ArticleConfig `json:"article,omitempty"`
	Ending  *EndingScreen  `json:"ending,omitempty"`
	Theme   *Theme         `json:"theme,omitempty"`

	ClearWheel   bool `json:"clearWheel,omitempty"`
	ClearArticle bool `json:"clearArticle,omitempty"`
}

// NewID returns a fresh unique identifier for campaigns and sequence items.
func NewID() string {
	return uuid.NewString()
}

// ItemID implementations let the generic sequence helpers address items.

func (q Question) ItemID() string     { return q.ID }
func (a Answer) ItemID() string       { return a.ID }
func (s Segment) ItemID() string      { return s.ID }
func (f ContactField) ItemID() string { return f.ID }

// CloneFresh returns a copy of the question with a new id and new ids for
// every nested answer, for use by duplicate operations.
func (q Question) CloneFresh() Question {
	c := q
	c.ID = NewID()
	c.Answers = make([]Answer, len(q.Answers))
	for i, a := range q.Answers {
		c.Answers[i] = a.CloneFresh()
	}
	return c
}

// CloneFresh returns a copy of the answer with a new id.
func (a Answer) CloneFresh() Answer {
	a.ID = NewID()
	return a
}

// CloneFresh returns a copy of the segment with a new id. The prize
// reference is kept; two segments may point at the same prize.
func (s Segment) CloneFresh() Segment {
	s.ID = NewID()
	return s
}

// CloneFresh returns a copy of the contact field with a new id.
func (f ContactField) CloneFresh() ContactField {
	f.ID = NewID()
	return f
}

// WithNumber returns a copy with the display number set.

func (q Question) WithNumber(n int) Question { q.Number = n; return q }

func (f ContactField) WithNumber(n int) ContactField { f.Number = n; return f }
