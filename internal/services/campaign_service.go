package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/logger"

	"campaignkit/internal/campaign"
	"campaignkit/internal/draw"
	"campaignkit/internal/models"
	"campaignkit/internal/templates"
)

var (
	// ErrCampaignNotFound — no editing session exists for the id.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrNoWheel — a segment or spin operation on a campaign without a wheel.
	ErrNoWheel = errors.New("campaign has no wheel configuration")
)

// campaignSession holds one campaign's editing state: the current tree
// version and the participations recorded against it.
type campaignSession struct {
	Campaign       models.Campaign
	Participations []*models.Participation
	LastActivity   time.Time
}

// CampaignService manages the in-memory editing sessions. Each campaign
// id owns exactly one session; all reads and edits go through the
// service lock, so the pure helpers underneath never see concurrent
// access to one tree.
type CampaignService struct {
	mu       sync.RWMutex
	sessions map[string]*campaignSession

	tmpl       *templates.Loader
	rng        draw.RandomSource
	sessionTTL time.Duration
}

// NewCampaignService creates a service backed by the given template
// loader. A nil rng selects the crypto-backed default.
func NewCampaignService(tmpl *templates.Loader, rng draw.RandomSource, sessionTTL time.Duration) *CampaignService {
	if rng == nil {
		rng = draw.DefaultRNG()
	}
	if sessionTTL <= 0 {
		sessionTTL = time.Hour
	}
	return &CampaignService{
		sessions:   make(map[string]*campaignSession),
		tmpl:       tmpl,
		rng:        rng,
		sessionTTL: sessionTTL,
	}
}

// getSession returns the session for a campaign id, touching its
// activity timestamp. Caller must hold s.mu.
func (s *CampaignService) getSession(id string) (*campaignSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	session.LastActivity = time.Now()
	return session, nil
}

// Create starts a new draft campaign, seeded from the named template
// when one is given.
func (s *CampaignService) Create(name string, mode models.Mode, templateName string) (models.Campaign, error) {
	c := models.Campaign{
		ID:        models.NewID(),
		Name:      name,
		Mode:      mode,
		Status:    models.StatusDraft,
		Questions: []models.Question{},
		Version:   1,
		UpdatedAt: time.Now(),
	}
	if s.tmpl != nil {
		t, err := s.tmpl.Load(templateName)
		if err != nil {
			return models.Campaign{}, err
		}
		c = t.Apply(c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.ID] = &campaignSession{
		Campaign:     c,
		LastActivity: time.Now(),
	}
	logger.Infof("Created campaign %s (%s mode)", c.ID, c.Mode)
	return c, nil
}

// Get returns the current tree for a campaign.
func (s *CampaignService) Get(id string) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.getSession(id)
	if err != nil {
		return models.Campaign{}, err
	}
	return session.Campaign, nil
}

// ApplyPatch merges a sparse update into the campaign tree and returns
// the new version.
func (s *CampaignService) ApplyPatch(id string, patch models.CampaignPatch) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.getSession(id)
	if err != nil {
		return models.Campaign{}, err
	}
	session.Campaign = campaign.ApplyUpdate(session.Campaign, patch)
	return session.Campaign, nil
}

// Publish validates the campaign and flips it to published.
func (s *CampaignService) Publish(id string) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.getSession(id)
	if err != nil {
		return models.Campaign{}, err
	}
	if err := campaign.Validate(session.Campaign); err != nil {
		return models.Campaign{}, err
	}
	c := session.Campaign
	c.Status = models.StatusPublished
	c.Version++
	c.UpdatedAt = time.Now()
	session.Campaign = c
	logger.Infof("Published campaign %s at version %d", id, c.Version)
	return c, nil
}

// mutate applies fn to the campaign tree under the lock, bumping the
// version on success.
func (s *CampaignService) mutate(id string, fn func(models.Campaign) (models.Campaign, error)) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.getSession(id)
	if err != nil {
		return models.Campaign{}, err
	}
	c, err := fn(session.Campaign)
	if err != nil {
		return models.Campaign{}, err
	}
	c.Version = session.Campaign.Version + 1
	c.UpdatedAt = time.Now()
	session.Campaign = c
	return c, nil
}

// AddQuestion appends a question with a fresh id and renumbers.
func (s *CampaignService) AddQuestion(id string, q models.Question) (models.Campaign, error) {
	return s.mutate(id, func(c models.Campaign) (models.Campaign, error) {
		q.ID = models.NewID()
		for i := range q.Answers {
			q.Answers[i].ID = models.NewID()
		}
		c.Questions = campaign.Renumber(campaign.AddItem(c.Questions, q))
		return c, nil
	})
}

// DuplicateQuestion copies the question at index, with fresh ids for the
// copy and all of its answers.
func (s *CampaignService) DuplicateQuestion(id string, index int) (models.Campaign, error) {
	return s.mutate(id, func(c models.Campaign) (models.Campaign, error) {
		qs, err := campaign.DuplicateItem(c.Questions, index)
		if err != nil {
			return models.Campaign{}, err
		}
		c.Questions = campaign.Renumber(qs)
		return c, nil
	})
}

// DeleteQuestion removes the question at index, rejecting a delete that
// would leave the campaign without questions.
func (s *CampaignService) DeleteQuestion(id string, index int) (models.Campaign, error) {
	return s.mutate(id, func(c models.Campaign) (models.Campaign, error) {
		qs, err := campaign.DeleteItem(c.Questions, index, campaign.MinQuestions)
		if err != nil {
			return models.Campaign{}, err
		}
		c.Questions = campaign.Renumber(qs)
		return c, nil
	})
}

// ReorderQuestion moves a question between positions and renumbers.
func (s *CampaignService) ReorderQuestion(id string, from, to int) (models.Campaign, error) {
	return s.mutate(id, func(c models.Campaign) (models.Campaign, error) {
		qs, err := campaign.ReorderItem(c.Questions, from, to)
		if err != nil {
			return models.Campaign{}, err
		}
		c.Questions = campaign.Renumber(qs)
		return c, nil
	})
}

// UpdateQuestion replaces the content of the question at index while
// preserving its id and display number. Answers keep the ids the caller
// sends back; an answer without an id is new and gets a fresh one.
func (s *CampaignService) UpdateQuestion(id string, index int, in models.Question) (models.Campaign, error) {
	return s.mutate(id, func(c models.Campaign) (models.Campaign, error) {
		if index < 0 || index >= len(c.Questions) {
			return models.Campaign{}, campaign.ErrIndexOutOfRange
		}
		qs := append([]models.Question(nil), c.Questions...)
		q := qs[index]
		q.Prompt = in.Prompt
		q.Kind = in.Kind
		q.Required = in.Required
		q.ImageURL = in.ImageURL
		answers := make([]models.Answer, len(in.Answers))
		for i, a := range in.Answers {
			if a.ID == "" {
				a.ID = models.NewID()
			}
			answers[i] = a
		}
		q.Answers = answers
		qs[index] = q
		c.Questions = qs
		return c, nil
	})
}

// mutateAnswers rewrites the answer list of the question at index. The
// index resolves under the same lock acquisition as the edit, so a
// concurrent question reorder cannot slip between lookup and write.
func (s *CampaignService) mutateAnswers(id string, questionIndex int, fn func([]models.Answer) ([]models.Answer, error)) (models.Campaign, error) {
	return s.mutate(id, func(c models.Campaign) (models.Campaign, error) {
		if questionIndex < 0 || questionIndex >= len(c.Questions) {
			return models.Campaign{}, campaign.ErrIndexOutOfRange
		}
		answers, err := fn(c.Questions[questionIndex].Answers)
		if err != nil {
			return models.Campaign{}, err
		}
		qs := append([]models.Question(nil), c.Questions...)
		qs[questionIndex].Answers = answers
		c.Questions = qs
		return c, nil
	})
}

// AddAnswer appends an answer to the question at index.
func (s *CampaignService) AddAnswer(id string, questionIndex int, a models.Answer) (models.Campaign, error) {
	return s.mutateAnswers(id, questionIndex, func(answers []models.Answer) ([]models.Answer, error) {
		a.ID = models.NewID()
		return campaign.AddItem(answers, a), nil
	})
}

// DeleteAnswer removes an answer, keeping the two-answer floor.
func (s *CampaignService) DeleteAnswer(id string, questionIndex, index int) (models.Campaign, error) {
	return s.mutateAnswers(id, questionIndex, func(answers []models.Answer) ([]models.Answer, error) {
		return campaign.DeleteItem(answers, index, campaign.MinAnswers)
	})
}

// ReorderAnswer moves an answer between positions.
func (s *CampaignService) ReorderAnswer(id string, questionIndex, from, to int) (models.Campaign, error) {
	return s.mutateAnswers(id, questionIndex, func(answers []models.Answer) ([]models.Answer, error) {
		return campaign.ReorderItem(answers, from, to)
	})
}

// mutateWheel rewrites the wheel block.
func (s *CampaignService) mutateWheel(id string, fn func(models.WheelConfig) (models.WheelConfig, error)) (models.Campaign, error) {
	return s.mutate(id, func(c models.Campaign) (models.Campaign, error) {
		if c.Wheel == nil {
			return models.Campaign{}, ErrNoWheel
		}
		w, err := fn(*c.Wheel)
		if err != nil {
			return models.Campaign{}, err
		}
		c.Wheel = &w
		return c, nil
	})
}

// AddSegment appends a wheel segment with a fresh id.
func (s *CampaignService) AddSegment(id string, seg models.Segment) (models.Campaign, error) {
	return s.mutateWheel(id, func(w models.WheelConfig) (models.WheelConfig, error) {
		seg.ID = models.NewID()
		w.Segments = campaign.AddItem(w.Segments, seg)
		return w, nil
	})
}

// DuplicateSegment copies the segment at index. The copy keeps the prize
// reference; wheels may show several slices for one prize.
func (s *CampaignService) DuplicateSegment(id string, index int) (models.Campaign, error) {
	return s.mutateWheel(id, func(w models.WheelConfig) (models.WheelConfig, error) {
		segs, err := campaign.DuplicateItem(w.Segments, index)
		if err != nil {
			return models.WheelConfig{}, err
		}
		w.Segments = segs
		return w, nil
	})
}

// DeleteSegment removes the segment at index. A wheel keeps at least one
// segment so there is always somewhere to land.
func (s *CampaignService) DeleteSegment(id string, index int) (models.Campaign, error) {
	return s.mutateWheel(id, func(w models.WheelConfig) (models.WheelConfig, error) {
		segs, err := campaign.DeleteItem(w.Segments, index, 1)
		if err != nil {
			return models.WheelConfig{}, err
		}
		w.Segments = segs
		return w, nil
	})
}

// ReorderSegment moves a segment between wheel positions.
func (s *CampaignService) ReorderSegment(id string, from, to int) (models.Campaign, error) {
	return s.mutateWheel(id, func(w models.WheelConfig) (models.WheelConfig, error) {
		segs, err := campaign.ReorderItem(w.Segments, from, to)
		if err != nil {
			return models.WheelConfig{}, err
		}
		w.Segments = segs
		return w, nil
	})
}

// UpsertPrize adds or replaces a prize in the wheel block. A replace
// keeps the submitted RemainingStock as-is: an exhausted prize must stay
// exhausted through a rename or weight change. Only a brand-new prize
// defaults its remaining stock to the full total.
func (s *CampaignService) UpsertPrize(id string, p models.Prize) (models.Campaign, error) {
	return s.mutateWheel(id, func(w models.WheelConfig) (models.WheelConfig, error) {
		if p.ID == "" {
			p.ID = models.NewID()
		}
		prizes := append([]models.Prize(nil), w.Prizes...)
		for i, existing := range prizes {
			if existing.ID == p.ID {
				prizes[i] = p
				w.Prizes = prizes
				return w, nil
			}
		}
		if p.RemainingStock == 0 && !p.Unlimited() {
			p.RemainingStock = p.TotalStock
		}
		w.Prizes = append(prizes, p)
		return w, nil
	})
}

// Spin runs one draw against the campaign's wheel. On a win the prize
// stock is consumed in the stored tree before the result is returned, so
// the next spin sees the decrement. The DrawResult travels back to the
// caller in this same call; nothing is parked in shared state between
// the draw and the animation callback.
func (s *CampaignService) Spin(id string) (models.DrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.getSession(id)
	if err != nil {
		return models.DrawResult{}, err
	}
	if session.Campaign.Wheel == nil {
		return models.DrawResult{}, ErrNoWheel
	}
	wheel := *session.Campaign.Wheel

	result, err := draw.DetermineWinningSegment(models.DrawRequest{
		Prizes:   wheel.Prizes,
		Segments: wheel.Segments,
		PlayTime: time.Now(),
	}, s.rng)
	if err != nil {
		return models.DrawResult{}, err
	}

	if result.Won && result.Prize != nil {
		prizes := append([]models.Prize(nil), wheel.Prizes...)
		for i, p := range prizes {
			if p.ID == result.Prize.ID {
				prizes[i] = draw.ConsumePrize(p)
				break
			}
		}
		wheel.Prizes = prizes
		c := session.Campaign
		c.Wheel = &wheel
		session.Campaign = c
	}

	part := &models.Participation{
		ID:         models.NewID(),
		CampaignID: id,
		Won:        result.Won,
		SegmentID:  result.Segment.ID,
		PlayedAt:   time.Now(),
	}
	if result.Prize != nil {
		part.PrizeID = result.Prize.ID
	}
	session.Participations = append(session.Participations, part)

	return result, nil
}

// Participations returns the plays recorded against a campaign.
func (s *CampaignService) Participations(id string) ([]*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.getSession(id)
	if err != nil {
		return nil, err
	}
	return session.Participations, nil
}

// CleanUpInactiveSessions removes sessions idle longer than the TTL.
func (s *CampaignService) CleanUpInactiveSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if time.Since(session.LastActivity) > s.sessionTTL {
			logger.Infof("Dropping inactive campaign session: %s", id)
			delete(s.sessions, id)
		}
	}
}

// ClearSession removes all state for a campaign.
func (s *CampaignService) ClearSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	logger.Infof("Cleared session for campaign: %s", id)
}
