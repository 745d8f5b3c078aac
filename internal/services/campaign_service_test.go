package services

import (
	"errors"
	"testing"
	"time"

	"campaignkit/internal/campaign"
	"campaignkit/internal/draw"
	"campaignkit/internal/models"
)

func newWheelCampaign(t *testing.T, service *CampaignService) models.Campaign {
	t.Helper()
	c, err := service.Create("Prize wheel", models.ModeWheel, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	wheel := &models.WheelConfig{
		Segments: []models.Segment{
			{ID: "s1", Label: "Voucher", IsWinning: true, PrizeID: "p1"},
			{ID: "s2", Label: "Try again", IsWinning: false},
		},
		Prizes: []models.Prize{
			{ID: "p1", Name: "Voucher", TotalStock: 1, RemainingStock: 1, Probability: 100},
		},
	}
	c, err = service.ApplyPatch(c.ID, models.CampaignPatch{Wheel: wheel})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	return c
}

func TestCampaignService_Spin(t *testing.T) {
	service := NewCampaignService(nil, draw.NewSeededRNG(42), time.Hour)
	c := newWheelCampaign(t, service)

	t.Run("winning spin consumes stock", func(t *testing.T) {
		result, err := service.Spin(c.ID)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if !result.Won || result.Prize == nil || result.Prize.ID != "p1" {
			t.Fatalf("Expected a win on p1, got %+v", result)
		}
		if result.Segment.ID != "s1" {
			t.Errorf("Expected to land on s1, got %s", result.Segment.ID)
		}

		updated, err := service.Get(c.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got := updated.Wheel.Prizes[0].RemainingStock; got != 0 {
			t.Errorf("Expected prize stock to be 0, but got %d", got)
		}
	})

	t.Run("exhausted prize can no longer be won", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			result, err := service.Spin(c.ID)
			if err != nil {
				t.Fatal(err)
			}
			if result.Won {
				t.Fatal("Prize stock is exhausted, spin must lose")
			}
			if result.Segment.ID != "s2" {
				t.Errorf("Loss should land on s2, got %s", result.Segment.ID)
			}
		}
	})

	t.Run("participations were recorded", func(t *testing.T) {
		parts, err := service.Participations(c.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(parts) != 21 {
			t.Fatalf("Expected 21 participations, got %d", len(parts))
		}
		wins := 0
		for _, p := range parts {
			if p.Won {
				wins++
				if p.PrizeID != "p1" {
					t.Errorf("Win recorded with prize %q", p.PrizeID)
				}
			}
		}
		if wins != 1 {
			t.Errorf("Expected exactly 1 recorded win, got %d", wins)
		}
	})

	t.Run("spin without a wheel", func(t *testing.T) {
		quiz, err := service.Create("Quiz", models.ModeQuiz, "")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := service.Spin(quiz.ID); !errors.Is(err, ErrNoWheel) {
			t.Errorf("err = %v, want ErrNoWheel", err)
		}
	})

	t.Run("unknown campaign", func(t *testing.T) {
		if _, err := service.Spin("nope"); !errors.Is(err, ErrCampaignNotFound) {
			t.Errorf("err = %v, want ErrCampaignNotFound", err)
		}
	})
}

func TestCampaignService_QuestionEditing(t *testing.T) {
	service := NewCampaignService(nil, draw.NewSeededRNG(1), time.Hour)
	c, err := service.Create("Quiz", models.ModeQuiz, "")
	if err != nil {
		t.Fatal(err)
	}

	q := models.Question{
		Prompt: "First?",
		Kind:   models.QuestionMultipleChoice,
		Answers: []models.Answer{
			{Label: "yes", IsCorrect: true},
			{Label: "no"},
		},
	}
	c, err = service.AddQuestion(c.ID, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Questions) != 1 || c.Questions[0].Number != 1 {
		t.Fatalf("questions = %+v", c.Questions)
	}
	if c.Questions[0].ID == "" || c.Questions[0].Answers[0].ID == "" {
		t.Fatal("ids were not assigned on add")
	}

	t.Run("duplicate assigns fresh ids and renumbers", func(t *testing.T) {
		updated, err := service.DuplicateQuestion(c.ID, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(updated.Questions) != 2 {
			t.Fatalf("len = %d", len(updated.Questions))
		}
		orig, dup := updated.Questions[0], updated.Questions[1]
		if dup.ID == orig.ID {
			t.Error("duplicate kept the question id")
		}
		for i := range orig.Answers {
			if dup.Answers[i].ID == orig.Answers[i].ID {
				t.Errorf("answers[%d] id not regenerated", i)
			}
		}
		if orig.Number != 1 || dup.Number != 2 {
			t.Errorf("numbers = %d, %d", orig.Number, dup.Number)
		}
	})

	t.Run("delete below floor is rejected", func(t *testing.T) {
		updated, err := service.DeleteQuestion(c.ID, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(updated.Questions) != 1 {
			t.Fatalf("len = %d, want 1", len(updated.Questions))
		}
		if _, err := service.DeleteQuestion(c.ID, 0); !errors.Is(err, campaign.ErrMinimumCount) {
			t.Errorf("err = %v, want ErrMinimumCount", err)
		}
	})

	t.Run("answer floor is enforced", func(t *testing.T) {
		if _, err := service.DeleteAnswer(c.ID, 0, 0); !errors.Is(err, campaign.ErrMinimumCount) {
			t.Errorf("err = %v, want ErrMinimumCount", err)
		}
		if _, err := service.AddAnswer(c.ID, 0, models.Answer{Label: "maybe"}); err != nil {
			t.Fatal(err)
		}
		updated, err := service.DeleteAnswer(c.ID, 0, 2)
		if err != nil {
			t.Fatal(err)
		}
		if got := len(updated.Questions[0].Answers); got != 2 {
			t.Errorf("answers = %d, want 2", got)
		}
	})

	t.Run("answer edits on a bad question index", func(t *testing.T) {
		if _, err := service.AddAnswer(c.ID, 5, models.Answer{Label: "x"}); !errors.Is(err, campaign.ErrIndexOutOfRange) {
			t.Errorf("AddAnswer err = %v, want ErrIndexOutOfRange", err)
		}
		if _, err := service.DeleteAnswer(c.ID, -1, 0); !errors.Is(err, campaign.ErrIndexOutOfRange) {
			t.Errorf("DeleteAnswer err = %v, want ErrIndexOutOfRange", err)
		}
		if _, err := service.ReorderAnswer(c.ID, 5, 0, 1); !errors.Is(err, campaign.ErrIndexOutOfRange) {
			t.Errorf("ReorderAnswer err = %v, want ErrIndexOutOfRange", err)
		}
	})

	t.Run("update keeps the question id and existing answer ids", func(t *testing.T) {
		before, err := service.Get(c.ID)
		if err != nil {
			t.Fatal(err)
		}
		old := before.Questions[0]
		in := models.Question{
			Prompt:   "Rephrased?",
			Kind:     models.QuestionMultipleChoice,
			Required: true,
			Answers: []models.Answer{
				{ID: old.Answers[0].ID, Label: "sure", IsCorrect: true},
				{Label: "brand new"},
			},
		}
		updated, err := service.UpdateQuestion(c.ID, 0, in)
		if err != nil {
			t.Fatal(err)
		}
		got := updated.Questions[0]
		if got.ID != old.ID || got.Number != old.Number {
			t.Errorf("identity changed: id %q -> %q, number %d -> %d", old.ID, got.ID, old.Number, got.Number)
		}
		if got.Prompt != "Rephrased?" || !got.Required {
			t.Errorf("content not applied: %+v", got)
		}
		if got.Answers[0].ID != old.Answers[0].ID {
			t.Error("existing answer id was regenerated")
		}
		if got.Answers[1].ID == "" {
			t.Error("new answer did not get an id")
		}
		if !got.Answers[0].IsCorrect {
			t.Error("correct flag not applied")
		}
	})

	t.Run("update on a bad index", func(t *testing.T) {
		if _, err := service.UpdateQuestion(c.ID, 7, models.Question{Prompt: "x"}); !errors.Is(err, campaign.ErrIndexOutOfRange) {
			t.Errorf("err = %v, want ErrIndexOutOfRange", err)
		}
	})

	t.Run("version bumps on every edit", func(t *testing.T) {
		before, _ := service.Get(c.ID)
		after, err := service.ReorderQuestion(c.ID, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if after.Version != before.Version+1 {
			t.Errorf("version %d -> %d", before.Version, after.Version)
		}
	})
}

func TestCampaignService_UpsertPrize(t *testing.T) {
	t.Run("editing an exhausted prize keeps it exhausted", func(t *testing.T) {
		service := NewCampaignService(nil, draw.NewSeededRNG(42), time.Hour)
		c := newWheelCampaign(t, service)

		result, err := service.Spin(c.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Won {
			t.Fatal("seeded spin should win the only prize")
		}

		current, err := service.Get(c.ID)
		if err != nil {
			t.Fatal(err)
		}
		edited := current.Wheel.Prizes[0]
		edited.Name = "Voucher (renamed)"
		updated, err := service.UpsertPrize(c.ID, edited)
		if err != nil {
			t.Fatal(err)
		}
		if got := updated.Wheel.Prizes[0].RemainingStock; got != 0 {
			t.Fatalf("rename restocked the prize: remaining = %d, want 0", got)
		}

		for i := 0; i < 10; i++ {
			result, err := service.Spin(c.ID)
			if err != nil {
				t.Fatal(err)
			}
			if result.Won {
				t.Fatal("exhausted prize was won after an edit")
			}
		}
	})

	t.Run("a new prize starts with full stock", func(t *testing.T) {
		service := NewCampaignService(nil, draw.NewSeededRNG(1), time.Hour)
		c := newWheelCampaign(t, service)

		updated, err := service.UpsertPrize(c.ID, models.Prize{Name: "Grand", TotalStock: 5, Probability: 1})
		if err != nil {
			t.Fatal(err)
		}
		var grand models.Prize
		for _, p := range updated.Wheel.Prizes {
			if p.Name == "Grand" {
				grand = p
			}
		}
		if grand.ID == "" {
			t.Fatal("new prize did not get an id")
		}
		if grand.RemainingStock != 5 {
			t.Errorf("remaining = %d, want 5", grand.RemainingStock)
		}
	})
}

func TestCampaignService_Publish(t *testing.T) {
	service := NewCampaignService(nil, draw.NewSeededRNG(1), time.Hour)

	t.Run("empty campaign is rejected", func(t *testing.T) {
		c, err := service.Create("Empty", models.ModeQuiz, "")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := service.Publish(c.ID); !errors.Is(err, campaign.ErrInvalidConfiguration) {
			t.Errorf("err = %v, want ErrInvalidConfiguration", err)
		}
	})

	t.Run("valid campaign publishes", func(t *testing.T) {
		c, err := service.Create("Quiz", models.ModeQuiz, "")
		if err != nil {
			t.Fatal(err)
		}
		_, err = service.AddQuestion(c.ID, models.Question{
			Prompt: "Who?",
			Kind:   models.QuestionMultipleChoice,
			Answers: []models.Answer{
				{Label: "Me", IsCorrect: true},
				{Label: "You"},
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		published, err := service.Publish(c.ID)
		if err != nil {
			t.Fatal(err)
		}
		if published.Status != models.StatusPublished {
			t.Errorf("status = %s", published.Status)
		}
	})
}

func TestCampaignService_CleanUpInactiveSessions(t *testing.T) {
	service := NewCampaignService(nil, draw.NewSeededRNG(1), 10*time.Millisecond)
	c, err := service.Create("Short lived", models.ModeQuiz, "")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)
	service.CleanUpInactiveSessions()

	if _, err := service.Get(c.ID); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("session should have been cleaned up, err = %v", err)
	}
}
