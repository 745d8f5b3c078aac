package models

import "time"

// UnlimitedStock marks a prize whose stock is never decremented.
const UnlimitedStock = -1

// ScheduleWindow restricts when a prize can be won.
// A zero Start or End leaves that side of the window open.
type ScheduleWindow struct {
	Start time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End   time.Time `json:"end,omitempty" yaml:"end,omitempty"`
}

// Contains reports whether t falls inside the window.
func (w ScheduleWindow) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// Prize is an awardable reward with finite or unlimited stock and a
// relative draw weight. Probability is a weight, not a percentage.
type Prize struct {
	ID             string          `json:"id" yaml:"id"`
	Name           string          `json:"name" yaml:"name"`
	TotalStock     int             `json:"totalStock" yaml:"totalStock"`
	RemainingStock int             `json:"remainingStock" yaml:"remainingStock"`
	Probability    float64         `json:"probability" yaml:"probability"`
	Schedule       *ScheduleWindow `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// Unlimited reports whether the prize never runs out of stock.
func (p Prize) Unlimited() bool {
	return p.TotalStock == UnlimitedStock
}

// Segment is a selectable slice of a wheel or an answer slot.
// A segment with no PrizeID is a losing slot.
type Segment struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	IsWinning bool   `json:"isWinning" yaml:"isWinning"`
	PrizeID   string `json:"prizeId,omitempty" yaml:"prizeId,omitempty"`
}

// DrawRequest is a snapshot of the prizes and segments at play time.
// Segment order matters for wheel angle mapping, not for probability.
type DrawRequest struct {
	Prizes   []Prize   `json:"prizes"`
	Segments []Segment `json:"segments"`
	PlayTime time.Time `json:"playTime"`
}

// DrawResult is the outcome of one draw. Segment is always set, even on
// a loss, so the wheel animation has somewhere to land.
type DrawResult struct {
	Won     bool    `json:"won"`
	Prize   *Prize  `json:"prize,omitempty"`
	Segment Segment `json:"segment"`
}

// Participation records one end-user play of a published campaign.
type Participation struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	Won        bool      `json:"won"`
	PrizeID    string    `json:"prizeId,omitempty"`
	SegmentID  string    `json:"segmentId"`
	PlayedAt   time.Time `json:"playedAt"`
}
