package scheduler

import (
	"math"
	"testing"
	"time"

	"github.com/flashnotes/backend/internal/models"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newCard() models.Flashcard {
	return models.Flashcard{
		ID:             "card-1",
		Question:       "What is a closure?",
		Answer:         "A function bundled with references to its lexical scope.",
		Origin:         models.OriginManual,
		EasinessFactor: models.InitialEasinessFactor,
		IsNew:          true,
		CreatedAt:      t0,
		NextReviewAt:   t0,
	}
}

func defaultCfg() models.SchedulerConfig {
	return models.DefaultSchedulerConfig()
}

func approxTime(t *testing.T, name string, got, want time.Time) {
	t.Helper()
	if diff := got.Sub(want); diff < -time.Second || diff > time.Second {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestReview_NewCardClimbsLadderThenGraduates(t *testing.T) {
	cfg := defaultCfg() // learning steps [10, 1440]
	card := newCard()

	// First pass: enters the ladder at index 1, not graduation.
	card = Review(card, Good, cfg, t0)
	if card.IsNew {
		t.Error("card should leave isNew on first pass")
	}
	if card.LearningStepIndex != 1 {
		t.Errorf("LearningStepIndex = %d, want 1", card.LearningStepIndex)
	}
	if card.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0 while in ladder", card.Repetitions)
	}
	approxTime(t, "NextReviewAt", card.NextReviewAt, t0.Add(1440*time.Minute))

	// Second pass: graduates.
	t1 := t0.Add(24 * time.Hour)
	card = Review(card, Good, cfg, t1)
	if card.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1 after graduation", card.Repetitions)
	}
	if card.IntervalDays != 6 {
		t.Errorf("IntervalDays = %v, want graduating interval 6", card.IntervalDays)
	}
	approxTime(t, "NextReviewAt", card.NextReviewAt, t1.Add(6*24*time.Hour))
}

func TestReview_SingleStepLadderGraduatesImmediately(t *testing.T) {
	cfg := defaultCfg()
	cfg.LearningSteps = []int{10}

	card := Review(newCard(), Good, cfg, t0)
	if card.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1 (length-1 ladder graduates on first pass)", card.Repetitions)
	}
	if card.IntervalDays != cfg.GraduatingIntervalDays {
		t.Errorf("IntervalDays = %v, want %v", card.IntervalDays, cfg.GraduatingIntervalDays)
	}
}

func TestReview_LapseResetsFromAnyState(t *testing.T) {
	cfg := defaultCfg()

	mature := newCard()
	mature.IsNew = false
	mature.Repetitions = 7
	mature.LearningStepIndex = 2
	mature.IntervalDays = 120

	for _, q := range []Quality{Again, Hard} {
		card := Review(mature, q, cfg, t0)
		if card.Repetitions != 0 {
			t.Errorf("quality %d: Repetitions = %d, want 0", q, card.Repetitions)
		}
		if card.LearningStepIndex != 0 {
			t.Errorf("quality %d: LearningStepIndex = %d, want 0", q, card.LearningStepIndex)
		}
		if card.IsNew {
			t.Errorf("quality %d: lapsed card must not return to isNew", q)
		}
		approxTime(t, "NextReviewAt", card.NextReviewAt, t0.Add(10*time.Minute))
	}
}

func TestReview_GraduatedIntervalGrowth(t *testing.T) {
	cfg := defaultCfg()

	card := newCard()
	card.IsNew = false
	card.Repetitions = 1
	card.IntervalDays = 6

	prev := card.IntervalDays
	now := t0
	for i := 0; i < 10; i++ {
		card = Review(card, Good, cfg, now)
		if card.IntervalDays < prev {
			t.Fatalf("iteration %d: interval shrank from %v to %v on a pass", i, prev, card.IntervalDays)
		}
		if card.IntervalDays > cfg.MaxIntervalDays {
			t.Fatalf("iteration %d: interval %v exceeds max %v", i, card.IntervalDays, cfg.MaxIntervalDays)
		}
		prev = card.IntervalDays
		now = card.NextReviewAt
	}
}

func TestReview_IntervalClampedToMax(t *testing.T) {
	cfg := defaultCfg()
	cfg.MaxIntervalDays = 30

	card := newCard()
	card.IsNew = false
	card.Repetitions = 3
	card.IntervalDays = 28

	card = Review(card, Easy, cfg, t0)
	if card.IntervalDays != 30 {
		t.Errorf("IntervalDays = %v, want clamped to 30", card.IntervalDays)
	}
}

func TestReview_EasinessFactorFloor(t *testing.T) {
	cfg := defaultCfg()

	card := newCard()
	card.IsNew = false
	card.Repetitions = 1
	card.IntervalDays = 6
	card.EasinessFactor = 1.35

	// Quality 3 is the harshest pass: EF delta = 0.1 - 2*(0.08+2*0.02) = -0.14.
	for i := 0; i < 5; i++ {
		card = Review(card, PassThreshold, cfg, t0)
		if card.EasinessFactor < models.MinEasinessFactor {
			t.Fatalf("iteration %d: EasinessFactor %v below floor", i, card.EasinessFactor)
		}
	}
	if card.EasinessFactor != models.MinEasinessFactor {
		t.Errorf("EasinessFactor = %v, want pinned at %v", card.EasinessFactor, models.MinEasinessFactor)
	}
}

func TestReview_QualityModifiers(t *testing.T) {
	cfg := defaultCfg()

	base := newCard()
	base.IsNew = false
	base.Repetitions = 1
	base.IntervalDays = 10
	base.EasinessFactor = 2.0

	tests := []struct {
		quality Quality
		want    float64
	}{
		// EF' then interval = round(10 * EF' * modifier).
		{PassThreshold, math.Round(10 * 1.86 * 1.2)}, // EF 2.0-0.14, boundary boost
		{Good, math.Round(10 * 2.0)},                 // EF unchanged at quality 4
		{Easy, math.Round(10 * 2.1 * 1.3)},           // EF +0.1, easy boost
	}

	for _, tt := range tests {
		card := Review(base, tt.quality, cfg, t0)
		if card.IntervalDays != tt.want {
			t.Errorf("quality %d: IntervalDays = %v, want %v", tt.quality, card.IntervalDays, tt.want)
		}
	}
}

func TestReview_DoesNotMutateInput(t *testing.T) {
	cfg := defaultCfg()
	card := newCard()
	before := card

	Review(card, Good, cfg, t0)
	if card != before {
		t.Error("Review mutated its input card")
	}
}

func TestReview_PureForSameInputs(t *testing.T) {
	cfg := defaultCfg()
	card := newCard()

	a := Review(card, Easy, cfg, t0)
	b := Review(card, Easy, cfg, t0)
	if *a.LastReviewedAt != *b.LastReviewedAt || a.NextReviewAt != b.NextReviewAt || a.IntervalDays != b.IntervalDays {
		t.Error("Review is not deterministic for identical inputs")
	}
}

func TestApplyOutcome_ConfidenceClamped(t *testing.T) {
	card := newCard()
	card.Confidence = 5

	card = ApplyOutcome(card, Good)
	if card.Confidence != 5 {
		t.Errorf("Confidence = %d, want clamped at 5", card.Confidence)
	}
	if card.ReviewCount != 1 || card.CorrectCount != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", card.ReviewCount, card.CorrectCount)
	}

	card.Confidence = 0
	card = ApplyOutcome(card, Again)
	if card.Confidence != 0 {
		t.Errorf("Confidence = %d, want clamped at 0", card.Confidence)
	}
	if card.ReviewCount != 2 || card.CorrectCount != 1 {
		t.Errorf("counters = (%d, %d), want (2, 1)", card.ReviewCount, card.CorrectCount)
	}
}

func TestApplyOutcome_ConfidenceMovesWithOutcome(t *testing.T) {
	card := newCard()
	card.Confidence = 2

	card = ApplyOutcome(card, Good)
	if card.Confidence != 3 {
		t.Errorf("Confidence = %d, want 3 after pass", card.Confidence)
	}
	card = ApplyOutcome(card, Again)
	if card.Confidence != 2 {
		t.Errorf("Confidence = %d, want 2 after lapse", card.Confidence)
	}
}

func TestQuality(t *testing.T) {
	for q, pass := range map[Quality]bool{1: false, 2: false, 3: true, 4: true, 5: true} {
		if q.IsPass() != pass {
			t.Errorf("Quality(%d).IsPass() = %v, want %v", q, q.IsPass(), pass)
		}
		if !q.Valid() {
			t.Errorf("Quality(%d) should be valid", q)
		}
	}
	for _, q := range []Quality{0, 6, -1} {
		if q.Valid() {
			t.Errorf("Quality(%d) should be invalid", q)
		}
	}
}

func TestReview_ZeroConfigFallsBackToDefaults(t *testing.T) {
	card := Review(newCard(), Good, models.SchedulerConfig{}, t0)
	// Default ladder [10, 1440]: first pass lands on the second step.
	approxTime(t, "NextReviewAt", card.NextReviewAt, t0.Add(1440*time.Minute))
}
