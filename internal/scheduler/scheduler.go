// Package scheduler computes spaced-repetition schedules for flashcards.
// Review is a pure function of (card, quality, config, now): it performs
// no I/O and never mutates its input, so the same inputs always produce
// the same schedule.
package scheduler

import (
	"math"
	"time"

	"github.com/flashnotes/backend/internal/models"
)

// Quality is the user's judgment of a review. 1=Again, 2=Hard, 4=Good,
// 5=Easy. 3 is never emitted by the bundled UI but remains a valid
// pass-boundary input and must not be special-cased away.
type Quality int

const (
	Again Quality = 1
	Hard  Quality = 2
	Good  Quality = 4
	Easy  Quality = 5

	// PassThreshold separates a pass from a lapse.
	PassThreshold Quality = 3
)

// Valid reports whether q is in the accepted 1–5 range.
func (q Quality) Valid() bool {
	return q >= 1 && q <= 5
}

// IsPass reports whether q counts as a successful recall.
func (q Quality) IsPass() bool {
	return q >= PassThreshold
}

// Review returns the card rescheduled for the given review outcome.
//
// Lapses reset the card into the learning ladder. Cards still in the
// ladder climb one step per pass and graduate past the last step. A
// graduated pass grows the interval by the easiness factor, clamped to
// the configured ceiling. Counters and confidence are the caller's
// concern; see ApplyOutcome.
func Review(card models.Flashcard, quality Quality, cfg models.SchedulerConfig, now time.Time) models.Flashcard {
	cfg = cfg.Normalize()

	switch {
	case !quality.IsPass():
		card = lapse(card, cfg, now)
	case card.IsNew || card.Repetitions == 0:
		card = learningStep(card, cfg, now)
	default:
		card = graduatedReview(card, quality, cfg, now)
	}

	card.LastReviewedAt = &now
	return card
}

// lapse drops the card back to the first learning step regardless of how
// mature it was.
func lapse(card models.Flashcard, cfg models.SchedulerConfig, now time.Time) models.Flashcard {
	step := cfg.LearningSteps[0]
	card.Repetitions = 0
	card.LearningStepIndex = 0
	card.IsNew = false
	card.IntervalDays = float64(step) / (24 * 60)
	card.NextReviewAt = now.Add(time.Duration(step) * time.Minute)
	return card
}

// learningStep advances a card one rung up the ladder, graduating it when
// it climbs past the last step.
func learningStep(card models.Flashcard, cfg models.SchedulerConfig, now time.Time) models.Flashcard {
	card.IsNew = false
	card.LearningStepIndex++

	if card.LearningStepIndex < len(cfg.LearningSteps) {
		step := cfg.LearningSteps[card.LearningStepIndex]
		card.IntervalDays = float64(step) / (24 * 60)
		card.NextReviewAt = now.Add(time.Duration(step) * time.Minute)
		return card
	}

	// Graduation out of the ladder.
	card.Repetitions = 1
	card.IntervalDays = math.Min(cfg.GraduatingIntervalDays, cfg.MaxIntervalDays)
	card.NextReviewAt = now.Add(days(card.IntervalDays))
	return card
}

// graduatedReview applies the SM-2 easiness update and grows the interval.
func graduatedReview(card models.Flashcard, quality Quality, cfg models.SchedulerConfig, now time.Time) models.Flashcard {
	card.Repetitions++

	q := float64(quality)
	ef := card.EasinessFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ef < models.MinEasinessFactor {
		ef = models.MinEasinessFactor
	}
	card.EasinessFactor = ef

	multiplier := ef
	switch quality {
	case Easy:
		multiplier *= 1.3
	case PassThreshold: // the good-but-not-easy boundary
		multiplier *= 1.2
	}

	previous := card.IntervalDays
	if previous < cfg.NewCardIntervalDays {
		// Floor for cards whose stored interval predates graduation.
		previous = cfg.NewCardIntervalDays
	}
	interval := math.Round(previous * multiplier)
	if interval > cfg.MaxIntervalDays {
		interval = cfg.MaxIntervalDays
	}
	card.IntervalDays = interval
	card.NextReviewAt = now.Add(days(interval))
	return card
}

// ApplyOutcome performs the caller-side bookkeeping that accompanies a
// review: confidence nudging and counter increments. Kept beside Review
// so every caller applies the same contract.
func ApplyOutcome(card models.Flashcard, quality Quality) models.Flashcard {
	card.ReviewCount++
	if quality.IsPass() {
		card.CorrectCount++
		if card.Confidence < models.MaxConfidence {
			card.Confidence++
		}
	} else if card.Confidence > models.MinConfidence {
		card.Confidence--
	}
	return card
}

func days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}
