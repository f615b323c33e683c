package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/habitstreak/internal/streak"
	"github.com/limbo/habitstreak/pkg/entity"
	"gopkg.in/yaml.v3"
)

// Date is a YYYY-MM-DD calendar day in scenario files.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse(time.DateOnly, value.Value)
	if err != nil {
		return fmt.Errorf("line %d: date must be YYYY-MM-DD, got %q", value.Line, value.Value)
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

type ScenarioState struct {
	Streak               int    `yaml:"streak"`
	HighestStreak        int    `yaml:"highest_streak"`
	GapStart             *Date  `yaml:"gap_start"`
	FreezeDaysUsedForGap int    `yaml:"freeze_days_used_for_gap"`
	FreezeAppliedDates   []Date `yaml:"freeze_applied_dates"`
}

// Scenario is one habit evaluated on one day.
type Scenario struct {
	Today       Date          `yaml:"today"`
	FreezeDays  int           `yaml:"freeze_days"`
	State       ScenarioState `yaml:"state"`
	Completions []Date        `yaml:"completions"`
}

func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()
	return DecodeScenario(f)
}

func DecodeScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario is empty")
		}
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if sc.Today.IsZero() {
		return nil, errors.New("scenario: today is required")
	}
	return &sc, nil
}

func (sc *Scenario) StreakState() entity.StreakState {
	state := entity.StreakState{
		Streak:                      sc.State.Streak,
		HighestStreakAchieved:       sc.State.HighestStreak,
		FreezeDaysUsedForCurrentGap: sc.State.FreezeDaysUsedForGap,
		FreezeAppliedDates:          make([]time.Time, 0, len(sc.State.FreezeAppliedDates)),
	}
	if sc.State.GapStart != nil {
		gap := sc.State.GapStart.Time
		state.CurrentGapStartDate = &gap
	}
	for _, d := range sc.State.FreezeAppliedDates {
		state.FreezeAppliedDates = append(state.FreezeAppliedDates, d.Time)
	}
	return state
}

func (sc *Scenario) Checks() []entity.HabitCheck {
	habitID := uuid.New()
	checks := make([]entity.HabitCheck, 0, len(sc.Completions))
	for i, d := range sc.Completions {
		checks = append(checks, entity.HabitCheck{
			ID:        i + 1,
			HabitID:   habitID,
			CheckDate: streak.DateOf(d.Time),
		})
	}
	return checks
}
