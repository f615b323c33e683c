package streak

import "time"

const (
	MilestoneStep   = 10
	MilestoneReward = 20
	MajorMilestone  = 100
)

// Diamonds returns the reward for every milestone in
// (previousHighest, currentStreak]. Every 10th day pays 20, every 100th day
// pays its own number on top.
func Diamonds(previousHighest, currentStreak int) int {
	return Engine{}.diamonds(previousHighest, currentStreak)
}

func (e Engine) diamonds(previousHighest, currentStreak int) int {
	if currentStreak <= previousHighest {
		return 0
	}
	previousHighest = max(previousHighest, 0)
	total := 0
	for day := (previousHighest/MilestoneStep + 1) * MilestoneStep; day <= currentStreak; day += MilestoneStep {
		paid := MilestoneReward
		if day%MajorMilestone == 0 {
			paid += day
		}
		total += paid
		e.trace(EventMilestone, time.Time{}, day)
	}
	return total
}
