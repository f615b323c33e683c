// Package streak computes habit streaks from a sparse completion history.
//
// Rules:
//   - a day with a check adds 1 to the streak;
//   - the first missed day of every gap is a grace day and costs nothing;
//   - every further missed day of the open gap is covered by one freeze day
//     while the user has them, otherwise it takes 1 off the streak;
//   - missed days of closed gaps (between two checks) cost 1 each after grace;
//   - the streak never drops below zero;
//   - crossing every 10th day pays 20 diamonds, every 100th day additionally
//     pays the day number, but only above the previous high-water mark.
//
// The streak is always rebuilt from the full history, so back-dated checks and
// unchecks need no special handling. Freeze consumption is tracked per gap
// (gap start + units used) so that recalculating the same open gap again only
// charges the freeze days it did not charge before.
//
// Nothing here does I/O or keeps state between calls.
package streak
