package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")
	ErrValidation       = errors.New("validation error")

	ErrHabitNotFound = errors.New("habit doesn't exist")
	ErrOwnerNotFound = errors.New("habit owner doesn't exist")
	ErrUserHasHabit  = errors.New("user already has habit with such title")
	ErrWrongOwner    = errors.New("habit belongs to another user")

	ErrCheckExist          = errors.New("habit already checked on this date")
	ErrCheckNotFound       = errors.New("habit isn't checked on this date")
	ErrCheckDateNotAllowed = errors.New("habit can't be checked in the future")
	ErrInvalidDateRange    = errors.New("invalid date range")

	ErrNotEnoughDiamonds   = errors.New("not enough diamonds")
	ErrNotEnoughFreezeDays = errors.New("not enough freeze days")
	ErrStaleStreakState    = errors.New("streak state changed since it was read")
)
