package game

import "errors"

var (
	// ErrInvalidConfiguration is returned for out-of-range construction
	// parameters such as a deck count outside 1..8 or a blank player id.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidState is returned when rebuilding an object from persisted
	// fields that violate its invariants.
	ErrInvalidState = errors.New("invalid state")

	// ErrGameAlreadyFinished is returned by Hit and Stand on a terminal game.
	ErrGameAlreadyFinished = errors.New("game is already finished")

	// ErrShoeExhausted is returned when drawing from an empty shoe.
	ErrShoeExhausted = errors.New("no more cards in the shoe")
)
