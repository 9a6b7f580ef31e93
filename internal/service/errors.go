package service

import "errors"

var (
	ErrInvalidAction  = errors.New("invalid action")
	ErrInvalidRequest = errors.New("invalid request")
)
