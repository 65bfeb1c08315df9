package service

import "errors"

// Fallos con nombre que el adapter traduce a mensajes. Todo lo demás que
// salga de los repos se propaga tal cual (fallo de persistencia genérico).
var (
	ErrAlreadyOnShift = errors.New("already on shift")
	ErrInvalidState   = errors.New("operation not valid in current state")
	ErrNoOpenSession  = errors.New("no open session")
	ErrConfigNotFound = errors.New("no shift config for that role/type")
	ErrInvalidWeek    = errors.New("invalid week id")
	ErrInvalidConfig  = errors.New("invalid shift config")
)
