package service

import "sync"

// sessionLocks serializa las transiciones sobre un mismo (guild, user):
// comandos y sweeper toman el mismo lock, así dos transiciones nunca leen el
// mismo pre-estado y ganan las dos. Entre procesos la última línea de defensa
// son los UPDATE condicionales y el índice único de turnos abiertos.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{m: map[string]*sync.Mutex{}}
}

func (l *sessionLocks) lock(guildID, userID string) func() {
	key := guildID + ":" + userID
	l.mu.Lock()
	mu, ok := l.m[key]
	if !ok {
		mu = &sync.Mutex{}
		l.m[key] = mu
	}
	l.mu.Unlock()
	mu.Lock()
	return mu.Unlock
}
