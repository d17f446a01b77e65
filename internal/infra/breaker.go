package infra

import (
	"errors"
	"sync"
	"time"
)

// ErrRelayCaido is returned while the breaker refuses to talk to SMTP.
var ErrRelayCaido = errors.New("relevo de correo no disponible")

// BreakerState is the mail breaker's position.
type BreakerState uint8

const (
	BreakerClosed BreakerState = iota // sends flow to the relay
	BreakerOpen                       // relay presumed down, fast-fail
	BreakerTrial                      // cool-down over, one trial send allowed
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerTrial:
		return "trial"
	}
	return "unknown"
}

// BreakerConfig tunes the mail breaker.
type BreakerConfig struct {
	// TripAfter consecutive send failures stop further attempts.
	TripAfter int
	// CoolDown is how long a tripped breaker waits before letting a
	// single trial send reach the relay again.
	CoolDown time.Duration
}

// MailBreakerConfig is tuned for an SMTP relay: mail servers that reject
// three sends in a row are down, not flaky, and they rarely come back
// within seconds. Alerts are not urgent, so a long cool-down costs nothing.
func MailBreakerConfig() BreakerConfig {
	return BreakerConfig{TripAfter: 3, CoolDown: 2 * time.Minute}
}

// Breaker shields the SMTP relay from the worker pool. While closed it
// passes sends through and counts consecutive failures; at TripAfter it
// opens and fast-fails everything with ErrRelayCaido. After CoolDown a
// single send is let through as a trial: if it lands the breaker closes,
// if it fails the cool-down starts over.
type Breaker struct {
	cfg BreakerConfig

	mu       sync.Mutex
	fallos   int       // consecutive failures while closed
	caidoEn  time.Time // when the breaker tripped; zero while closed
	probando bool      // one trial send is in flight
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = 3
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 2 * time.Minute
	}
	return &Breaker{cfg: cfg}
}

// State reports the breaker's position for health endpoints and logs.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.caidoEn.IsZero():
		return BreakerClosed
	case time.Since(b.caidoEn) < b.cfg.CoolDown:
		return BreakerOpen
	default:
		return BreakerTrial
	}
}

// Do runs send through the breaker. It returns ErrRelayCaido without
// calling send while the breaker is open, and send's own error otherwise.
func (b *Breaker) Do(send func() error) error {
	if !b.tomarTurno() {
		return ErrRelayCaido
	}
	err := send()
	b.registrar(err)
	return err
}

// tomarTurno decides whether this send may reach the relay. In trial it
// admits exactly one caller; the rest fast-fail until the trial resolves.
func (b *Breaker) tomarTurno() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.caidoEn.IsZero() {
		return true
	}
	if time.Since(b.caidoEn) < b.cfg.CoolDown || b.probando {
		return false
	}
	b.probando = true
	return true
}

func (b *Breaker) registrar(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.fallos = 0
		b.caidoEn = time.Time{}
		b.probando = false
		return
	}

	if b.probando {
		// the trial failed, start the cool-down over
		b.caidoEn = time.Now()
		b.probando = false
		return
	}
	b.fallos++
	if b.fallos >= b.cfg.TripAfter {
		b.caidoEn = time.Now()
		b.fallos = 0
	}
}
