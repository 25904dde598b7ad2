package core

import "github.com/rs/zerolog"

// Log is the logging surface handed to every contract service. Each
// state-mutating operation emits its action attributes through it so
// off-chain indexers can follow along.
type Log interface {
	Info() *zerolog.Event
	Debug() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}

type zerologAdapter struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) Log {
	return &zerologAdapter{logger: logger}
}

func (z *zerologAdapter) Info() *zerolog.Event  { return z.logger.Info() }
func (z *zerologAdapter) Debug() *zerolog.Event { return z.logger.Debug() }
func (z *zerologAdapter) Warn() *zerolog.Event  { return z.logger.Warn() }
func (z *zerologAdapter) Error() *zerolog.Event { return z.logger.Error() }
