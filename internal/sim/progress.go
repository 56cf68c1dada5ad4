package sim

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// ProgressLogger is an observer that logs time and total number every
// `every` steps at debug level.
type ProgressLogger struct {
	log   logrus.FieldLogger
	every int
	steps int
}

func NewProgressLogger(log logrus.FieldLogger, every int) *ProgressLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if every < 1 {
		every = 1
	}
	return &ProgressLogger{log: log, every: every}
}

func (p *ProgressLogger) OnStep(x dynamo.State, t float64) {
	p.steps++
	if p.steps%p.every != 0 {
		return
	}
	p.log.WithFields(logrus.Fields{
		"step":   p.steps,
		"t":      t,
		"number": floats.Sum(x),
	}).Debug("run progress")
}

// Steps returns how many steps have been observed.
func (p *ProgressLogger) Steps() int { return p.steps }
