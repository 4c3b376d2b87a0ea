package metrics

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newNoopLogger returns a logrus.FieldLogger that discards everything. It is the
// default used by NewRegistry and NewHTTPHandler when no logger is supplied via
// WithLogger or WithHandlerLogger respectively.
func newNoopLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
