// Package activitylog builds the append-only activity/error loggers:
// literal lines of the form
// "Activity - <msg> - <yyyy-MM-dd HH:mm:ss.SSS>" or "Error - <msg> - <ts>".
// Internal call sites use ordinary structured logrus calls; this package
// only supplies the formatter and file sink that render them this way.
package activitylog

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// legacyFormatter renders every entry in the fixed two-field legacy shape,
// regardless of whatever structured fields the call site attached.
type legacyFormatter struct{}

func (legacyFormatter) Format(e *logrus.Entry) ([]byte, error) {
	kind := "Activity"
	if e.Level <= logrus.ErrorLevel {
		kind = "Error"
	}
	ts := e.Time.Format("2006-01-02 15:04:05.000")
	return []byte(fmt.Sprintf("%s - %s - %s\n", kind, e.Message, ts)), nil
}

// New builds a logger that appends to path using the legacy line format.
// Opening path is best-effort: if it fails, the logger falls back to
// standard error only rather than aborting startup.
func New(path string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(legacyFormatter{})
	l.SetLevel(logrus.DebugLevel)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "activitylog: cannot open %s, logging to stderr only: %v\n", path, err)
		l.SetOutput(os.Stderr)
		return l
	}
	l.SetOutput(io.MultiWriter(f, os.Stderr))
	return l
}
