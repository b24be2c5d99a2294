// Package errlog reports operational faults that need human attention:
// failed order submissions, print queues backing up, terminal errors. It is
// deliberately tiny so every other package can depend on it.
package errlog

import (
	"encoding/json"
	"log"
)

// Logger records a fault with optional structured context.
type Logger interface {
	Report(message string, context map[string]interface{})
}

type stdLogger struct {
	prefix string
}

func New(prefix string) Logger {
	return &stdLogger{prefix: prefix}
}

func (l *stdLogger) Report(message string, context map[string]interface{}) {
	if len(context) == 0 {
		log.Printf("ERROR [%s] %s", l.prefix, message)
		return
	}

	data, err := json.Marshal(context)
	if err != nil {
		log.Printf("ERROR [%s] %s (context unmarshalable: %v)", l.prefix, message, err)
		return
	}
	log.Printf("ERROR [%s] %s %s", l.prefix, message, data)
}

// Discard drops every report. Useful in tests.
type Discard struct{}

func (Discard) Report(string, map[string]interface{}) {}
