package trace

import (
	"fmt"
	"io"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/furry-state/state"
)

// WriteYAML encodes records as a YAML sequence.
func WriteYAML(w io.Writer, records []Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("trace: encode yaml: %w", err)
	}
	return enc.Close()
}

// LogObserver writes one line per cycle to logger.
func LogObserver(logger *log.Logger, reg *state.Registry) state.Observer {
	if logger == nil {
		logger = log.Default()
	}
	return state.ObserverFunc(func(c state.Cycle) {
		r := Records([]state.Cycle{c}, reg)[0]
		name := r.Machine
		if name == "" {
			name = r.MachineID
		}
		logger.Printf("[state] %s cycle=%d depth=%d types=%s keys=%s",
			name, r.Seq, r.Depth, joinOr(r.Types, "-"), keysCell(r))
	})
}
