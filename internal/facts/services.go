package facts

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/good-yellow-bee/snapdiag/internal/snapshot"
)

// Capture locations tried for the systemd unit inventory.
var systemdCaptures = []string{
	"sos_commands/systemd/systemctl_list-unit-files",
	"sos_commands/systemd/systemctl_list-units",
}

// Services answers systemd unit facts from the snapshot:
// "services.<name>.exists" and "services.<name>.state".
type Services struct {
	states map[string]string
}

// LoadServices parses the first available systemd capture under root. A
// snapshot without one yields an empty inventory.
func LoadServices(root *snapshot.Root) (*Services, error) {
	s := &Services{states: make(map[string]string)}
	for _, rel := range systemdCaptures {
		data, err := root.Command(rel)
		if err != nil {
			continue
		}
		if err := s.parse(data); err != nil {
			return nil, err
		}
		break
	}
	return s, nil
}

func (s *Services) parse(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || !strings.HasSuffix(fields[0], ".service") {
			continue
		}
		name := strings.TrimSuffix(fields[0], ".service")
		s.states[name] = fields[1]
	}
	return scanner.Err()
}

// State returns the recorded state of a unit, e.g. "enabled" or
// "masked".
func (s *Services) State(name string) (string, bool) {
	st, ok := s.states[name]
	return st, ok
}

// Fact implements Provider for names of the form "<service>.exists" and
// "<service>.state".
func (s *Services) Fact(name string) (any, bool) {
	svc, attr, ok := strings.Cut(name, ".")
	if !ok {
		return nil, false
	}
	switch attr {
	case "exists":
		_, ok := s.states[svc]
		return ok, true
	case "state":
		st, ok := s.states[svc]
		if !ok {
			return nil, false
		}
		return st, true
	}
	return nil, false
}
