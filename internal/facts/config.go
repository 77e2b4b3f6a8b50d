package facts

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/good-yellow-bee/snapdiag/internal/snapshot"
)

// ConfigFiles reads ini-style config files from the snapshot on demand,
// caching each parsed file for the rest of the run. Options outside any
// section live in the implicit "DEFAULT" section.
type ConfigFiles struct {
	root  *snapshot.Root
	files map[string]map[string]map[string]string
}

// NewConfigFiles creates a reader bound to root.
func NewConfigFiles(root *snapshot.Root) *ConfigFiles {
	return &ConfigFiles{
		root:  root,
		files: make(map[string]map[string]map[string]string),
	}
}

// Get returns the value of key in section of the snapshot-relative
// config file rel. A missing file behaves as an empty config.
func (c *ConfigFiles) Get(rel, section, key string) (string, bool) {
	sections, ok := c.files[rel]
	if !ok {
		sections = c.parse(rel)
		c.files[rel] = sections
	}
	v, ok := sections[section][key]
	return v, ok
}

func (c *ConfigFiles) parse(rel string) map[string]map[string]string {
	sections := make(map[string]map[string]string)
	data, err := c.root.Command(rel)
	if err != nil {
		return sections
	}

	section := "DEFAULT"
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		if line[0] == '[' && line[len(line)-1] == ']' {
			section = line[1 : len(line)-1]
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if sections[section] == nil {
			sections[section] = make(map[string]string)
		}
		sections[section][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return sections
}
