package facts

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"pault.ag/go/debian/version"

	"github.com/good-yellow-bee/snapdiag/internal/snapshot"
)

// dpkgCapture is the conventional location of the package inventory in a
// collected snapshot.
const dpkgCapture = "sos_commands/dpkg/dpkg_-l"

// Packages answers package inventory facts from the snapshot's dpkg
// capture: "packages.<name>.installed" and "packages.<name>.version".
type Packages struct {
	versions map[string]string
}

// LoadPackages parses the dpkg capture under root. A snapshot without
// the capture yields an empty inventory, not an error.
func LoadPackages(root *snapshot.Root) (*Packages, error) {
	p := &Packages{versions: make(map[string]string)}
	data, err := root.Command(dpkgCapture)
	if err != nil {
		return p, nil
	}
	if err := p.parse(data); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Packages) parse(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// "ii  name  version  arch  description..."
		if len(fields) < 3 || fields[0] != "ii" {
			continue
		}
		name := fields[1]
		// Multi-arch entries are listed as "name:arch".
		if i := strings.IndexByte(name, ':'); i > 0 {
			name = name[:i]
		}
		p.versions[name] = fields[2]
	}
	return scanner.Err()
}

// Installed reports whether name is installed.
func (p *Packages) Installed(name string) bool {
	_, ok := p.versions[name]
	return ok
}

// Version returns the installed version of name.
func (p *Packages) Version(name string) (string, bool) {
	v, ok := p.versions[name]
	return v, ok
}

// Fact implements Provider for names of the form "<package>.installed"
// and "<package>.version".
func (p *Packages) Fact(name string) (any, bool) {
	pkg, attr, ok := strings.Cut(name, ".")
	if !ok {
		return nil, false
	}
	switch attr {
	case "installed":
		return p.Installed(pkg), true
	case "version":
		v, ok := p.Version(pkg)
		if !ok {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// CompareVersions compares two dpkg version strings with full
// epoch:upstream-revision semantics, returning <0, 0 or >0.
func CompareVersions(a, b string) (int, error) {
	va, err := version.Parse(a)
	if err != nil {
		return 0, fmt.Errorf("parse version %q: %w", a, err)
	}
	vb, err := version.Parse(b)
	if err != nil {
		return 0, fmt.Errorf("parse version %q: %w", b, err)
	}
	return version.Compare(va, vb), nil
}
