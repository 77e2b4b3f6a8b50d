package facts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/good-yellow-bee/snapdiag/internal/snapshot"
)

func snapshotRoot(t *testing.T, files map[string]string) *snapshot.Root {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	root, err := snapshot.NewRoot(dir)
	if err != nil {
		t.Fatalf("NewRoot() error = %v", err)
	}
	return root
}

const dpkgOutput = `Desired=Unknown/Install/Remove/Purge/Hold
||/ Name             Version                  Architecture Description
+++-================-========================-============-==========
ii  neutron-common   2:16.4.0-0ubuntu2        all          Neutron is
ii  libc6:amd64      2.31-0ubuntu9            amd64        GNU C Library
rc  old-package      1.0                      all          removed
`

func TestLoadPackages(t *testing.T) {
	root := snapshotRoot(t, map[string]string{
		"sos_commands/dpkg/dpkg_-l": dpkgOutput,
	})
	pkgs, err := LoadPackages(root)
	if err != nil {
		t.Fatalf("LoadPackages() error = %v", err)
	}

	if !pkgs.Installed("neutron-common") {
		t.Errorf("neutron-common not installed")
	}
	if v, _ := pkgs.Version("neutron-common"); v != "2:16.4.0-0ubuntu2" {
		t.Errorf("Version() = %q", v)
	}
	// Arch suffix stripped.
	if !pkgs.Installed("libc6") {
		t.Errorf("libc6 not installed")
	}
	// "rc" state is not installed.
	if pkgs.Installed("old-package") {
		t.Errorf("old-package reported installed")
	}

	tests := []struct {
		fact string
		want any
		ok   bool
	}{
		{"neutron-common.installed", true, true},
		{"missing-pkg.installed", false, true},
		{"neutron-common.version", "2:16.4.0-0ubuntu2", true},
		{"missing-pkg.version", nil, false},
		{"neutron-common.unknown", nil, false},
	}
	for _, tt := range tests {
		got, ok := pkgs.Fact(tt.fact)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("Fact(%q) = %v, %v, want %v, %v", tt.fact, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoadPackagesMissingCapture(t *testing.T) {
	root := snapshotRoot(t, nil)
	pkgs, err := LoadPackages(root)
	if err != nil {
		t.Fatalf("LoadPackages() error = %v", err)
	}
	if pkgs.Installed("anything") {
		t.Errorf("empty inventory reported a package installed")
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2:16.4.0-0ubuntu2", "2:16.4.1", -1},
		{"2:16.4.1", "2:16.4.0-0ubuntu2", 1},
		{"1.0-1", "1.0-1", 0},
		{"1:1.0", "2.0", 1},
	}
	for _, tt := range tests {
		got, err := CompareVersions(tt.a, tt.b)
		if err != nil {
			t.Fatalf("CompareVersions(%q, %q) error = %v", tt.a, tt.b, err)
		}
		switch {
		case tt.want < 0 && got >= 0,
			tt.want == 0 && got != 0,
			tt.want > 0 && got <= 0:
			t.Errorf("CompareVersions(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}

	if _, err := CompareVersions("", "1.0"); err == nil {
		t.Errorf("CompareVersions with empty version: error = nil")
	}
}

func TestLoadServices(t *testing.T) {
	root := snapshotRoot(t, map[string]string{
		"sos_commands/systemd/systemctl_list-unit-files": `UNIT FILE            STATE
neutron-l3-agent.service   enabled
nova-compute.service       masked
ssh.socket                 enabled
`,
	})
	svcs, err := LoadServices(root)
	if err != nil {
		t.Fatalf("LoadServices() error = %v", err)
	}

	if st, _ := svcs.State("neutron-l3-agent"); st != "enabled" {
		t.Errorf("State(neutron-l3-agent) = %q", st)
	}
	if st, _ := svcs.State("nova-compute"); st != "masked" {
		t.Errorf("State(nova-compute) = %q", st)
	}
	// Only .service units are inventoried.
	if _, ok := svcs.State("ssh"); ok {
		t.Errorf("socket unit was inventoried")
	}

	if got, ok := svcs.Fact("neutron-l3-agent.exists"); !ok || got != true {
		t.Errorf("Fact(exists) = %v, %v", got, ok)
	}
	if got, ok := svcs.Fact("missing.exists"); !ok || got != false {
		t.Errorf("Fact(missing.exists) = %v, %v", got, ok)
	}
	if got, ok := svcs.Fact("nova-compute.state"); !ok || got != "masked" {
		t.Errorf("Fact(state) = %v, %v", got, ok)
	}
}

func TestConfigFiles(t *testing.T) {
	root := snapshotRoot(t, map[string]string{
		"etc/neutron/neutron.conf": `# comment
debug = True
[agent]
availability_zone = az1
; another comment
root_helper= sudo
`,
	})
	cfg := NewConfigFiles(root)

	tests := []struct {
		name          string
		file, section string
		key           string
		want          string
		ok            bool
	}{
		{"implicit default section", "etc/neutron/neutron.conf", "DEFAULT", "debug", "True", true},
		{"named section", "etc/neutron/neutron.conf", "agent", "availability_zone", "az1", true},
		{"whitespace trimmed", "etc/neutron/neutron.conf", "agent", "root_helper", "sudo", true},
		{"missing key", "etc/neutron/neutron.conf", "DEFAULT", "nope", "", false},
		{"missing section", "etc/neutron/neutron.conf", "nope", "debug", "", false},
		{"missing file", "etc/missing.conf", "DEFAULT", "debug", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cfg.Get(tt.file, tt.section, tt.key)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Get() = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFilesProvider(t *testing.T) {
	root := snapshotRoot(t, map[string]string{
		"etc/neutron/neutron.conf": "debug = True\n",
	})
	files := NewFiles(root)

	if got, ok := files.Fact("exists:etc/neutron/neutron.conf"); !ok || got != true {
		t.Errorf("Fact(exists:present) = %v, %v", got, ok)
	}
	if got, ok := files.Fact("exists:etc/missing"); !ok || got != false {
		t.Errorf("Fact(exists:missing) = %v, %v", got, ok)
	}
	if _, ok := files.Fact("etc/neutron/neutron.conf"); ok {
		t.Errorf("Fact without exists: prefix resolved")
	}
}

func TestRegistry(t *testing.T) {
	root := snapshotRoot(t, map[string]string{
		"sos_commands/dpkg/dpkg_-l": dpkgOutput,
	})
	pkgs, err := LoadPackages(root)
	if err != nil {
		t.Fatalf("LoadPackages() error = %v", err)
	}

	reg := NewRegistry()
	reg.Register("packages", pkgs)

	if got, ok := reg.Fact("packages.neutron-common.installed"); !ok || got != true {
		t.Errorf("Fact() = %v, %v", got, ok)
	}
	if _, ok := reg.Fact("unknown.prefix"); ok {
		t.Errorf("unknown prefix resolved")
	}
	if _, ok := reg.Fact("nodots"); ok {
		t.Errorf("undotted name resolved")
	}
}
