package models

import "strings"

// Triple is an arch-vendor-os[-env] target descriptor. Unset
// components read "unknown".
type Triple struct {
	Arch   string
	Vendor string
	OS     string
	Env    string
}

var archAliases = map[string]string{
	"i386":      "x86",
	"i486":      "x86",
	"i586":      "x86",
	"i686":      "x86",
	"amd64":     "x86_64",
	"aarch64":   "arm64",
	"armv7":     "arm",
	"powerpc":   "ppc",
	"powerpc64": "ppc64",
	"mipsel":    "mips",
	"sparcv9":   "sparc",
}

// NormalizeArch folds common architecture spellings into the names
// the arch registry uses.
func NormalizeArch(name string) string {
	name = strings.ToLower(name)
	if canon, ok := archAliases[name]; ok {
		return canon
	}
	return name
}

// ParseTriple normalizes a triple string. Missing components come
// back as "unknown", so ParseTriple("") yields the all-unknown triple.
func ParseTriple(s string) Triple {
	t := Triple{Arch: "unknown", Vendor: "unknown", OS: "unknown"}
	parts := strings.Split(strings.ToLower(s), "-")
	if s == "" {
		return t
	}
	if len(parts) > 0 && parts[0] != "" {
		t.Arch = NormalizeArch(parts[0])
	}
	if len(parts) > 1 && parts[1] != "" {
		t.Vendor = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		t.OS = parts[2]
	}
	if len(parts) > 3 {
		t.Env = strings.Join(parts[3:], "-")
	}
	return t
}

// SetArch replaces only the architecture component.
func (t *Triple) SetArch(name string) {
	if name == "" {
		name = "unknown"
	}
	t.Arch = NormalizeArch(name)
}

func (t Triple) String() string {
	s := t.Arch + "-" + t.Vendor + "-" + t.OS
	if t.Env != "" {
		s += "-" + t.Env
	}
	return s
}
