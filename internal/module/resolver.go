package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the file extension of script sources.
const Ext = ".rpl"

// Resolver maps dotted module names onto files under a list of source roots.
type Resolver struct {
	Roots []string
}

func NewResolver(roots []string) *Resolver {
	return &Resolver{Roots: append([]string(nil), roots...)}
}

// Resolve returns the file for module in the first root that has it, and the
// candidate paths it tried.
func (r *Resolver) Resolve(module string) (string, []string, error) {
	if err := ValidateName(module); err != nil {
		return "", nil, err
	}
	rel := filepath.Join(strings.Split(module, ".")...) + Ext

	var searched []string
	for _, root := range r.Roots {
		p := filepath.Join(root, rel)
		searched = append(searched, p)
		ok, err := exists(p)
		if err != nil {
			return "", searched, err
		}
		if ok {
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
			return p, searched, nil
		}
	}
	return "", searched, fmt.Errorf("module %q not found", module)
}

// ValidateName checks that every dot-separated segment is an identifier.
func ValidateName(module string) error {
	if module == "" {
		return fmt.Errorf("empty module name")
	}
	for _, seg := range strings.Split(module, ".") {
		if !isIdent(seg) {
			return fmt.Errorf("invalid module name %q", module)
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func exists(p string) (bool, error) {
	st, err := os.Stat(p)
	if err == nil {
		return !st.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
