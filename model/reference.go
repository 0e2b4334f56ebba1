package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RefKind tags the variant held by a Reference.
type RefKind int

const (
	RefNone RefKind = iota
	RefParent
	RefTeeMain
	RefTeeBranch
)

// Reference is the parsed form of an upstream connection:
// "<id>" for a single-exit fitting, "<id>-main" / "<id>-branch" for a tee outlet.
type Reference struct {
	Kind RefKind
	ID   int
}

// IsTee reports whether the reference names a tee outlet.
func (r Reference) IsTee() bool {
	return r.Kind == RefTeeMain || r.Kind == RefTeeBranch
}

// Outlet returns the tee outlet named by a tee reference.
func (r Reference) Outlet() Outlet {
	if r.Kind == RefTeeBranch {
		return OutletBranch
	}
	return OutletMain
}

func (r Reference) String() string {
	switch r.Kind {
	case RefParent:
		return strconv.Itoa(r.ID)
	case RefTeeMain:
		return strconv.Itoa(r.ID) + "-main"
	case RefTeeBranch:
		return strconv.Itoa(r.ID) + "-branch"
	}
	return ""
}

// ParseReference classifies raw upstream text. Blank text is RefNone.
func ParseReference(s string) (Reference, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Reference{Kind: RefNone, ID: NoFitting}, nil
	}

	kind := RefParent
	head := s
	if i := strings.IndexByte(s, '-'); i > 0 {
		switch strings.TrimSpace(s[i+1:]) {
		case "main":
			kind = RefTeeMain
		case "branch":
			kind = RefTeeBranch
		default:
			return Reference{}, fmt.Errorf("upstream %q: %w", s, ErrMalformedReference)
		}
		head = strings.TrimSpace(s[:i])
	}

	id, err := parseID(head)
	if err != nil {
		return Reference{}, fmt.Errorf("upstream %q: %w", s, ErrMalformedReference)
	}
	return Reference{Kind: kind, ID: id}, nil
}

// parseID accepts "7" as well as "7.0", which some input files carry.
func parseID(s string) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != float64(int(v)) {
		return 0, fmt.Errorf("not an id: %q", s)
	}
	return int(v), nil
}

// ParseID parses a fitting id field.
func ParseID(s string) (int, error) {
	id, err := parseID(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrInvalidNetwork)
	}
	return id, nil
}
