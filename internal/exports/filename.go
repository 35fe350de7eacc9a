package exports

import (
	"strings"
	"time"
)

const (
	DefaultPrefix   = "ea-mobility-watch"
	DefaultAllScope = "all"
)

// Namer builds download filenames of the form
// <prefix>_<base>[_<scope>]_<YYYY-MM-DD>[.<ext>].
type Namer struct {
	Prefix string
	// AllScope is the scope value meaning "no filter"; it is left out of
	// the name. Compared case-insensitively.
	AllScope string
	Now      func() time.Time
}

func NewNamer() *Namer {
	return &Namer{Prefix: DefaultPrefix, AllScope: DefaultAllScope, Now: time.Now}
}

// Generate returns the filename for base and scope. The date is the UTC
// calendar day at the time of the call. Scope values are not validated.
func (n *Namer) Generate(base, scope, ext string) string {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	prefix := n.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	all := n.AllScope
	if all == "" {
		all = DefaultAllScope
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(base)
	if scope != "" && !strings.EqualFold(scope, all) {
		b.WriteByte('_')
		b.WriteString(scope)
	}
	b.WriteByte('_')
	b.WriteString(now().UTC().Format(time.DateOnly))
	if ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}
