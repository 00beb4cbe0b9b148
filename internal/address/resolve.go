package address

// recipientSet is an insertion-ordered set of addresses.
type recipientSet struct {
	order []string
	seen  map[string]struct{}
}

func newRecipientSet() *recipientSet {
	return &recipientSet{seen: make(map[string]struct{})}
}

func (s *recipientSet) add(addr string) {
	if _, ok := s.seen[addr]; ok {
		return
	}
	s.seen[addr] = struct{}{}
	s.order = append(s.order, addr)
}

// Resolve maps raw "To" header values onto their redirect destinations.
//
// Values outside cfg's domain, or without a parsable address, are skipped.
// In-domain mailboxes resolve through the alias table and fall back to the
// default recipient. Each destination appears once, in order of first
// occurrence. The result is never empty: when nothing resolves, it holds
// only the default recipient.
func Resolve(rawRecipients []string, cfg *Config) []string {
	set := newRecipientSet()

	for _, raw := range rawRecipients {
		mb, ok := Extract(raw)
		if !ok || mb.Domain != cfg.domain {
			continue
		}

		dest, ok := cfg.Lookup(mb.Local)
		if !ok {
			dest = cfg.defaultRecipient
		}
		set.add(dest)
	}

	if len(set.order) == 0 {
		return []string{cfg.defaultRecipient}
	}
	return set.order
}
