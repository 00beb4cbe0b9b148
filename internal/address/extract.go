package address

import (
	"strings"
	"unicode"
)

// Mailbox is an address split into its local part and domain.
type Mailbox struct {
	Local  string
	Domain string
}

func (m Mailbox) String() string {
	return m.Local + "@" + m.Domain
}

type scanState int

const (
	stateDisplayName scanState = iota
	stateBracketedAddress
	stateBareAddress
)

// Extract pulls the mailbox out of a raw "To" header value. It accepts bare
// addresses as well as the "Display Name" <address> form, whatever the name
// looks like. It reports false when the value holds no usable address.
func Extract(raw string) (Mailbox, bool) {
	addr, state := selectAddress(raw)
	if state == stateBareAddress {
		addr = strings.TrimSpace(addr)
	}

	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return Mailbox{}, false
	}

	// Text between the brackets is taken as written; only the domain loses
	// its trailing non-word characters.
	local := addr[:at]
	domain := strings.TrimRightFunc(addr[at+1:], isNonWord)
	if local == "" || domain == "" {
		return Mailbox{}, false
	}

	return Mailbox{Local: local, Domain: domain}, true
}

// selectAddress returns the text inside the last angle bracket that holds an
// '@', or the whole value when there is none. The returned state tells which
// of the two was picked. The selection is not trimmed.
func selectAddress(raw string) (string, scanState) {
	state := stateDisplayName
	start := 0
	bracketed := ""
	found := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch state {
		case stateDisplayName:
			if c == '<' && strings.IndexByte(raw[i+1:], '@') >= 0 {
				state = stateBracketedAddress
				start = i + 1
			}
		case stateBracketedAddress:
			switch c {
			case '<':
				if strings.IndexByte(raw[i+1:], '@') >= 0 {
					start = i + 1
				}
			case '>':
				bracketed = raw[start:i]
				found = true
				state = stateDisplayName
			}
		}
	}

	switch {
	case state == stateBracketedAddress:
		// Unterminated bracket: take the rest of the value.
		return raw[start:], stateBracketedAddress
	case found:
		return bracketed, stateBracketedAddress
	default:
		return raw, stateBareAddress
	}
}

func isNonWord(r rune) bool {
	return r != '_' && (r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)))
}
