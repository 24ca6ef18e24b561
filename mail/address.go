package mail

import (
	"errors"
	"net"
	netmail "net/mail"
	"strings"
)

var (
	errBareAddress   = errors.New("recipient must be a bare address")
	errDottedDomain  = errors.New("domain must contain a dot")
	errDomainLiteral = errors.New("IP address domains are not accepted")
)

// CheckAddress reports whether s is an address the Sender can deliver to:
// a bare addr-spec without display name or quoting, whose domain is a dotted
// host name rather than an IP address.
func CheckAddress(s string) error {
	addr, err := netmail.ParseAddress(s)
	if err != nil {
		return err
	}
	if addr.Name != "" || addr.Address != s {
		return errBareAddress
	}

	at := strings.LastIndexByte(s, '@')
	local, domain := s[:at], s[at+1:]
	if strings.ContainsAny(local, "\" ") {
		return errBareAddress
	}
	if strings.HasPrefix(domain, "[") || net.ParseIP(domain) != nil {
		return errDomainLiteral
	}
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") || strings.HasPrefix(domain, ".") {
		return errDottedDomain
	}
	return nil
}
