package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

var (
	// ErrInvalidServer means the supplied DNS server string is not an IP
	// address. Reported before any lookup is attempted.
	ErrInvalidServer = errors.New("invalid DNS server address")

	// ErrNoAddress means the lookup succeeded but returned no addresses.
	ErrNoAddress = errors.New("no address found for hostname")
)

// ipLookuper is the slice of net.Resolver the system path needs. Kept as an
// interface so tests can substitute a fake.
type ipLookuper interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// exchanger sends a DNS query to a specific server. Satisfied by dns.Client.
type exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error)
}

// Resolver translates a hostname into an IP address, using either the
// system resolver configuration or an explicitly supplied DNS server.
type Resolver struct {
	system ipLookuper
	client exchanger
}

// NewResolver creates a resolver backed by the system configuration and a
// plain UDP DNS client for explicit-server lookups.
func NewResolver() *Resolver {
	return &Resolver{
		system: net.DefaultResolver,
		client: new(dns.Client),
	}
}

// Resolve returns the first address found for hostname. When dnsServer is
// empty the system resolver is used; otherwise dnsServer must parse as an
// IP address and is queried directly on port 53, A records before AAAA.
// Answer order follows the underlying resolver, so stability across calls
// is not guaranteed.
func (r *Resolver) Resolve(ctx context.Context, hostname, dnsServer string) (string, error) {
	if dnsServer == "" {
		return r.resolveSystem(ctx, hostname)
	}

	if net.ParseIP(dnsServer) == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidServer, dnsServer)
	}
	return r.resolveAgainst(ctx, hostname, dnsServer)
}

func (r *Resolver) resolveSystem(ctx context.Context, hostname string) (string, error) {
	addrs, err := r.system.LookupIPAddr(ctx, hostname)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", hostname, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoAddress, hostname)
	}
	return addrs[0].IP.String(), nil
}

func (r *Resolver) resolveAgainst(ctx context.Context, hostname, server string) (string, error) {
	addr := net.JoinHostPort(server, "53")

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(hostname), qtype)

		resp, _, err := r.client.ExchangeContext(ctx, msg, addr)
		if err != nil {
			return "", fmt.Errorf("failed to query DNS server %s: %w", server, err)
		}

		for _, rr := range resp.Answer {
			switch record := rr.(type) {
			case *dns.A:
				return record.A.String(), nil
			case *dns.AAAA:
				return record.AAAA.String(), nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoAddress, hostname)
}
