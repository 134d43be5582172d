package lncfg

import (
	"fmt"
	"net"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/jessevdk/go-flags"
	lndcfg "github.com/lightningnetwork/lnd/lncfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/trampoline/routing"
	"github.com/lightningnetwork/trampoline/trampoline"
)

const (
	// DefaultFeeMaxMillionths is the default proportional fee budget of a
	// payment.
	DefaultFeeMaxMillionths = 10_000

	// DefaultFeeCutoffMsat is the default flat fee budget of a payment,
	// which small payments may always spend.
	DefaultFeeCutoffMsat = 10_000
)

// TCPResolver resolves the address of a trampoline.
type TCPResolver = lndcfg.TCPResolver

// Trampoline holds the configuration of trampoline payments.
type Trampoline struct {
	// UseTwoTrampolines routes legacy payments through a second
	// trampoline.
	UseTwoTrampolines bool `long:"usetwotrampolines" description:"Route payments to receivers without trampoline support through a second trampoline."`

	// FeeMaxMillionths is the proportional part of the fee budget.
	FeeMaxMillionths uint64 `long:"feemaxmillionths" description:"The maximum fee of a payment in millionths of its amount."`

	// FeeCutoffMsat is the flat part of the fee budget.
	FeeCutoffMsat uint64 `long:"feecutoffmsat" description:"The fee in msat a payment may always spend, regardless of its amount."`

	// DevTrampoline holds options only available in dev builds.
	DevTrampoline
}

// DefaultTrampoline returns the default trampoline configuration.
func DefaultTrampoline() *Trampoline {
	return &Trampoline{
		FeeMaxMillionths: DefaultFeeMaxMillionths,
		FeeCutoffMsat:    DefaultFeeCutoffMsat,
	}
}

// Validate checks that the fee budget is within bounds.
func (t *Trampoline) Validate() error {
	if t.FeeMaxMillionths > routing.MaxFeeMillionths {
		return fmt.Errorf("feemaxmillionths must be at most %d, got %d",
			routing.MaxFeeMillionths, t.FeeMaxMillionths)
	}

	if t.FeeCutoffMsat > uint64(routing.MaxFeeCutoffMsat) {
		return fmt.Errorf("feecutoffmsat must be at most %d, got %d",
			uint64(routing.MaxFeeCutoffMsat), t.FeeCutoffMsat)
	}

	return nil
}

// Budget returns the fee budget for paying amt.
func (t *Trampoline) Budget(amt lnwire.MilliSatoshi) routing.FeeBudget {
	return routing.NewFeeBudget(
		amt, t.FeeMaxMillionths,
		lnwire.MilliSatoshi(t.FeeCutoffMsat),
	)
}

// RegistryConfig returns the registry config for the given network,
// including any node overrides.
func (t *Trampoline) RegistryConfig(params *chaincfg.Params,
	resolver TCPResolver) (*trampoline.RegistryConfig, error) {

	overrides, err := t.NodeOverrides(resolver)
	if err != nil {
		return nil, err
	}

	return &trampoline.RegistryConfig{
		ChainParams: params,
		Overrides:   overrides,
	}, nil
}

// fileConfig is the layout of a trampoline config file.
type fileConfig struct {
	Trampoline *Trampoline `group:"Trampoline" namespace:"trampoline"`
}

// LoadTrampolineConfig reads the trampoline section of the config file at
// path on top of the defaults and validates the result.
func LoadTrampolineConfig(path string) (*Trampoline, error) {
	cfg := fileConfig{
		Trampoline: DefaultTrampoline(),
	}

	parser := flags.NewParser(&cfg, flags.IgnoreUnknown)
	err := flags.NewIniParser(parser).ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file %v: %w",
			path, err)
	}

	if err := cfg.Trampoline.Validate(); err != nil {
		return nil, err
	}

	return cfg.Trampoline, nil
}

// ParseNodeOverrides parses trampolines given as name=pubkey@host[:port].
// The port defaults to the standard lightning port.
func ParseNodeOverrides(nodes []string,
	resolver TCPResolver) (map[string]*lnwire.NetAddress, error) {

	if resolver == nil {
		resolver = net.ResolveTCPAddr
	}

	defaultPort := fmt.Sprintf("%d", trampoline.DefaultPort)

	overrides := make(map[string]*lnwire.NetAddress, len(nodes))
	for _, node := range nodes {
		name, addr, ok := strings.Cut(node, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid trampoline %q, "+
				"expected name=pubkey@host:port", node)
		}

		if _, ok := overrides[name]; ok {
			return nil, fmt.Errorf("duplicate trampoline %q", name)
		}

		netAddr, err := lndcfg.ParseLNAddressString(
			strings.TrimSpace(addr), defaultPort, resolver,
		)
		if err != nil {
			return nil, fmt.Errorf("invalid trampoline %q: %w",
				name, err)
		}

		overrides[name] = netAddr
	}

	return overrides, nil
}
