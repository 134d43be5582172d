//go:build dev
// +build dev

package lncfg

import (
	"github.com/lightningnetwork/lnd/lnwire"
)

// DevTrampoline is a sub-config that houses trampoline options that also
// require a build-tag to activate.
type DevTrampoline struct {
	Nodes []string `long:"node" description:"A trampoline to use instead of the network's default trampolines, as name=pubkey@host:port. Can be specified multiple times."`
}

// NodeOverrides returns the trampolines that replace the network's default
// table.
func (d DevTrampoline) NodeOverrides(
	resolver TCPResolver) (map[string]*lnwire.NetAddress, error) {

	return ParseNodeOverrides(d.Nodes, resolver)
}
