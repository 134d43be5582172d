//go:build !dev
// +build !dev

package lncfg

import (
	"github.com/lightningnetwork/lnd/lnwire"
)

// DevTrampoline is a sub-config that houses trampoline options that also
// require a build-tag to activate.
type DevTrampoline struct {
}

// NodeOverrides returns the trampolines that replace the network's default
// table. Overrides are only available in dev builds.
func (d DevTrampoline) NodeOverrides(
	_ TCPResolver) (map[string]*lnwire.NetAddress, error) {

	return nil, nil
}
