//go:build !dev
// +build !dev

package lncfg

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

// TestRegistryConfigNoOverrides tests that regular builds always use the
// network's trampolines.
func TestRegistryConfigNoOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := DefaultTrampoline().RegistryConfig(
		&chaincfg.MainNetParams, testResolver,
	)
	require.NoError(t, err)
	require.Equal(t, &chaincfg.MainNetParams, cfg.ChainParams)
	require.Empty(t, cfg.Overrides)
}
