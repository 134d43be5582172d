package routing

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"

	"github.com/davecgh/go-spew/spew"
	goerrors "github.com/go-errors/errors"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/trampoline/hophints"
	"github.com/lightningnetwork/trampoline/trampoline"
)

// RandSource is the source of randomness used to pick trampolines and to
// shuffle route hints. *rand.Rand satisfies it.
type RandSource interface {
	// Intn returns a number in [0, n).
	Intn(n int) int

	// Shuffle pseudo-randomizes the order of n elements.
	Shuffle(n int, swap func(i, j int))
}

// globalRand is a RandSource backed by the goroutine safe top level
// functions of math/rand.
type globalRand struct{}

func (globalRand) Intn(n int) int {
	return rand.Intn(n)
}

func (globalRand) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// Config holds the dependencies of a Builder.
type Config struct {
	// Registry holds the known trampolines. An empty registry is used
	// if nil.
	Registry *trampoline.Registry

	// Onion constructs the trampoline onion. Lightning-onion is used if
	// nil.
	Onion OnionConstructor

	// Rand picks trampolines and shuffles hints. The global math/rand
	// source is used if nil.
	Rand RandSource
}

// Builder builds trampoline routes and their onions. It only holds read-only
// state and may be shared if its RandSource is safe for concurrent use.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for the given config.
func NewBuilder(cfg *Config) *Builder {
	b := &Builder{cfg: *cfg}

	if b.cfg.Registry == nil {
		b.cfg.Registry = trampoline.NewRegistry(
			&trampoline.RegistryConfig{},
		)
	}
	if b.cfg.Onion == nil {
		b.cfg.Onion = &SphinxOnion{}
	}
	if b.cfg.Rand == nil {
		b.cfg.Rand = globalRand{}
	}

	return b
}

// FailedRoutes lists earlier failed attempts of a payment. Each entry holds
// the hex encoded end nodes of a route, as returned by FailedRouteEntry.
type FailedRoutes [][]string

// contains returns true if entry is one of the failed routes.
func (f FailedRoutes) contains(entry []string) bool {
	for _, r := range f {
		if len(r) != len(entry) {
			continue
		}

		match := true
		for i := range r {
			if r[i] != entry[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

// secondTrampolines returns the second trampolines of all failed routes that
// had one.
func (f FailedRoutes) secondTrampolines() ([]route.Vertex, error) {
	var nodes []route.Vertex
	for _, r := range f {
		if len(r) <= 2 {
			continue
		}

		node, err := route.NewVertexFromStr(r[1])
		if err != nil {
			return nil, fmt.Errorf("invalid failed route %v: %w",
				r, err)
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// RouteRequest holds everything needed to build a trampoline route.
type RouteRequest struct {
	// Amount is the amount the receiver gets.
	Amount lnwire.MilliSatoshi

	// MinFinalCLTVDelta is the receiver's final cltv delta.
	MinFinalCLTVDelta uint32

	// Receiver is the final node of the payment.
	Receiver route.Vertex

	// InvoiceFeatures are the features of the receiver's invoice.
	InvoiceFeatures *lnwire.FeatureVector

	// Sender is our own node.
	Sender route.Vertex

	// SenderTrampoline is the trampoline we have a channel with.
	SenderTrampoline route.Vertex

	// Hints are the route hints of the invoice.
	Hints []hophints.RouteHint

	// FeeLevel selects the share of the budget offered as fees, from 0
	// to MaxFeeLevel.
	FeeLevel uint32

	// UseTwoTrampolines adds a second trampoline to legacy payments.
	UseTwoTrampolines bool

	// FailedRoutes are the earlier failed attempts of this payment.
	FailedRoutes FailedRoutes

	// Budget bounds the fees and time lock of the route.
	Budget FeeBudget
}

// BuildRoute builds a trampoline route for the request. It returns
// ErrNoPathFound if all second trampolines failed before, and
// ErrFeeBudgetExceeded if the route can't be paid within the budget.
func (b *Builder) BuildRoute(req *RouteRequest) (*Route, error) {
	legacy, candidates := ClassifyPayment(req.InvoiceFeatures, req.Hints)

	log.Debugf("Building route to %v via %v: legacy=%v, candidates=%d, "+
		"fee_level=%d", req.Receiver, req.SenderTrampoline, legacy,
		len(candidates), req.FeeLevel)

	rt := &Route{
		Edges: []*Edge{
			newEdge(req.Sender, req.SenderTrampoline, false),
		},
	}

	switch {
	case legacy:
		if req.UseTwoTrampolines {
			all := fn.NewSet(b.cfg.Registry.NodeKeys()...)
			second, err := b.chooseSecondTrampoline(
				req.SenderTrampoline, all, req.FailedRoutes,
			)
			if err != nil {
				return nil, err
			}
			rt.extend(second)
		}

		relay, err := newLegacyRelay(req)
		if err != nil {
			return nil, err
		}
		rt.last().LegacyRelay = relay

	case len(candidates) > 0:
		// If our trampoline is one of the receiver's, it can pay the
		// receiver directly unless that already failed.
		direct := []string{
			req.SenderTrampoline.String(), req.Receiver.String(),
		}
		if !candidates.Contains(req.SenderTrampoline) ||
			req.FailedRoutes.contains(direct) {

			second, err := b.chooseSecondTrampoline(
				req.SenderTrampoline, candidates,
				req.FailedRoutes,
			)
			if err != nil {
				return nil, err
			}
			rt.extend(second)
		}
	}

	if rt.last().EndNode != req.Receiver {
		rt.extend(req.Receiver)
	}

	if err := AllocateFees(rt, req.Budget, req.FeeLevel); err != nil {
		return nil, err
	}

	err := checkBudget(rt, req.Budget, req.Amount, req.MinFinalCLTVDelta)
	if err != nil {
		return nil, err
	}

	if err := rt.Validate(req.Sender, req.Receiver); err != nil {
		return nil, err
	}

	log.Debugf("Built trampoline route: %v", rt)
	log.Tracef("Trampoline route edges: %v", newLogClosure(
		func() string {
			return spew.Sdump(rt.Edges)
		}),
	)

	return rt, nil
}

// chooseSecondTrampoline picks a random trampoline from the candidates,
// excluding the first trampoline and the second trampoline of every failed
// route.
func (b *Builder) chooseSecondTrampoline(first route.Vertex,
	candidates fn.Set[route.Vertex],
	failed FailedRoutes) (route.Vertex, error) {

	excluded, err := failed.secondTrampolines()
	if err != nil {
		return route.Vertex{}, err
	}
	excluded = append(excluded, first)

	remaining := candidates.Diff(fn.NewSet(excluded...)).ToSlice()
	if len(remaining) == 0 {
		return route.Vertex{}, fmt.Errorf("%w: all second trampolines "+
			"failed", ErrNoPathFound)
	}

	// Sets have no order, sort so the pick only depends on the random
	// source.
	sort.Slice(remaining, func(i, j int) bool {
		return bytes.Compare(remaining[i][:], remaining[j][:]) < 0
	})

	return remaining[b.cfg.Rand.Intn(len(remaining))], nil
}

// newLegacyRelay encodes the invoice's route hints for the trampoline that
// relays to a legacy receiver.
func newLegacyRelay(req *RouteRequest) (*LegacyRelay, error) {
	blobs, err := hophints.Encode(req.Hints)
	if err != nil {
		return nil, err
	}

	if err := checkRoutingInfo(req.Hints, blobs); err != nil {
		return nil, err
	}

	return &LegacyRelay{
		RoutingInfo:     blobs,
		InvoiceFeatures: truncateFeatures(req.InvoiceFeatures),
		OutgoingNodeID:  req.Receiver,
	}, nil
}

// checkRoutingInfo makes sure the encoded hints decode to the hints we
// started from.
func checkRoutingInfo(hints []hophints.RouteHint, blobs [][]byte) error {
	if len(hints) != len(blobs) {
		return goerrors.Errorf("encoded %d of %d route hints",
			len(blobs), len(hints))
	}

	for i, blob := range blobs {
		decoded, err := hophints.Decode(blob)
		if err != nil {
			return goerrors.Errorf("route hint %d doesn't decode: "+
				"%v", i, err)
		}

		if len(decoded) != 1 || !hintsEqual(decoded[0], hints[i]) {
			return goerrors.Errorf("route hint %d changed in "+
				"encoding: %v != %v", i, decoded, hints[i])
		}
	}

	return nil
}

func hintsEqual(a, b hophints.RouteHint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
