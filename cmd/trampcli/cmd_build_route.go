package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/lightningnetwork/trampoline/routing"
	"github.com/lightningnetwork/trampoline/trampoline"
	"github.com/urfave/cli"
)

var buildRouteCommand = cli.Command{
	Name:  "buildroute",
	Usage: "Build a trampoline route and onion for an invoice.",
	Description: `
	Builds the trampoline route and onion of a single payment attempt.
	Routes of earlier failed attempts, as printed in failed_route_entry,
	can be passed with --failed to build the next attempt.`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "invoice",
			Usage: "the bolt11 invoice to pay",
		},
		cli.StringFlag{
			Name:  "sender",
			Usage: "our own node's public key",
		},
		cli.StringFlag{
			Name: "trampoline",
			Usage: "the name or public key of the trampoline we " +
				"have a channel with",
		},
		cli.Uint64Flag{
			Name: "amt",
			Usage: "the amount to pay in msat, required if the " +
				"invoice has none",
		},
		cli.UintFlag{
			Name:  "feelevel",
			Value: routing.MaxFeeLevel,
			Usage: "the share of the fee budget to offer, from 0 " +
				"to 6",
		},
		cli.BoolFlag{
			Name: "twotrampolines",
			Usage: "route payments to receivers without " +
				"trampoline support through a second " +
				"trampoline",
		},
		cli.StringSliceFlag{
			Name: "failed",
			Usage: "the comma separated node keys of a failed " +
				"route, can be specified multiple times",
		},
		cli.UintFlag{
			Name:  "height",
			Usage: "the current block height",
		},
	},
	Action: buildRoute,
}

type edgeJSON struct {
	StartNode   string `json:"start_node"`
	EndNode     string `json:"end_node"`
	FeeBaseMsat uint64 `json:"fee_base_msat"`
	FeeRate     uint32 `json:"fee_proportional_millionths"`
	CLTVDelta   uint16 `json:"cltv_delta"`
	LegacyRelay bool   `json:"legacy_relay"`
}

type attemptJSON struct {
	Route            []edgeJSON `json:"route"`
	FailedRouteEntry []string   `json:"failed_route_entry"`
	AmountMsat       uint64     `json:"amt_msat"`
	CLTVDelta        uint32     `json:"cltv_delta"`
	Onion            string     `json:"onion"`
}

func buildRoute(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	params, err := getNetParams(ctx)
	if err != nil {
		return err
	}

	registry, err := getRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	if !ctx.IsSet("invoice") {
		return errors.New("invoice required")
	}
	invoice, err := zpay32.Decode(ctx.String("invoice"), params)
	if err != nil {
		return fmt.Errorf("invoice: %w", err)
	}

	payment, err := routing.NewPaymentFromInvoice(
		invoice, lnwire.MilliSatoshi(ctx.Uint64("amt")),
	)
	if err != nil {
		return err
	}

	payment.Sender, err = route.NewVertexFromStr(ctx.String("sender"))
	if err != nil {
		return fmt.Errorf("sender: %w", err)
	}

	payment.SenderTrampoline, err = lookupTrampoline(
		registry, ctx.String("trampoline"),
	)
	if err != nil {
		return err
	}

	payment.FailedRoutes, err = parseFailedRoutes(
		ctx.StringSlice("failed"),
	)
	if err != nil {
		return err
	}

	payment.LocalHeight = uint32(ctx.Uint("height"))
	payment.FeeLevel = uint32(ctx.Uint("feelevel"))
	payment.UseTwoTrampolines = cfg.UseTwoTrampolines ||
		ctx.Bool("twotrampolines")
	payment.Budget = cfg.Budget(payment.Amount)

	builder := routing.NewBuilder(&routing.Config{
		Registry: registry,
	})
	attempt, err := builder.RouteAndBuild(payment)
	if err != nil {
		return err
	}

	var onion bytes.Buffer
	if err := attempt.Onion.Packet.Encode(&onion); err != nil {
		return err
	}

	resp := attemptJSON{
		FailedRouteEntry: attempt.Route.FailedRouteEntry(),
		AmountMsat:       uint64(attempt.Amount),
		CLTVDelta:        attempt.CLTVDelta,
		Onion:            hex.EncodeToString(onion.Bytes()),
	}
	for _, edge := range attempt.Route.Edges {
		fee := edge.Fee.UnwrapOr(routing.FeePolicy{})

		resp.Route = append(resp.Route, edgeJSON{
			StartNode:   edge.StartNode.String(),
			EndNode:     edge.EndNode.String(),
			FeeBaseMsat: uint64(fee.BaseMsat),
			FeeRate:     fee.ProportionalMillionths,
			CLTVDelta:   edge.CLTVDelta,
			LegacyRelay: edge.LegacyRelay != nil,
		})
	}

	printJSON(resp)

	return nil
}

// lookupTrampoline resolves a trampoline given by name or public key.
func lookupTrampoline(registry *trampoline.Registry,
	trampolineFlag string) (route.Vertex, error) {

	if trampolineFlag == "" {
		return route.Vertex{}, errors.New("trampoline required")
	}

	if addr, ok := registry.Lookup(trampolineFlag); ok {
		return route.NewVertex(addr.IdentityKey), nil
	}

	node, err := route.NewVertexFromStr(trampolineFlag)
	if err != nil {
		return route.Vertex{}, fmt.Errorf("unknown trampoline %q",
			trampolineFlag)
	}

	if !registry.IsTrampoline(node) {
		return route.Vertex{}, fmt.Errorf("%v is not a known "+
			"trampoline", node)
	}

	return node, nil
}

// parseFailedRoutes parses routes given as comma separated node keys.
func parseFailedRoutes(routes []string) (routing.FailedRoutes, error) {
	failed := make(routing.FailedRoutes, 0, len(routes))
	for _, r := range routes {
		entry := strings.Split(r, ",")
		for i, node := range entry {
			entry[i] = strings.TrimSpace(node)

			_, err := route.NewVertexFromStr(entry[i])
			if err != nil {
				return nil, fmt.Errorf("failed route %q: %w",
					r, err)
			}
		}

		failed = append(failed, entry)
	}

	return failed, nil
}
