package routing

import (
	"fmt"

	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/lightningnetwork/trampoline/hophints"
)

// Payment describes a single attempt at paying an invoice through our
// trampoline.
type Payment struct {
	// Amount is the amount the receiver gets in this attempt.
	Amount lnwire.MilliSatoshi

	// TotalAmount is the total amount of the payment across all parts.
	TotalAmount lnwire.MilliSatoshi

	// MinFinalCLTVDelta is the receiver's final cltv delta.
	MinFinalCLTVDelta uint32

	// Receiver is the node paid by the invoice.
	Receiver route.Vertex

	// InvoiceFeatures are the features of the invoice.
	InvoiceFeatures *lnwire.FeatureVector

	// Hints are the route hints of the invoice.
	Hints []hophints.RouteHint

	// PaymentHash is the hash of the invoice.
	PaymentHash lntypes.Hash

	// PaymentAddr is the payment secret of the invoice.
	PaymentAddr [32]byte

	// Sender is our own node.
	Sender route.Vertex

	// SenderTrampoline is the trampoline we have a channel with.
	SenderTrampoline route.Vertex

	// LocalHeight is the current block height.
	LocalHeight uint32

	// FeeLevel selects the share of the budget offered as fees.
	FeeLevel uint32

	// UseTwoTrampolines adds a second trampoline to legacy payments.
	UseTwoTrampolines bool

	// FailedRoutes are the earlier failed attempts of this payment.
	FailedRoutes FailedRoutes

	// Budget bounds the fees and time lock of the route.
	Budget FeeBudget
}

// NewPaymentFromInvoice fills the invoice derived fields of a payment. The
// amount is taken from the invoice unless amt is non-zero. The caller sets
// the sender side fields and the budget.
func NewPaymentFromInvoice(invoice *zpay32.Invoice,
	amt lnwire.MilliSatoshi) (*Payment, error) {

	if amt == 0 {
		if invoice.MilliSat == nil {
			return nil, ErrMissingAmount
		}
		amt = *invoice.MilliSat
	}

	if invoice.PaymentAddr == nil {
		return nil, ErrMissingPaymentAddr
	}

	if invoice.PaymentHash == nil {
		return nil, fmt.Errorf("invoice has no payment hash")
	}

	if invoice.Destination == nil {
		return nil, fmt.Errorf("invoice has no destination")
	}

	minFinalCLTVDelta := invoice.MinFinalCLTVExpiry()
	if minFinalCLTVDelta > MaxCLTVDelta {
		return nil, fmt.Errorf("%w: %v exceeds maximum %v",
			ErrFinalCLTVTooLarge, minFinalCLTVDelta, MaxCLTVDelta)
	}

	return &Payment{
		Amount:            amt,
		TotalAmount:       amt,
		MinFinalCLTVDelta: uint32(minFinalCLTVDelta),
		Receiver:          route.NewVertex(invoice.Destination),
		InvoiceFeatures:   invoice.Features,
		Hints:             hophints.FromInvoice(invoice.RouteHints),
		PaymentHash:       *invoice.PaymentHash,
		PaymentAddr:       *invoice.PaymentAddr,
	}, nil
}

// Attempt is a trampoline route with its onion, ready to be sent to the
// sender's trampoline.
type Attempt struct {
	// Route is the trampoline route.
	Route *Route

	// Onion is the trampoline onion and its payloads.
	Onion *OnionResult

	// Amount is the amount to send to the first trampoline.
	Amount lnwire.MilliSatoshi

	// CLTVDelta is the time lock delta of the HTLC to the first
	// trampoline, relative to the current height.
	CLTVDelta uint32
}

// RouteAndBuild builds the trampoline route and onion for a payment attempt.
func (b *Builder) RouteAndBuild(p *Payment) (*Attempt, error) {
	rt, err := b.BuildRoute(&RouteRequest{
		Amount:            p.Amount,
		MinFinalCLTVDelta: p.MinFinalCLTVDelta,
		Receiver:          p.Receiver,
		InvoiceFeatures:   p.InvoiceFeatures,
		Sender:            p.Sender,
		SenderTrampoline:  p.SenderTrampoline,
		Hints:             p.Hints,
		FeeLevel:          p.FeeLevel,
		UseTwoTrampolines: p.UseTwoTrampolines,
		FailedRoutes:      p.FailedRoutes,
		Budget:            p.Budget,
	})
	if err != nil {
		return nil, err
	}

	onion, err := b.BuildOnion(rt, &OnionRequest{
		Amount:      p.Amount,
		FinalCLTV:   p.LocalHeight + p.MinFinalCLTVDelta,
		TotalAmount: p.TotalAmount,
		PaymentHash: p.PaymentHash,
		PaymentAddr: p.PaymentAddr,
	})
	if err != nil {
		return nil, err
	}

	return &Attempt{
		Route:     rt,
		Onion:     onion,
		Amount:    onion.Amount,
		CLTVDelta: onion.CLTV - p.LocalHeight,
	}, nil
}
