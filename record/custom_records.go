package record

import (
	"fmt"

	"github.com/lightningnetwork/lnd/tlv"
)

const (
	// CustomTypeStart is the start of the custom tlv type range as defined
	// in BOLT 01. The trampoline records live in this range.
	CustomTypeStart = 65536
)

// CustomSet stores a set of custom key/value pairs that were found in a
// payload but are not trampoline records.
type CustomSet map[uint64][]byte

// Validate checks that all custom records are in the custom type range and
// do not shadow a trampoline record.
func (c CustomSet) Validate() error {
	for key := range c {
		if key < CustomTypeStart {
			return fmt.Errorf("no custom records with types "+
				"below %v allowed", CustomTypeStart)
		}

		if IsTrampolineType(tlv.Type(key)) {
			return fmt.Errorf("custom record type %v is reserved "+
				"for trampoline payloads", key)
		}
	}

	return nil
}

// NewCustomRecords filters the types parsed from the tlv stream for custom
// records, skipping the trampoline records that have dedicated fields.
func NewCustomRecords(parsedTypes tlv.TypeMap) CustomSet {
	customRecords := make(CustomSet)
	for t, parseResult := range parsedTypes {
		if parseResult == nil || t < CustomTypeStart ||
			IsTrampolineType(t) {

			continue
		}
		customRecords[uint64(t)] = parseResult
	}
	return customRecords
}
