package rewriter

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/Alextopher/serotonin/core/invariant"
	"github.com/Alextopher/serotonin/core/types"
)

// canonicalField tags the serialised form of one bound input. Bytes carry
// their value; quotations carry the BF string their body reduces to, which
// is the quotation's identity as far as staging is concerned.
type canonicalField struct {
	Kind uint8  `cbor:"1,keyasint"`
	Byte byte   `cbor:"2,keyasint,omitempty"`
	Quot string `cbor:"3,keyasint,omitempty"`
}

const (
	canonicalByte uint8 = iota
	canonicalQuot
)

var canonicalMode cbor.EncMode

func init() {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor canonical mode: %v", err))
	}
	canonicalMode = mode
}

// canonicalInputs serialises bound inputs deterministically. The encoding is
// canonical CBOR, so the same inputs always produce the same bytes and the
// same mangled name on every run.
func canonicalInputs(inputs []types.Term) []byte {
	fields := make([]canonicalField, 0, len(inputs))
	for _, in := range inputs {
		switch {
		case in.IsByte():
			fields = append(fields, canonicalField{Kind: canonicalByte, Byte: in.Byte})
		case in.Kind == types.TermQuot:
			fields = append(fields, canonicalField{Kind: canonicalQuot, Quot: in.Compiled})
		default:
			invariant.Invariant(false, "%s term bound as a rule input", in.Kind)
		}
	}
	data, err := canonicalMode.Marshal(fields)
	if err != nil {
		// canonicalField contains nothing unmarshalable
		panic(fmt.Sprintf("canonical input encoding: %v", err))
	}
	return data
}

// mangle synthesises the specialisation name for a rule applied to concrete
// inputs: the parent name plus a short stable hash of the canonical inputs.
func mangle(name types.Name, canonical []byte) types.Name {
	sum := blake2b.Sum256(canonical)
	return name + "__" + hex.EncodeToString(sum[:8])
}

// specKey keys the specialisation cache by parent name and canonical inputs
func specKey(name types.Name, canonical []byte) string {
	return string(name) + "\x00" + string(canonical)
}
