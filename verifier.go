package tonledger

import (
	"fmt"

	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/types"
)

// Verifier checks device results against the reference results computed by a
// debug capable transport.
type Verifier struct {
	d transport.Debugger
}

func NewVerifier(d transport.Debugger) *Verifier {
	return &Verifier{d: d}
}

// Verify rebuilds result through the debug path with the same intent and
// compares the serialized messages byte by byte.
func (v *Verifier) Verify(result *types.TransactionResult) error {
	if result == nil {
		return ErrNothingToVerify
	}

	intent := result.Intent()

	var (
		reference *types.TransactionResult
		err       error
	)

	switch intent.Kind {
	case types.TransactionDeploy:
		reference, err = v.d.DebugDeploy(intent.Account)
	case types.TransactionTransfer:
		reference, err = v.d.DebugTransfer(intent)
	default:
		return fmt.Errorf("cannot verify transaction kind %d", intent.Kind)
	}

	if err != nil {
		return err
	}

	primary, err := result.BOC()
	if err != nil {
		return err
	}

	expected, err := reference.BOC()
	if err != nil {
		return err
	}

	return compare(intent.Kind.String(), primary, expected)
}

// VerifyAddress compares the public key returned by the device with the one
// derived by the debug path.
func (v *Verifier) VerifyAddress(result *AddressResult) error {
	if result == nil || result.Wallet == nil {
		return ErrNothingToVerify
	}

	pub, err := v.d.DebugAddress(result.Wallet.Account())
	if err != nil {
		return err
	}

	return compare("address", result.PublicKey, pub)
}

func compare(kind string, primary, reference []byte) error {
	if len(primary) != len(reference) {
		return &VerificationMismatchError{
			Kind:         kind,
			PrimaryLen:   len(primary),
			ReferenceLen: len(reference),
			Offset:       -1,
		}
	}

	for i := range primary {
		if primary[i] != reference[i] {
			return &VerificationMismatchError{
				Kind:         kind,
				PrimaryLen:   len(primary),
				ReferenceLen: len(reference),
				Offset:       i,
			}
		}
	}

	return nil
}
