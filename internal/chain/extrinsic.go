package chain

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
)

// burnedRegisterArgs is the argument layout of the burned-registration call,
// encoded in declaration order after the module and call indices.
type burnedRegisterArgs struct {
	NetUID uint16
	Hotkey [crypto.AccountIDSize]byte
	Burn   uint64
}

// encodeBurnedRegisterCall serializes the burned-registration dispatchable:
// module index, call index, then the SCALE-encoded arguments.
func encodeBurnedRegisterCall(netuid uint16, hotkey crypto.AccountID, burn uint64) ([]byte, error) {
	args, err := scaleCodec.Marshal(burnedRegisterArgs{
		NetUID: netuid,
		Hotkey: hotkey,
		Burn:   burn,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding burned register arguments: %w", err)
	}
	call := make([]byte, 0, 2+len(args))
	call = append(call, SubtensorModuleIndex, BurnedRegisterCallIndex)
	call = append(call, args...)
	return call, nil
}

// mortalEra packs the transaction mortality window into two bytes: a
// period-class nibble from the period's trailing-zero count (floored at 1)
// in the low bits, the scaled phase in the high bits, then a zero pad byte.
func mortalEra(block uint64) [2]byte {
	phase := block % eraPeriod
	quantize := uint64(eraPeriod >> 4)

	trailing := bits.TrailingZeros64(eraPeriod) - 1
	if trailing < 1 {
		trailing = 1
	}
	era := byte(trailing) | byte(phase/quantize)<<6
	return [2]byte{era, 0x00}
}

// encodeSignedExtra builds the era/nonce/tip section the signature commits
// to. The tip is always zero.
func encodeSignedExtra(nonce, block uint64) []byte {
	era := mortalEra(block)

	extra := make([]byte, 0, 2+8+8)
	extra = append(extra, era[:]...)
	extra = binary.LittleEndian.AppendUint64(extra, nonce)
	extra = binary.LittleEndian.AppendUint64(extra, 0) // tip
	return extra
}

// signingMessage returns the bytes actually signed: the payload itself, or
// its blake2b-256 hash once the payload exceeds the chain's 256-byte
// threshold. Signing the wrong representation yields a syntactically valid
// extrinsic the chain silently rejects.
func signingMessage(payload []byte) []byte {
	if len(payload) > signingPayloadHashThreshold {
		hashed := crypto.HashData(payload)
		return hashed[:]
	}
	return payload
}

// buildSignedExtrinsic assembles, signs and length-prefixes a version-4
// signed extrinsic around the given call. The nonce and block must have been
// read before calling: the signature commits to both.
func buildSignedExtrinsic(call []byte, signer *crypto.Keypair, nonce, block uint64) ([]byte, error) {
	extra := encodeSignedExtra(nonce, block)

	payload := make([]byte, 0, len(call)+len(extra))
	payload = append(payload, call...)
	payload = append(payload, extra...)

	sig, err := signer.Sign(signingMessage(payload))
	if err != nil {
		return nil, fmt.Errorf("signing extrinsic payload: %w", err)
	}

	account := signer.AccountID()
	envelope := make([]byte, 0, 1+len(account)+len(sig)+len(extra)+len(call))
	envelope = append(envelope, extrinsicVersionSigned)
	envelope = append(envelope, account[:]...)
	envelope = append(envelope, sig[:]...)
	envelope = append(envelope, extra...)
	envelope = append(envelope, call...)

	// Length prefix with the top bit set, marking a compact-encoded length.
	out := make([]byte, 0, 4+len(envelope))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(envelope))|0x8000_0000)
	out = append(out, envelope...)
	return out, nil
}
