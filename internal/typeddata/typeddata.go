// Package typeddata builds and verifies the EIP-712 payloads signed for cross-chain burns and payout authorizations.
package typeddata

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

// signatureLength is r || s || v
const signatureLength = 65

// Payload is a message that can be rendered as EIP-712 typed data
type Payload interface {
	TypedData() (apitypes.TypedData, error)
}

// Hash returns the EIP-712 digest of the payload: keccak256("\x19\x01" || domainSeparator || hashStruct(message))
func Hash(p Payload) (common.Hash, error) {
	typed, err := p.TypedData()
	if err != nil {
		return common.Hash{}, err
	}

	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash typed data: %w", err)
	}

	return common.BytesToHash(digest), nil
}

// Sign signs the payload digest. The recovery id is returned as 27/28.
func Sign(p Payload, key *ecdsa.PrivateKey) ([]byte, error) {
	digest, err := Hash(p)
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign typed data: %w", err)
	}
	sig[64] += 27

	return sig, nil
}

// Recover returns the address that signed the payload. The recovery id may be 27/28 or 0/1.
func Recover(p Payload, signature []byte) (common.Address, error) {
	if len(signature) != signatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", domain.ErrInvalidSignature, signatureLength, len(signature))
	}

	sig := make([]byte, signatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return common.Address{}, fmt.Errorf("%w: invalid recovery id %d", domain.ErrInvalidSignature, signature[64])
	}

	digest, err := Hash(p)
	if err != nil {
		return common.Address{}, err
	}

	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that the payload was signed by expected.
// A different signer is reported as domain.ErrSignerMismatch.
func Verify(p Payload, signature []byte, expected common.Address) error {
	signer, err := Recover(p, signature)
	if err != nil {
		return err
	}
	if signer != expected {
		return fmt.Errorf("%w: recovered %s, expected %s", domain.ErrSignerMismatch, signer.Hex(), expected.Hex())
	}
	return nil
}
