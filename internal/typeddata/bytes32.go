package typeddata

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressToBytes32 left-pads a 20-byte address into a 32-byte slot, as the gateway contracts expect
func AddressToBytes32(address common.Address) common.Hash {
	var out common.Hash
	copy(out[12:], address.Bytes())
	return out
}

// Bytes32ToAddress extracts the address of a left-padded 32-byte slot.
// Slots with non-zero high bytes do not hold an address and are rejected.
func Bytes32ToAddress(slot common.Hash) (common.Address, error) {
	for _, b := range slot[:12] {
		if b != 0 {
			return common.Address{}, fmt.Errorf("slot %s does not hold a left-padded address", slot.Hex())
		}
	}
	return common.BytesToAddress(slot[12:]), nil
}

// ParseBytes32 decodes a 0x-prefixed 32-byte hex string
func ParseBytes32(s string) (common.Hash, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid bytes32 %q: %w", s, err)
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid bytes32 %q: expected %d bytes, got %d", s, common.HashLength, len(raw))
	}
	return common.BytesToHash(raw), nil
}

// ParseAddress decodes a hex address
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
