package typeddata

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var payoutAuthorizationTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"PayoutAuthorization": {
		{Name: "bountyId", Type: "bytes32"},
		{Name: "token", Type: "address"},
		{Name: "recipient", Type: "address"},
		{Name: "amount", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	},
}

// Domain is the EIP-712 domain of the escrow contract verifying payout authorizations
type Domain struct {
	Name              string
	Version           string
	ChainID           int64
	VerifyingContract common.Address
}

// PayoutAuthorization lets the escrow contract release a payout to a recipient
// whose identity was verified off-chain
type PayoutAuthorization struct {
	Domain    Domain
	BountyID  common.Hash
	Token     common.Address
	Recipient common.Address
	Amount    *big.Int
	Nonce     *big.Int
	Deadline  *big.Int
}

// TypedData renders the authorization under the escrow contract domain
func (a *PayoutAuthorization) TypedData() (apitypes.TypedData, error) {
	for name, v := range map[string]*big.Int{"amount": a.Amount, "nonce": a.Nonce, "deadline": a.Deadline} {
		if v == nil || v.Sign() < 0 {
			return apitypes.TypedData{}, fmt.Errorf("payout authorization %s must be a non-negative integer", name)
		}
	}

	return apitypes.TypedData{
		Types:       payoutAuthorizationTypes,
		PrimaryType: "PayoutAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              a.Domain.Name,
			Version:           a.Domain.Version,
			ChainId:           math.NewHexOrDecimal256(a.Domain.ChainID),
			VerifyingContract: a.Domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"bountyId":  a.BountyID.Bytes(),
			"token":     a.Token.Hex(),
			"recipient": a.Recipient.Hex(),
			"amount":    a.Amount,
			"nonce":     a.Nonce,
			"deadline":  a.Deadline,
		},
	}, nil
}
