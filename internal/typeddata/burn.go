package typeddata

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/gowebpki/jcs"
)

const (
	gatewayDomainName    = "GatewayWallet"
	gatewayDomainVersion = "1"
)

var burnIntentTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
	},
	"TransferSpec": {
		{Name: "version", Type: "uint32"},
		{Name: "sourceDomain", Type: "uint32"},
		{Name: "destinationDomain", Type: "uint32"},
		{Name: "sourceContract", Type: "bytes32"},
		{Name: "destinationContract", Type: "bytes32"},
		{Name: "sourceToken", Type: "bytes32"},
		{Name: "destinationToken", Type: "bytes32"},
		{Name: "sourceDepositor", Type: "bytes32"},
		{Name: "destinationRecipient", Type: "bytes32"},
		{Name: "sourceSigner", Type: "bytes32"},
		{Name: "destinationCaller", Type: "bytes32"},
		{Name: "value", Type: "uint256"},
		{Name: "salt", Type: "bytes32"},
		{Name: "hookData", Type: "bytes"},
	},
	"BurnIntent": {
		{Name: "maxBlockHeight", Type: "uint256"},
		{Name: "maxFee", Type: "uint256"},
		{Name: "spec", Type: "TransferSpec"},
	},
}

// TransferSpec describes a gateway transfer. Address-like fields are 32-byte slots (0x hex),
// integers are decimal strings so the JSON form survives canonicalization without precision loss.
type TransferSpec struct {
	Version              uint32 `json:"version"`
	SourceDomain         uint32 `json:"sourceDomain"`
	DestinationDomain    uint32 `json:"destinationDomain"`
	SourceContract       string `json:"sourceContract"`
	DestinationContract  string `json:"destinationContract"`
	SourceToken          string `json:"sourceToken"`
	DestinationToken     string `json:"destinationToken"`
	SourceDepositor      string `json:"sourceDepositor"`
	DestinationRecipient string `json:"destinationRecipient"`
	SourceSigner         string `json:"sourceSigner"`
	DestinationCaller    string `json:"destinationCaller"`
	Value                string `json:"value"`
	Salt                 string `json:"salt"`
	HookData             string `json:"hookData"`
}

// BurnIntent authorizes minting on the destination domain once the source deposit is burned
type BurnIntent struct {
	MaxBlockHeight string       `json:"maxBlockHeight"`
	MaxFee         string       `json:"maxFee"`
	Spec           TransferSpec `json:"spec"`
}

// TypedData renders the burn intent under the GatewayWallet domain
func (b *BurnIntent) TypedData() (apitypes.TypedData, error) {
	spec, err := b.Spec.message()
	if err != nil {
		return apitypes.TypedData{}, err
	}

	maxBlockHeight, err := parseUint256("maxBlockHeight", b.MaxBlockHeight)
	if err != nil {
		return apitypes.TypedData{}, err
	}
	maxFee, err := parseUint256("maxFee", b.MaxFee)
	if err != nil {
		return apitypes.TypedData{}, err
	}

	return apitypes.TypedData{
		Types:       burnIntentTypes,
		PrimaryType: "BurnIntent",
		Domain: apitypes.TypedDataDomain{
			Name:    gatewayDomainName,
			Version: gatewayDomainVersion,
		},
		Message: apitypes.TypedDataMessage{
			"maxBlockHeight": maxBlockHeight,
			"maxFee":         maxFee,
			"spec":           spec,
		},
	}, nil
}

// Canonical returns the RFC 8785 JSON form of the burn intent, the exact bytes stored and sent to the gateway
func (b *BurnIntent) Canonical() ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal burn intent: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize burn intent: %w", err)
	}
	return canonical, nil
}

// ParseBurnIntent decodes a stored burn intent and checks that it renders as typed data
func ParseBurnIntent(data []byte) (*BurnIntent, error) {
	var b BurnIntent
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode burn intent: %w", err)
	}
	if _, err := b.TypedData(); err != nil {
		return nil, err
	}
	return &b, nil
}

// message renders the spec as a plain map; nested structs must not use the named message type
func (s TransferSpec) message() (map[string]interface{}, error) {
	slots := map[string]string{
		"sourceContract":       s.SourceContract,
		"destinationContract":  s.DestinationContract,
		"sourceToken":          s.SourceToken,
		"destinationToken":     s.DestinationToken,
		"sourceDepositor":      s.SourceDepositor,
		"destinationRecipient": s.DestinationRecipient,
		"sourceSigner":         s.SourceSigner,
		"destinationCaller":    s.DestinationCaller,
		"salt":                 s.Salt,
	}

	msg := map[string]interface{}{
		"version":           new(big.Int).SetUint64(uint64(s.Version)),
		"sourceDomain":      new(big.Int).SetUint64(uint64(s.SourceDomain)),
		"destinationDomain": new(big.Int).SetUint64(uint64(s.DestinationDomain)),
	}

	for name, value := range slots {
		slot, err := ParseBytes32(value)
		if err != nil {
			return nil, fmt.Errorf("transfer spec %s: %w", name, err)
		}
		msg[name] = slot.Bytes()
	}

	value, err := parseUint256("value", s.Value)
	if err != nil {
		return nil, err
	}
	msg["value"] = value

	hookData := []byte{}
	if s.HookData != "" {
		hookData, err = hexutil.Decode(s.HookData)
		if err != nil {
			return nil, fmt.Errorf("transfer spec hookData: %w", err)
		}
	}
	msg["hookData"] = hookData

	return msg, nil
}

// SourceSignerAddress returns the address held in the sourceSigner slot
func (s TransferSpec) SourceSignerAddress() (common.Address, error) {
	slot, err := ParseBytes32(s.SourceSigner)
	if err != nil {
		return common.Address{}, err
	}
	return Bytes32ToAddress(slot)
}

func parseUint256(name, value string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 256 {
		return nil, fmt.Errorf("%s: invalid uint256 %q", name, value)
	}
	return v, nil
}

// Attestation is returned by the burn service once a signed burn intent is accepted.
// The destination minter consumes Attestation and Signature as hex bytes.
type Attestation struct {
	Attestation string `json:"attestation"`
	Signature   string `json:"signature"`
	TransferID  string `json:"transferId,omitempty"`
}
