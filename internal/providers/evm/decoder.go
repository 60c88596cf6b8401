package evm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

var eventTypes = map[string]domain.EventType{
	"BountyCreated":  domain.EventTypeBountyCreated,
	"BountyFunded":   domain.EventTypeBountyFunded,
	"ClaimSubmitted": domain.EventTypeClaimSubmitted,
	"BountyPaid":     domain.EventTypeBountyPaid,
	"BountyRefunded": domain.EventTypeBountyRefunded,
	"BountyClosed":   domain.EventTypeBountyClosed,
}

// argument names of the contract mapped to the normalized field names
var fieldNames = map[string]string{
	"bountyId":  domain.FieldBountyID,
	"token":     domain.FieldToken,
	"amount":    domain.FieldAmount,
	"funder":    domain.FieldFunder,
	"recipient": domain.FieldRecipient,
	"claimant":  domain.FieldClaimant,
	"creator":   domain.FieldCreator,
	"issueUrl":  domain.FieldIssueURL,
	"claimUrl":  domain.FieldClaimURL,
}

// Decoder turns escrow contract logs into normalized event types and field maps
type Decoder struct {
	abi abi.ABI
}

// NewDecoder parses the escrow contract ABI
func NewDecoder() (*Decoder, error) {
	parsed, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse escrow ABI: %w", err)
	}
	return &Decoder{abi: parsed}, nil
}

// Topics returns the event signatures to filter logs by
func (d *Decoder) Topics() []common.Hash {
	topics := make([]common.Hash, 0, len(d.abi.Events))
	for _, event := range d.abi.Events {
		topics = append(topics, event.ID)
	}
	return topics
}

// Decode decodes a log emitted by the escrow contract
func (d *Decoder) Decode(vLog types.Log) (domain.EventType, map[string]string, error) {
	if len(vLog.Topics) == 0 {
		return "", nil, fmt.Errorf("log has no topics: %w", domain.ErrInvalidEvent)
	}

	event, err := d.abi.EventByID(vLog.Topics[0])
	if err != nil {
		return "", nil, fmt.Errorf("unknown event signature %s: %w", vLog.Topics[0].Hex(), domain.ErrUnknownEventType)
	}

	eventType, ok := eventTypes[event.Name]
	if !ok {
		return "", nil, fmt.Errorf("event %s has no ledger mutation: %w", event.Name, domain.ErrUnknownEventType)
	}

	values := make(map[string]interface{})
	if len(vLog.Data) > 0 {
		if err := d.abi.UnpackIntoMap(values, event.Name, vLog.Data); err != nil {
			return "", nil, fmt.Errorf("failed to unpack %s data: %v: %w", event.Name, err, domain.ErrInvalidEvent)
		}
	}

	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(vLog.Topics)-1 != len(indexed) {
		return "", nil, fmt.Errorf("%s: expected %d indexed topics, got %d: %w",
			event.Name, len(indexed), len(vLog.Topics)-1, domain.ErrInvalidEvent)
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, vLog.Topics[1:]); err != nil {
		return "", nil, fmt.Errorf("failed to parse %s topics: %v: %w", event.Name, err, domain.ErrInvalidEvent)
	}

	fields := make(map[string]string, len(values))
	for name, value := range values {
		key, ok := fieldNames[name]
		if !ok {
			key = name
		}
		normalized, err := normalize(value)
		if err != nil {
			return "", nil, fmt.Errorf("%s.%s: %v: %w", event.Name, name, err, domain.ErrInvalidEvent)
		}
		fields[key] = normalized
	}

	return eventType, fields, nil
}

// normalize renders an ABI value as a string: addresses and byte arrays as lowercase hex, integers in decimal
func normalize(value interface{}) (string, error) {
	switch v := value.(type) {
	case common.Address:
		return strings.ToLower(v.Hex()), nil
	case [32]byte:
		return hexutil.Encode(v[:]), nil
	case common.Hash:
		return hexutil.Encode(v.Bytes()), nil
	case *big.Int:
		return v.String(), nil
	case string:
		return v, nil
	case []byte:
		return hexutil.Encode(v), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}
