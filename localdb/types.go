package localdb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// storedAttributeValue is the on-disk form of an attribute value. The SDK
// types are interfaces, which the encoder cannot round-trip on its own.
type storedAttributeValue struct {
	Type string                          `cbor:"t"`
	B    []byte                          `cbor:"b,omitempty"`
	BOOL bool                            `cbor:"bool,omitempty"`
	BS   [][]byte                        `cbor:"bs,omitempty"`
	L    []storedAttributeValue          `cbor:"l,omitempty"`
	M    map[string]storedAttributeValue `cbor:"m,omitempty"`
	N    string                          `cbor:"n,omitempty"`
	NS   []string                        `cbor:"ns,omitempty"`
	S    string                          `cbor:"s,omitempty"`
	SS   []string                        `cbor:"ss,omitempty"`
}

type storedItem = map[string]storedAttributeValue

type storedTable struct {
	Name                    string       `cbor:"name"`
	BillingMode             string       `cbor:"billingMode"`
	PrimaryKeyAttributeName string       `cbor:"keyName"`
	PrimaryKeyAttributeType string       `cbor:"keyType"`
	Items                   []storedItem `cbor:"items"`
}

func toStored(v types.AttributeValue) (storedAttributeValue, error) {
	switch v := v.(type) {
	case *types.AttributeValueMemberB:
		return storedAttributeValue{Type: "B", B: v.Value}, nil
	case *types.AttributeValueMemberBOOL:
		return storedAttributeValue{Type: "BOOL", BOOL: v.Value}, nil
	case *types.AttributeValueMemberBS:
		return storedAttributeValue{Type: "BS", BS: v.Value}, nil
	case *types.AttributeValueMemberL:
		list := make([]storedAttributeValue, 0, len(v.Value))
		for _, elem := range v.Value {
			s, err := toStored(elem)
			if err != nil {
				return storedAttributeValue{}, err
			}
			list = append(list, s)
		}
		return storedAttributeValue{Type: "L", L: list}, nil
	case *types.AttributeValueMemberM:
		m, err := toStoredItem(v.Value)
		if err != nil {
			return storedAttributeValue{}, err
		}
		return storedAttributeValue{Type: "M", M: m}, nil
	case *types.AttributeValueMemberN:
		return storedAttributeValue{Type: "N", N: v.Value}, nil
	case *types.AttributeValueMemberNS:
		return storedAttributeValue{Type: "NS", NS: v.Value}, nil
	case *types.AttributeValueMemberNULL:
		return storedAttributeValue{Type: "NULL"}, nil
	case *types.AttributeValueMemberS:
		return storedAttributeValue{Type: "S", S: v.Value}, nil
	case *types.AttributeValueMemberSS:
		return storedAttributeValue{Type: "SS", SS: v.Value}, nil
	default:
		return storedAttributeValue{}, fmt.Errorf("unsupported attribute value %T", v)
	}
}

func toStoredItem(item Item) (storedItem, error) {
	out := make(storedItem, len(item))
	for k, v := range item {
		s, err := toStored(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		out[k] = s
	}
	return out, nil
}

func fromStored(s storedAttributeValue) (types.AttributeValue, error) {
	switch s.Type {
	case "B":
		return &types.AttributeValueMemberB{Value: s.B}, nil
	case "BOOL":
		return &types.AttributeValueMemberBOOL{Value: s.BOOL}, nil
	case "BS":
		return &types.AttributeValueMemberBS{Value: s.BS}, nil
	case "L":
		list := make([]types.AttributeValue, 0, len(s.L))
		for _, elem := range s.L {
			v, err := fromStored(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case "M":
		m, err := fromStoredItem(s.M)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case "N":
		return &types.AttributeValueMemberN{Value: s.N}, nil
	case "NS":
		return &types.AttributeValueMemberNS{Value: s.NS}, nil
	case "NULL":
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case "S":
		return &types.AttributeValueMemberS{Value: s.S}, nil
	case "SS":
		return &types.AttributeValueMemberSS{Value: s.SS}, nil
	default:
		return nil, fmt.Errorf("unknown stored attribute type %q", s.Type)
	}
}

func fromStoredItem(item storedItem) (Item, error) {
	out := make(Item, len(item))
	for k, s := range item {
		v, err := fromStored(s)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
