package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// encodeCall builds calldata: 4-byte selector + encoded args.
// Only static types are supported; that covers the ERC-20 and exchange
// surface this package binds.
func encodeCall(fn *ABIEntry, args []string) (string, error) {
	if len(args) != len(fn.Inputs) {
		return "", fmt.Errorf("%s expects %d argument(s), got %d", fn.Name, len(fn.Inputs), len(args))
	}

	var encoded strings.Builder
	encoded.WriteString(functionSelector(fn))

	for i, param := range fn.Inputs {
		enc, err := encodeParam(param.Type, args[i])
		if err != nil {
			return "", fmt.Errorf("encoding param %s: %w", param.Name, err)
		}
		encoded.WriteString(enc)
	}

	return encoded.String(), nil
}

// signature returns the canonical "name(type,...)" form.
func signature(e *ABIEntry) string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.Type
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// functionSelector computes the 4-byte selector for a function.
func functionSelector(fn *ABIEntry) string {
	return "0x" + hex.EncodeToString(keccak([]byte(signature(fn)))[:4])
}

// eventTopic computes topic[0] for an event.
func eventTopic(ev *ABIEntry) string {
	return "0x" + hex.EncodeToString(keccak([]byte(signature(ev))))
}

func keccak(b []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	return h.Sum(nil)
}

// encodeParam encodes a single ABI parameter value as a 32-byte hex word.
func encodeParam(typ, val string) (string, error) {
	switch {
	case typ == "address":
		raw := strings.TrimPrefix(strings.ToLower(val), "0x")
		if len(raw) != 40 {
			return "", fmt.Errorf("invalid address: %s", val)
		}
		if _, err := hex.DecodeString(raw); err != nil {
			return "", fmt.Errorf("invalid address: %s", val)
		}
		return strings.Repeat("0", 24) + raw, nil

	case strings.HasPrefix(typ, "uint"):
		n, ok := new(big.Int).SetString(val, 0)
		if !ok || n.Sign() < 0 || n.BitLen() > 256 {
			return "", fmt.Errorf("invalid %s: %s", typ, val)
		}
		return fmt.Sprintf("%064x", n), nil

	case typ == "bool":
		if val == "true" || val == "1" {
			return fmt.Sprintf("%064d", 1), nil
		}
		return fmt.Sprintf("%064d", 0), nil

	default:
		return "", fmt.Errorf("unsupported parameter type %s", typ)
	}
}

// decodeResult decodes the raw hex result into string values.
func decodeResult(fn *ABIEntry, hexData string) ([]string, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(hexData, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decoding hex result: %w", err)
	}
	if len(fn.Outputs) == 0 {
		return nil, nil
	}
	if len(data) < 32*len(fn.Outputs) {
		return nil, fmt.Errorf("%s returned %d bytes, want at least %d", fn.Name, len(data), 32*len(fn.Outputs))
	}

	results := make([]string, 0, len(fn.Outputs))
	for i, out := range fn.Outputs {
		val, err := decodeWord(out.Type, data[i*32:(i+1)*32], data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s output %d: %w", fn.Name, i, err)
		}
		results = append(results, val)
	}
	return results, nil
}

func decodeWord(typ string, word []byte, fullData []byte) (string, error) {
	switch {
	case typ == "address":
		return "0x" + hex.EncodeToString(word[12:]), nil

	case strings.HasPrefix(typ, "uint"):
		return new(big.Int).SetBytes(word).String(), nil

	case typ == "bool":
		if word[31] == 1 {
			return "true", nil
		}
		return "false", nil

	case typ == "string":
		// String uses an offset + length encoding.
		// Bounds are compared by subtraction so hostile words cannot wrap.
		size := uint64(len(fullData))
		off := new(big.Int).SetBytes(word)
		if size < 32 || !off.IsUint64() || off.Uint64() > size-32 {
			return "", fmt.Errorf("string offset out of range")
		}
		start := off.Uint64()
		length := new(big.Int).SetBytes(fullData[start : start+32])
		if !length.IsUint64() || length.Uint64() > size-start-32 {
			return "", fmt.Errorf("string length out of range")
		}
		return string(fullData[start+32 : start+32+length.Uint64()]), nil

	default:
		return "0x" + hex.EncodeToString(word), nil
	}
}
