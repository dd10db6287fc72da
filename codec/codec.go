package codec

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/wojake/B2M-testnet/addresscodec"
)

const (
	maxDrops       = 100000000000000000 // 10^17
	positiveAmount = 0x4000000000000000
)

// Encode serializes a transaction in XRPL JSON form into canonical binary.
func Encode(tx map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeObject(&buf, tx, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeForSigning serializes only the fields covered by the signature.
func EncodeForSigning(tx map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeObject(&buf, tx, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Sha512Half returns the first 32 bytes of SHA-512 over the concatenated inputs.
func Sha512Half(parts ...[]byte) []byte {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)[:32]
}

// SigningHash is the digest a single signer signs: SHA512Half("STX\0" || signing fields).
func SigningHash(tx map[string]any) ([]byte, error) {
	data, err := EncodeForSigning(tx)
	if err != nil {
		return nil, err
	}
	return Sha512Half(TransactionSigPrefix, data), nil
}

// TransactionID computes the upper-case hex id of a fully signed transaction blob.
func TransactionID(signedTx []byte) string {
	return strings.ToUpper(hex.EncodeToString(Sha512Half(TransactionIDPrefix, signedTx)))
}

func fieldHeader(typeCode, fieldCode int) []byte {
	switch {
	case typeCode < 16 && fieldCode < 16:
		return []byte{byte(typeCode<<4 | fieldCode)}
	case typeCode < 16:
		return []byte{byte(typeCode << 4), byte(fieldCode)}
	case fieldCode < 16:
		return []byte{byte(fieldCode), byte(typeCode)}
	default:
		return []byte{0, byte(typeCode), byte(fieldCode)}
	}
}

func encodeVLLength(n int) ([]byte, error) {
	switch {
	case n <= 192:
		return []byte{byte(n)}, nil
	case n <= 12480:
		n -= 193
		return []byte{byte(193 + (n >> 8)), byte(n & 0xff)}, nil
	case n <= 918744:
		n -= 12481
		return []byte{byte(241 + (n >> 16)), byte((n >> 8) & 0xff), byte(n & 0xff)}, nil
	}
	return nil, fmt.Errorf("codec: variable length %d is too large", n)
}

func sortedFields(obj map[string]any, signing bool) ([]fieldDef, error) {
	defs := make([]fieldDef, 0, len(obj))
	for name := range obj {
		// lower-case keys (hash, meta, ...) are response decorations, not serialized fields
		if r := []rune(name); len(r) > 0 && unicode.IsLower(r[0]) {
			continue
		}
		def, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("codec: unknown field %q", name)
		}
		if signing && !def.Signing {
			continue
		}
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].TypeCode != defs[j].TypeCode {
			return defs[i].TypeCode < defs[j].TypeCode
		}
		return defs[i].FieldCode < defs[j].FieldCode
	})
	return defs, nil
}

func encodeObject(buf *bytes.Buffer, obj map[string]any, signing bool) error {
	defs, err := sortedFields(obj, signing)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := encodeField(buf, def, obj[def.Name], signing); err != nil {
			return fmt.Errorf("codec: field %s: %w", def.Name, err)
		}
	}
	return nil
}

func encodeField(buf *bytes.Buffer, def fieldDef, value any, signing bool) error {
	buf.Write(fieldHeader(def.TypeCode, def.FieldCode))

	switch def.TypeCode {
	case typeUInt16:
		var v uint64
		var err error
		if def.Name == "TransactionType" {
			v, err = transactionTypeCode(value)
		} else {
			v, err = toUint(value, 16)
		}
		if err != nil {
			return err
		}
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(v))
		buf.Write(b[:])

	case typeUInt32:
		v, err := toUint(value, 32)
		if err != nil {
			return err
		}
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])

	case typeAmount:
		b, err := encodeNativeAmount(value)
		if err != nil {
			return err
		}
		buf.Write(b)

	case typeBlob:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected hex string, got %T", value)
		}
		data, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("invalid hex: %w", err)
		}
		return writeVL(buf, data)

	case typeAccountID:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected classic address, got %T", value)
		}
		accountID, err := addresscodec.DecodeAddress(s)
		if err != nil {
			return err
		}
		return writeVL(buf, accountID)

	case typeSTObject:
		inner, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
		if err := encodeObject(buf, inner, signing); err != nil {
			return err
		}
		buf.WriteByte(objectEndMarker)

	case typeSTArray:
		items, err := toObjectSlice(value)
		if err != nil {
			return err
		}
		for _, item := range items {
			if len(item) != 1 {
				return fmt.Errorf("array element must wrap exactly one object, got %d keys", len(item))
			}
			for name, inner := range item {
				innerDef, ok := fields[name]
				if !ok || innerDef.TypeCode != typeSTObject {
					return fmt.Errorf("array element %q is not an object field", name)
				}
				if err := encodeField(buf, innerDef, inner, signing); err != nil {
					return err
				}
			}
		}
		buf.WriteByte(arrayEndMarker)

	default:
		return fmt.Errorf("unsupported type code %d", def.TypeCode)
	}
	return nil
}

func writeVL(buf *bytes.Buffer, data []byte) error {
	prefix, err := encodeVLLength(len(data))
	if err != nil {
		return err
	}
	buf.Write(prefix)
	buf.Write(data)
	return nil
}

func transactionTypeCode(value any) (uint64, error) {
	if name, ok := value.(string); ok {
		code, ok := TransactionTypes[name]
		if !ok {
			return 0, fmt.Errorf("unknown transaction type %q", name)
		}
		return uint64(code), nil
	}
	return toUint(value, 16)
}

func encodeNativeAmount(value any) ([]byte, error) {
	var drops uint64
	switch v := value.(type) {
	case string:
		d, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("only native drop amounts are supported: %w", err)
		}
		drops = d
	default:
		d, err := toUint(value, 64)
		if err != nil {
			return nil, err
		}
		drops = d
	}
	if drops > maxDrops {
		return nil, fmt.Errorf("amount %d drops exceeds the native maximum", drops)
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], drops|positiveAmount)
	return b[:], nil
}

func toUint(value any, bits int) (uint64, error) {
	var v uint64
	switch n := value.(type) {
	case int:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		v = uint64(n)
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		v = uint64(n)
	case uint16:
		v = uint64(n)
	case uint32:
		v = uint64(n)
	case uint64:
		v = n
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, fmt.Errorf("invalid integer %v", n)
		}
		v = uint64(n)
	case string:
		parsed, err := strconv.ParseUint(n, 10, bits)
		if err != nil {
			return 0, err
		}
		v = parsed
	default:
		return 0, fmt.Errorf("unsupported integer type %T", value)
	}
	if bits < 64 && v >= 1<<uint(bits) {
		return 0, fmt.Errorf("value %d overflows uint%d", v, bits)
	}
	return v, nil
}

func toObjectSlice(value any) ([]map[string]any, error) {
	switch v := value.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("array element must be an object, got %T", item)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected array, got %T", value)
}
