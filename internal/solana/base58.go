package solana

import "math/big"

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Set = func() map[rune]struct{} {
	set := make(map[rune]struct{}, len(base58Alphabet))
	for _, c := range base58Alphabet {
		set[c] = struct{}{}
	}
	return set
}()

// ValidProgramID reports whether s looks like a Solana address: base58,
// 32-44 characters.
func ValidProgramID(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	for _, c := range s {
		if _, ok := base58Set[c]; !ok {
			return false
		}
	}
	return true
}

// encodeBase58 renders raw bytes in the Bitcoin base58 alphabet used by
// Solana addresses.
func encodeBase58(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}
	n := new(big.Int).SetBytes(b)
	radix := big.NewInt(58)
	mod := new(big.Int)
	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, radix, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		out = append(out, '1')
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
