package rotation

// Letters is the letter pool L: the 26 lowercase ASCII letters in
// order. Permutations of L never produce a symbol and vice versa —
// the pool-split invariant that lets A and B communicate case with
// the shift bit alone.
var Letters = [26]byte{
	'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
	'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
}

// Symbols is the symbol pool S: digits, space, and printable
// punctuation, in the exact peer-agreed order used as the
// Fisher-Yates input array. The element count (42) follows the
// literal enumerated list; see DESIGN.md for the discrepancy with
// the prose count.
var Symbols = [42]byte{
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
	' ', '.', ',', '!', '?', '-', '_', '@', '#', '$', '%', '&',
	'*', '(', ')', '[', ']', '{', '}', ':', ';', '"', '\'', '/',
	'\\', '|', '+', '=', '<', '>', '~', '`',
}

// inLetters and inSymbols report whether a lowercase character belongs
// to the letter pool or the symbol pool.
func inLetters(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func inSymbols(b byte) bool {
	for _, s := range Symbols {
		if s == b {
			return true
		}
	}
	return false
}
