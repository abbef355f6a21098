package noise

// Keyboard maps characters to the keys physically adjacent to them on a QWERTY keyboard,
// including the shifted symbol of neighbouring number keys.
var Keyboard = Table{
	'1': {"!", "2", "@", "q", "w"},
	'2': {"@", "1", "!", "3", "#", "q", "w", "e"},
	'3': {"#", "2", "@", "4", "$", "w", "e"},
	'4': {"$", "3", "#", "5", "%", "e", "r"},
	'5': {"%", "4", "$", "6", "^", "r", "t", "y"},
	'6': {"^", "5", "%", "7", "&", "t", "y", "u"},
	'7': {"&", "6", "^", "8", "*", "y", "u", "i"},
	'8': {"*", "7", "&", "9", "(", "u", "i", "o"},
	'9': {"(", "8", "*", "0", ")", "i", "o", "p"},
	'!': {"@", "q"},
	'@': {"!", "#", "q", "w"},
	'#': {"@", "$", "w", "e"},
	'$': {"#", "%", "e", "r"},
	'%': {"$"},
	'q': {"1", "!", "2", "@", "w", "a", "s"},
	'w': {"1", "!", "2", "@", "3", "#", "q", "e", "a", "s", "d"},
	'e': {"2", "@", "3", "#", "4", "$", "w", "r", "s", "d", "f"},
	'r': {"3", "#", "4", "$", "5", "%", "e", "t", "d", "f", "g"},
	't': {"4", "$", "5", "%", "6", "^", "r", "y", "f", "g", "h"},
	'y': {"5", "%", "6", "^", "7", "&", "t", "u", "g", "h", "j"},
	'u': {"6", "^", "7", "&", "8", "*", "t", "i", "h", "j", "k"},
	'i': {"7", "&", "8", "*", "9", "(", "u", "o", "j", "k", "l"},
	'o': {"8", "*", "9", "(", "0", ")", "i", "p", "k", "l"},
	'p': {"9", "(", "0", ")", "o", "l"},
	'a': {"q", "w", "a", "s", "z", "x"},
	's': {"q", "w", "e", "a", "d", "z", "x", "c"},
	'd': {"w", "e", "r", "s", "f", "x", "c", "v"},
	'f': {"e", "r", "t", "d", "g", "c", "v", "b"},
	'g': {"r", "t", "y", "f", "h", "v", "b", "n"},
	'h': {"t", "y", "u", "g", "j", "b", "n", "m"},
	'j': {"y", "u", "i", "h", "k", "n", "m", ",", "<"},
	'k': {"u", "i", "o", "j", "l", "m", ",", "<", ".", ">"},
	'l': {"i", "o", "p", "k", ";", ":", ",", "<", ".", ">", "/", "?"},
	'z': {"a", "s", "x"},
	'x': {"a", "s", "d", "z", "c"},
	'c': {"s", "d", "f", "x", "v"},
	'v': {"d", "f", "g", "c", "b"},
	'b': {"f", "g", "h", "v", "n"},
	'n': {"g", "h", "j", "b", "m"},
	'm': {"h", "j", "k", "n", ",", "<"},
}

// OCR maps characters to glyphs an OCR engine commonly confuses them with.
// Some substitutes span more than one character (e.g. "m" read as "rn").
var OCR = Table{
	'a': {"@", "d", "u"},
	'b': {"h"},
	'c': {"e", "o"},
	'd': {"a", "@"},
	'e': {"o", "c"},
	'f': {"t", "l", "i", "j", "1"},
	'g': {"p", "q"},
	'h': {"b"},
	'i': {"l", "j", "t", "1"},
	'j': {"i", "l", "t", "1"},
	'k': {"k"},
	'l': {"i", "j", "t", "f", "1"},
	'm': {"m", "rn"},
	'n': {"n", "r"},
	'o': {"c", "e"},
	'p': {"q", "g"},
	'q': {"p", "g"},
	'r': {"r"},
	's': {"5"},
	't': {"f", "i", "j", "l", "1"},
	'u': {"a", "v"},
	'v': {"a", "u"},
	'w': {"vv", "uv", "vu", "vv"},
	'x': {"y"},
	'y': {"x"},
	'z': {"2"},
	'1': {"4", "7", "l", "i", "t", "f", "j"},
	'2': {"3", "z"},
	'3': {"2"},
	'4': {"1", "7"},
	'5': {"6", "s"},
	'6': {"5"},
	'7': {"1", "4", "l", "i", "t", "f", "j"},
	'8': {"9", "0", "o"},
	'9': {"0", "8", "o"},
	'0': {"8", "9", "o"},
}

// RandomCharacters is the context-free set of characters used by character noise.
var RandomCharacters = Charset("qwertyuiopasdfghjklzxcvbnm QWERTYUIOPASDFGHJKLZXCVBNM 1234567890")
