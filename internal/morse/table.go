// internal/morse/table.go
// Package morse decodes a stream of timing events into text.
package morse

// Unknown is the placeholder appended when a code group has no table
// entry. A session keeps going; the operator sees the miskey.
const Unknown = '◊'

// defaultTable maps dot/dash code groups to characters: letters A-Z,
// digits 0-9 and the handful of punctuation marks the keyer supports.
var defaultTable = map[string]rune{
	".-":   'A',
	"-...": 'B',
	"-.-.": 'C',
	"-..":  'D',
	".":    'E',
	"..-.": 'F',
	"--.":  'G',
	"....": 'H',
	"..":   'I',
	".---": 'J',
	"-.-":  'K',
	".-..": 'L',
	"--":   'M',
	"-.":   'N',
	"---":  'O',
	".--.": 'P',
	"--.-": 'Q',
	".-.":  'R',
	"...":  'S',
	"-":    'T',
	"..-":  'U',
	"...-": 'V',
	".--":  'W',
	"-..-": 'X',
	"-.--": 'Y',
	"--..": 'Z',

	"-----": '0',
	".----": '1',
	"..---": '2',
	"...--": '3',
	"....-": '4',
	".....": '5',
	"-....": '6',
	"--...": '7',
	"---..": '8',
	"----.": '9',

	".-.-.-": '.',
	"-.-.--": '!',
	"--..--": ',',
}

// DefaultTable returns a copy of the built-in code table. Callers may
// extend the copy (config: morse_overrides) without affecting other
// decoders.
func DefaultTable() map[string]rune {
	table := make(map[string]rune, len(defaultTable))
	for code, char := range defaultTable {
		table[code] = char
	}
	return table
}
