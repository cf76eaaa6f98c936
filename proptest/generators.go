package proptest

// Charsets for string generation
const (
	CharsetAlpha      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CharsetAlphaLower = "abcdefghijklmnopqrstuvwxyz"
	CharsetDigits     = "0123456789"
	CharsetAlphaNum   = CharsetAlpha + CharsetDigits
	CharsetPrintable  = CharsetAlphaNum + " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// String returns a random printable ASCII string of length [0, maxLen].
func (g *Generator) String(maxLen int) string {
	return g.StringFrom(CharsetPrintable, maxLen)
}

// StringFrom returns a random string using characters from the given charset,
// with length [0, maxLen].
func (g *Generator) StringFrom(charset string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return g.stringOfLen(charset, g.Intn(maxLen+1))
}

func (g *Generator) stringOfLen(charset string, length int) string {
	if length == 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[g.Intn(len(charset))]
	}
	return string(b)
}

// IdentifierLower returns a valid lowercase identifier of length [1, maxLen].
func (g *Generator) IdentifierLower(maxLen int) string {
	if maxLen <= 0 {
		maxLen = 1
	}
	length := g.IntRange(1, maxLen)

	const startChars = CharsetAlphaLower + "_"
	const bodyChars = CharsetAlphaLower + CharsetDigits + "_"

	b := make([]byte, length)
	b[0] = startChars[g.Intn(len(startChars))]
	for i := 1; i < length; i++ {
		b[i] = bodyChars[g.Intn(len(bodyChars))]
	}
	return string(b)
}

// EdgeCaseString returns a string that's likely to trigger edge cases.
func (g *Generator) EdgeCaseString() string {
	edgeCases := []string{
		"",
		" ",
		"\t",
		"\n",
		"\r\n",
		"'",
		"''",
		`"`,
		`\`,
		"it's",
		`say "hello"`,
		"line1\nline2",
		"NULL",
		"日本語",
		"🎉",
		"--",
		"/**/",
		"/*",
		"*/",
		";",
		"; DROP TABLE users;",
		"(",
		")",
		"SELECT * FROM",
	}
	if g.Float64() < 0.7 {
		return edgeCases[g.Intn(len(edgeCases))]
	}
	return g.String(50)
}

// Pick returns one of choices. It panics when choices is empty.
func Pick[T any](g *Generator, choices ...T) T {
	if len(choices) == 0 {
		panic("proptest: Pick needs at least one choice")
	}
	return choices[g.Intn(len(choices))]
}

// PickFunc runs one of gens and returns its value.
func PickFunc[T any](g *Generator, gens ...func(*Generator) T) T {
	return Pick(g, gens...)(g)
}

// Many runs gen between lo and hi times, inclusive, and collects the values.
func Many[T any](g *Generator, lo, hi int, gen func(*Generator) T) []T {
	out := make([]T, g.IntRange(lo, hi))
	for i := range out {
		out[i] = gen(g)
	}
	return out
}
