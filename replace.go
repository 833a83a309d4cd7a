package tre

// ReplaceAllLiteral returns a copy of src, replacing matches of the pattern
// with the replacement bytes repl.
// The replacement is substituted directly, without expanding $ variables.
//
// Example:
//
//	re := tre.MustCompile(`[0-9]+`, tre.Extended)
//	result := re.ReplaceAllLiteral([]byte("age: 42"), []byte("XX"))
//	// result = []byte("age: XX")
func (r *Regex) ReplaceAllLiteral(src, repl []byte) []byte {
	return r.replaceAll(src, 1, func(dst []byte, _ []int) []byte {
		return append(dst, repl...)
	})
}

// ReplaceAllLiteralString is like ReplaceAllLiteral for strings.
func (r *Regex) ReplaceAllLiteralString(src, repl string) string {
	return string(r.ReplaceAllLiteral([]byte(src), []byte(repl)))
}

// ReplaceAll returns a copy of src, replacing matches of the pattern
// with the replacement bytes repl.
// Inside repl, $0 is the entire match, $1 to $9 and ${n} are capture groups
// and $$ is a literal $. Unmatched groups expand to nothing.
//
// Example:
//
//	re := tre.MustCompile(`([a-z]+)@([a-z]+)`, tre.Extended)
//	result := re.ReplaceAll([]byte("root@host"), []byte("$2 of $1"))
//	// result = []byte("host of root")
func (r *Regex) ReplaceAll(src, repl []byte) []byte {
	if !hasDollar(repl) {
		return r.ReplaceAllLiteral(src, repl)
	}
	return r.replaceAll(src, r.tnfa.NumSubmatches(), func(dst []byte, m []int) []byte {
		return expand(dst, repl, src, m)
	})
}

// ReplaceAllString is like ReplaceAll for strings.
func (r *Regex) ReplaceAllString(src, repl string) string {
	return string(r.ReplaceAll([]byte(src), []byte(repl)))
}

// ReplaceAllFunc returns a copy of src in which all matches of the pattern
// have been replaced by the return value of repl applied to the matched
// bytes. The replacement is substituted directly.
func (r *Regex) ReplaceAllFunc(src []byte, repl func([]byte) []byte) []byte {
	return r.replaceAll(src, 1, func(dst []byte, m []int) []byte {
		return append(dst, repl(src[m[0]:m[1]:m[1]])...)
	})
}

// ReplaceAllStringFunc is like ReplaceAllFunc for strings.
func (r *Regex) ReplaceAllStringFunc(src string, repl func(string) string) string {
	b := []byte(src)
	return string(r.replaceAll(b, 1, func(dst []byte, m []int) []byte {
		return append(dst, repl(src[m[0]:m[1]])...)
	}))
}

// Expand appends template to dst with $ variables replaced by the groups of
// match, as returned by FindSubmatchIndex on src.
func (r *Regex) Expand(dst []byte, template []byte, src []byte, match []int) []byte {
	return expand(dst, template, src, match)
}

func (r *Regex) replaceAll(src []byte, ncap int, repl func(dst []byte, m []int) []byte) []byte {
	result := make([]byte, 0, len(src))
	lastEnd := 0
	r.allMatches(src, -1, ncap, func(m []int) {
		result = append(result, src[lastEnd:m[0]]...)
		result = repl(result, m)
		lastEnd = m[1]
	})
	return append(result, src[lastEnd:]...)
}

func hasDollar(b []byte) bool {
	for _, c := range b {
		if c == '$' {
			return true
		}
	}
	return false
}

// expand appends template to dst; $n and ${n} become group n of match.
func expand(dst []byte, template []byte, src []byte, match []int) []byte {
	group := func(n int) {
		if 2*n+1 < len(match) && match[2*n] >= 0 {
			dst = append(dst, src[match[2*n]:match[2*n+1]]...)
		}
	}

	i := 0
	for i < len(template) {
		if template[i] != '$' || i+1 >= len(template) {
			dst = append(dst, template[i])
			i++
			continue
		}

		next := template[i+1]
		switch {
		case next >= '0' && next <= '9':
			group(int(next - '0'))
			i += 2
		case next == '$':
			dst = append(dst, '$')
			i += 2
		case next == '{':
			n, end, ok := parseBraceGroup(template, i+2)
			if !ok {
				dst = append(dst, '$')
				i++
				continue
			}
			group(n)
			i = end
		default:
			// Unknown $ escape, treat as literal.
			dst = append(dst, '$')
			i++
		}
	}
	return dst
}

// parseBraceGroup reads "123}" at i and returns the number and the offset
// after the brace.
func parseBraceGroup(template []byte, i int) (int, int, bool) {
	n, digits := 0, 0
	for ; i < len(template) && template[i] >= '0' && template[i] <= '9'; i++ {
		if n > 1000 {
			return 0, 0, false
		}
		n = n*10 + int(template[i]-'0')
		digits++
	}
	if digits == 0 || i >= len(template) || template[i] != '}' {
		return 0, 0, false
	}
	return n, i + 1, true
}

// Split slices s into substrings separated by the expression and returns a
// slice of the substrings between those matches.
//
// The count determines the number of substrings to return:
//
//	n > 0: at most n substrings; the last substring will be the unsplit remainder.
//	n == 0: the result is nil (zero substrings)
//	n < 0: all substrings
//
// Example:
//
//	re := tre.MustCompile(`,`, 0)
//	parts := re.Split("a,b,c", 2)
//	// parts = ["a", "b,c"]
func (r *Regex) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	if len(r.pattern) > 0 && len(s) == 0 {
		return []string{""}
	}

	matches := r.FindAllStringIndex(s, n)
	result := make([]string, 0, len(matches)+1)

	beg, end := 0, 0
	for _, m := range matches {
		if n > 0 && len(result) == n-1 {
			break
		}
		end = m[0]
		if m[1] != 0 {
			result = append(result, s[beg:end])
		}
		beg = m[1]
	}
	if end != len(s) {
		result = append(result, s[beg:])
	}
	return result
}
