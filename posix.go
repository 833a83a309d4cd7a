package tre

import (
	"context"
	"errors"

	"github.com/coregx/tre/syntax"
)

// C <regex.h> compile flags.
const (
	REG_EXTENDED = int(syntax.Extended)
	REG_ICASE    = int(syntax.ICase)
	REG_NEWLINE  = int(syntax.Newline)
	REG_NOSUB    = int(syntax.NoSub)
	REG_UNGREEDY = int(syntax.Ungreedy)
)

// C <regex.h> exec flags.
const (
	REG_NOTBOL = int(NotBOL)
	REG_NOTEOL = int(NotEOL)
)

// C <regex.h> status codes.
const (
	REG_OK       = int(syntax.OK)
	REG_NOMATCH  = int(syntax.NoMatch)
	REG_BADPAT   = int(syntax.BadPat)
	REG_ECOLLATE = int(syntax.ECollate)
	REG_ECTYPE   = int(syntax.ECtype)
	REG_EESCAPE  = int(syntax.EEscape)
	REG_ESUBREG  = int(syntax.ESubReg)
	REG_EBRACK   = int(syntax.EBrack)
	REG_EPAREN   = int(syntax.EParen)
	REG_EBRACE   = int(syntax.EBrace)
	REG_BADBR    = int(syntax.BadBR)
	REG_ERANGE   = int(syntax.ERange)
	REG_ESPACE   = int(syntax.ESpace)
	REG_BADRPT   = int(syntax.BadRpt)
)

// RE_DUP_MAX is the largest count accepted in a {m,n} repetition.
const RE_DUP_MAX = syntax.DupMax

// Preg is a compiled pattern of the C-style interface, the counterpart of
// regex_t. Nsub is the number of parenthesized subexpressions.
type Preg struct {
	Nsub int
	re   *Regex
}

// Regmatch is the counterpart of regmatch_t. Unset groups are {-1, -1}.
type Regmatch struct {
	So int
	Eo int
}

// Regcomp compiles pattern into preg and returns REG_OK or the error code.
// On failure preg holds no pattern.
//
// Example:
//
//	var preg tre.Preg
//	if code := tre.Regcomp(&preg, `^\([a-z]*\)=`, 0); code != tre.REG_OK {
//	    log.Fatal(tre.Regerror(code, &preg))
//	}
//	defer tre.Regfree(&preg)
func Regcomp(preg *Preg, pattern string, cflags int) int {
	*preg = Preg{}
	re, err := Compile(pattern, Flags(cflags))
	if err != nil {
		return int(syntax.CodeOf(err))
	}
	preg.re = re
	preg.Nsub = re.NumSubexp()
	return REG_OK
}

// Regexec searches s with the pattern in preg. It fills the first nmatch
// elements of pmatch (no more than len(pmatch)) unless preg was compiled with
// REG_NOSUB, and returns REG_OK, REG_NOMATCH, or REG_ESPACE when the
// backtracking stack is exhausted. A freed or failed preg gives REG_BADPAT.
func Regexec(preg *Preg, s string, nmatch int, pmatch []Regmatch, eflags int) int {
	if preg == nil || preg.re == nil {
		return REG_BADPAT
	}
	nmatch = min(nmatch, len(pmatch))
	if preg.re.flags&NoSub != 0 {
		nmatch = 0
	}

	m, err := preg.re.tnfa.Exec(context.Background(), []byte(s), 0, nmatch, ExecFlags(eflags))
	if err != nil {
		var code syntax.ErrorCode
		if errors.As(err, &code) {
			return int(code)
		}
		return REG_ESPACE
	}
	for i, g := range m {
		pmatch[i] = Regmatch{So: g.So, Eo: g.Eo}
	}
	return REG_OK
}

// Regfree releases the compiled pattern. It is safe on a zero, failed or
// already freed Preg.
func Regfree(preg *Preg) {
	if preg == nil {
		return
	}
	*preg = Preg{}
}

// Regerror returns the message for errcode. The Preg argument mirrors the C
// interface and may be nil.
func Regerror(errcode int, _ *Preg) string {
	return syntax.ErrorCode(errcode).Error()
}
