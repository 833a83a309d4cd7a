package tre_test

import (
	"errors"
	"fmt"

	"github.com/coregx/tre"
	"github.com/coregx/tre/syntax"
)

// ExampleCompile demonstrates basic pattern compilation and matching.
func ExampleCompile() {
	re, err := tre.Compile(`[0-9]+`, tre.Extended)
	if err != nil {
		panic(err)
	}

	fmt.Println(re.Match([]byte("hello 123")))
	// Output: true
}

// ExampleCompile_basic shows basic (BRE) syntax, where groups are written
// \( \) and back-references are allowed.
func ExampleCompile_basic() {
	re := tre.MustCompile(`\([a-z]*\)-\1`, 0)
	fmt.Println(re.FindStringSubmatch("see abc-abc here"))
	// Output: [abc-abc abc]
}

// ExampleCompile_error shows how to test for a POSIX error code.
func ExampleCompile_error() {
	_, err := tre.Compile("a{2,1}", tre.Extended)
	fmt.Println(errors.Is(err, syntax.BadBR))
	fmt.Println(syntax.CodeOf(err).String())
	// Output:
	// true
	// REG_BADBR
}

// ExampleRegex_Find shows that the longest alternative wins.
func ExampleRegex_Find() {
	re := tre.MustCompile(`a|ab`, tre.Extended)
	fmt.Println(string(re.Find([]byte("xabc"))))
	// Output: ab
}

// ExampleRegex_FindStringSubmatch demonstrates POSIX submatch rules.
func ExampleRegex_FindStringSubmatch() {
	re := tre.MustCompile(`(a|ab)(c|bcd)`, tre.Extended)
	fmt.Printf("%q\n", re.FindStringSubmatch("abcd"))
	// Output: ["abcd" "a" "bcd"]
}

// ExampleRegex_FindAllString demonstrates finding all matches.
func ExampleRegex_FindAllString() {
	re := tre.MustCompile(`[[:alpha:]]+`, tre.Extended)
	fmt.Println(re.FindAllString("hello, world 42 test", -1))
	// Output: [hello world test]
}

// ExampleRegex_ReplaceAllString demonstrates group expansion.
func ExampleRegex_ReplaceAllString() {
	re := tre.MustCompile(`([a-z]+)@([a-z]+)`, tre.Extended)
	fmt.Println(re.ReplaceAllString("mail root@host now", "$2 of $1"))
	// Output: mail host of root now
}

// ExampleRegex_Exec shows the exec flags.
func ExampleRegex_Exec() {
	re := tre.MustCompile(`^(a+)`, tre.Extended)
	m, err := re.Exec([]byte("aab"), 2, 0)
	fmt.Println(m, err)
	_, err = re.Exec([]byte("aab"), 2, tre.NotBOL)
	fmt.Println(err)
	// Output:
	// [{0 2} {0 2}] <nil>
	// No match
}

// ExampleCompileWithConfig demonstrates custom configuration.
func ExampleCompileWithConfig() {
	config := tre.DefaultConfig()
	config.EnablePrefilter = false

	re, err := tre.CompileWithConfig("hello|world", tre.Extended, config)
	if err != nil {
		panic(err)
	}

	fmt.Println(re.FindStringIndex("say world"))
	// Output: [4 9]
}

// ExampleRegcomp demonstrates the C-style interface.
func ExampleRegcomp() {
	var preg tre.Preg
	if code := tre.Regcomp(&preg, `^\([a-z]*\)=\(.*\)$`, 0); code != tre.REG_OK {
		fmt.Println(tre.Regerror(code, &preg))
		return
	}
	defer tre.Regfree(&preg)

	pmatch := make([]tre.Regmatch, preg.Nsub+1)
	if tre.Regexec(&preg, "key=value", len(pmatch), pmatch, 0) == tre.REG_OK {
		fmt.Println(pmatch)
	}
	// Output: [{0 9} {0 3} {4 9}]
}

// ExampleQuoteMeta demonstrates literal escaping.
func ExampleQuoteMeta() {
	quoted := tre.QuoteMeta("1+1=(2)")
	fmt.Println(quoted)
	fmt.Println(tre.MustCompile(quoted, 0).MatchString("so 1+1=(2)!"))
	fmt.Println(tre.MustCompile(quoted, tre.Extended).MatchString("so 1+1=(2)!"))
	// Output:
	// 1[+]1=[(]2[)]
	// true
	// true
}
