package tnfa

import (
	"github.com/coregx/tre/literal"
	"github.com/coregx/tre/prefilter"
	"github.com/coregx/tre/syntax"
)

// buildPrefilter extracts the prefix literals of root and wraps them in a
// prefilter. It returns nil when some match may start with a character the
// literal set does not cover.
//
// Case folding is already expanded into unions by the parser, so the
// literal set needs no flags.
func buildPrefilter(root *syntax.Node, cfg Config) prefilter.Prefilter {
	extractor := literal.New(literal.ExtractorConfig{
		MaxLiterals:   cfg.MaxLiterals,
		MaxLiteralLen: cfg.MaxLiteralLen,
		MaxClassSize:  cfg.MaxClassSize,
		MaxDepth:      100,
	})
	return prefilter.New(extractor.ExtractPrefixes(root))
}
