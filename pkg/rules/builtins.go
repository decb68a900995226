package rules

import (
	"fmt"
	"strings"

	"github.com/chazu/sewcustom/pkg/drawing"
	"github.com/chazu/sewcustom/pkg/stitch"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites policy source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols.
//  2. kebab-case identifiers become snake_case (skip-color -> skip_color);
//     zygomys reads a hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '"':
			j := i + 1
			for j < len(b) && b[j] != '"' {
				if b[j] == '\\' && j+1 < len(b) {
					j++
				}
				j++
			}
			if j < len(b) {
				j++
			}
			out = append(out, b[i:j]...)
			i = j

		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}

		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// isKW returns the keyword name if s is a preprocessed keyword string.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toColor extracts a color string and normalizes it to #rrggbb.
func toColor(s zygo.Sexp) (string, error) {
	str, err := toKeywordString(s)
	if err != nil {
		return "", err
	}
	c, err := drawing.ParseColor(str)
	if err != nil {
		return "", err
	}
	return drawing.Hex(c), nil
}

// toWidth extracts a non-negative width in mm.
func toWidth(s zygo.Sexp) (float64, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("width must not be negative, got %g", f)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the policy builtins. Each builtin mutates p and
// returns null, so scripts are evaluated purely for effect.
func registerBuiltins(env *zygo.Zlisp, p *Policy) {

	// (satin-threshold 1.2)
	env.AddFunction("satin_threshold", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("satin-threshold requires exactly 1 argument, got %d", len(args))
		}
		w, err := toWidth(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("satin-threshold: %w", err)
		}
		p.SatinThreshold = w
		return zygo.SexpNull, nil
	})

	// (fill-threshold 6)
	env.AddFunction("fill_threshold", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("fill-threshold requires exactly 1 argument, got %d", len(args))
		}
		w, err := toWidth(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fill-threshold: %w", err)
		}
		p.FillThreshold = w
		return zygo.SexpNull, nil
	})

	// (skip-color "#eeeeee")
	env.AddFunction("skip_color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("skip-color requires at least one color")
		}
		for _, a := range args {
			c, err := toColor(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skip-color: %w", err)
			}
			p.SkipColors = append(p.SkipColors, c)
		}
		return zygo.SexpNull, nil
	})

	// (clear-skip-colors)
	env.AddFunction("clear_skip_colors", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p.SkipColors = nil
		return zygo.SexpNull, nil
	})

	// (rule :color "#ff0000" :min-width 0 :max-width 3 :stitch :satin)
	env.AddFunction("rule", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("rule: unexpected positional argument %s", pa.positional[0].SexpString(nil))
		}

		v, ok := pa.kw["stitch"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("rule requires :stitch")
		}
		typeName, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rule: stitch: %w", err)
		}
		typ, err := stitch.ParseType(typeName)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rule: %w", err)
		}
		r := Rule{Stitch: typ}

		if v, ok := pa.kw["color"]; ok {
			c, err := toColor(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rule: color: %w", err)
			}
			r.Color = c
		}
		if v, ok := pa.kw["min-width"]; ok {
			w, err := toWidth(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rule: min-width: %w", err)
			}
			r.MinWidth = w
		}
		if v, ok := pa.kw["max-width"]; ok {
			w, err := toWidth(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rule: max-width: %w", err)
			}
			r.MaxWidth = w
		}
		if r.MaxWidth > 0 && r.MaxWidth <= r.MinWidth {
			return zygo.SexpNull, fmt.Errorf("rule: max-width %g must exceed min-width %g", r.MaxWidth, r.MinWidth)
		}

		p.Rules = append(p.Rules, r)
		return zygo.SexpNull, nil
	})
}
