package document

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// Character classes used for word stepping.
const (
	classSpace = iota
	classWord
	classPunct
)

// cluster is a grapheme cluster and its byte offset in the source string.
type cluster struct {
	text   string
	offset int
}

func clusters(s string) []cluster {
	var out []cluster
	offset := 0
	state := -1
	for len(s) > 0 {
		c, rest, _, next := uniseg.StepString(s, state)
		out = append(out, cluster{text: c, offset: offset})
		offset += len(c)
		s = rest
		state = next
	}
	return out
}

func classify(c string) int {
	for _, r := range c {
		switch {
		case unicode.IsSpace(r):
			return classSpace
		case r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r):
			return classWord
		default:
			return classPunct
		}
	}
	return classSpace
}

// stepBack returns how many bytes before offset one unit begins.
func stepBack(s string, offset int, unit Unit) int {
	cs := clusters(s[:offset])
	if len(cs) == 0 {
		return 0
	}
	if unit != UnitWord {
		return len(cs[len(cs)-1].text)
	}
	i := len(cs) - 1
	for i >= 0 && classify(cs[i].text) != classWord {
		i--
	}
	for i > 0 && classify(cs[i-1].text) == classWord {
		i--
	}
	if i < 0 {
		return offset
	}
	return offset - cs[i].offset
}

// stepForward returns the byte length of one unit starting at offset.
func stepForward(s string, offset int, unit Unit) int {
	rest := s[offset:]
	cs := clusters(rest)
	if len(cs) == 0 {
		return 0
	}
	if unit != UnitWord {
		return len(cs[0].text)
	}
	i := 0
	for i < len(cs) && classify(cs[i].text) != classWord {
		i++
	}
	for i < len(cs) && classify(cs[i].text) == classWord {
		i++
	}
	if i >= len(cs) {
		return len(rest)
	}
	return cs[i].offset
}
