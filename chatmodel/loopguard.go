package chatmodel

import (
	"crypto/sha256"
	"fmt"
)

// loopGuard watches the sequence of executed function calls within one
// orchestration run and trips when the tail of the sequence is a repeating
// pattern of length 1, 2, or 3 filling the whole window. It catches a
// model stuck re-requesting the same calls before the hard iteration cap
// is reached.
type loopGuard struct {
	window int
	sigs   []string
}

func newLoopGuard(window int) *loopGuard {
	return &loopGuard{window: window}
}

// callSignature computes a deterministic signature for a call
// (name + hash of arguments).
func callSignature(call FunctionCall) string {
	h := sha256.Sum256(call.Args)
	return fmt.Sprintf("%s:%x", call.Name, h[:8])
}

// observe records an executed call and reports whether the guard trips.
// A nil or zero-window guard never trips.
func (g *loopGuard) observe(call FunctionCall) bool {
	if g == nil || g.window <= 0 {
		return false
	}
	g.sigs = append(g.sigs, callSignature(call))
	if len(g.sigs) > g.window {
		g.sigs = g.sigs[len(g.sigs)-g.window:]
	}
	return g.tripped()
}

func (g *loopGuard) tripped() bool {
	if len(g.sigs) < g.window {
		return false
	}
	for patternLen := 1; patternLen <= 3; patternLen++ {
		if g.window%patternLen != 0 {
			continue
		}
		pattern := g.sigs[:patternLen]
		allMatch := true
		for i := patternLen; i < g.window && allMatch; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if g.sigs[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
		}
		if allMatch {
			return true
		}
	}
	return false
}

// pattern returns the repeating signatures for error reporting.
func (g *loopGuard) pattern() []string {
	if len(g.sigs) == 0 {
		return nil
	}
	out := make([]string, len(g.sigs))
	copy(out, g.sigs)
	return out
}
