// Package automaton implements an Aho-Corasick automaton over runes.
// An Automaton is immutable once Build returns and may be searched from any
// number of goroutines at the same time.
package automaton

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidPattern = errors.New("invalid pattern")
)

type node struct {
	children map[rune]*node
	fail     *node // set once during Build, read-only afterwards
	output   []int // own pattern indexes followed by those inherited through fail
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Automaton is a trie with failure links and aggregated output sets.
type Automaton struct {
	root     *node
	patterns []string
	lengths  []int // rune length per pattern
	nodes    int
}

// Match is a single pattern occurrence in the searched text.
// Start and End are inclusive rune offsets.
type Match struct {
	Start   int
	End     int
	Pattern int
}

// Build inserts every pattern into a trie and computes failure links.
// Pattern indexes follow the order of patterns. Duplicates are allowed; an
// empty pattern fails with ErrInvalidPattern.
func Build(patterns []string) (*Automaton, error) {
	a := &Automaton{
		root:     newNode(),
		patterns: make([]string, len(patterns)),
		lengths:  make([]int, len(patterns)),
		nodes:    1,
	}
	copy(a.patterns, patterns)

	for i, p := range a.patterns {
		if p == "" {
			return nil, errors.Wrapf(ErrInvalidPattern, "pattern %d is empty", i)
		}
		a.insert(p, i)
	}
	a.link()
	return a, nil
}

func (a *Automaton) insert(pattern string, index int) {
	cur := a.root
	n := 0
	for _, r := range pattern {
		next, ok := cur.children[r]
		if !ok {
			next = newNode()
			cur.children[r] = next
			a.nodes++
		}
		cur = next
		n++
	}
	cur.output = append(cur.output, index)
	a.lengths[index] = n
}

// link assigns failure links breadth-first. A node's failure target is always
// shallower, so its output is final by the time the node is dequeued.
func (a *Automaton) link() {
	queue := make([]*node, 0, len(a.root.children))
	for _, child := range a.root.children {
		child.fail = a.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for r, child := range cur.children {
			f := cur.fail
			for f != nil {
				if _, ok := f.children[r]; ok {
					break
				}
				f = f.fail
			}

			if f == nil {
				child.fail = a.root
			} else {
				child.fail = f.children[r]
				child.output = append(child.output, child.fail.output...)
			}
			queue = append(queue, child)
		}
	}
}

// Search scans text once and returns every occurrence of every pattern,
// ordered by end offset.
func (a *Automaton) Search(text string) []Match {
	var matches []Match
	cur := a.root

	i := 0
	for _, r := range text {
		for cur != a.root {
			if _, ok := cur.children[r]; ok {
				break
			}
			cur = cur.fail
		}

		if next, ok := cur.children[r]; ok {
			cur = next
			for _, idx := range cur.output {
				matches = append(matches, Match{
					Start:   i - a.lengths[idx] + 1,
					End:     i,
					Pattern: idx,
				})
			}
		}
		i++
	}
	return matches
}

// Pattern returns the pattern string for a match index.
func (a *Automaton) Pattern(idx int) string {
	if idx < 0 || idx >= len(a.patterns) {
		return ""
	}
	return a.patterns[idx]
}

// PatternCount returns the number of patterns the automaton was built from.
func (a *Automaton) PatternCount() int {
	return len(a.patterns)
}

// NodeCount returns the number of trie nodes including the root.
func (a *Automaton) NodeCount() int {
	return a.nodes
}
