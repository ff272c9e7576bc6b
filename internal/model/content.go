package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// ContentMatch is a state in the automaton compiled from a content
// expression. Each state knows which node types may come next and whether
// the content may end there.
type ContentMatch struct {
	validEnd bool
	next     []matchEdge
}

type matchEdge struct {
	typ  *NodeType
	next *ContentMatch
}

// emptyMatch is the match for an empty content expression. Node types using
// it are leaves.
var emptyMatch = &ContentMatch{validEnd: true}

// ValidEnd reports whether the content may end in this state.
func (m *ContentMatch) ValidEnd() bool { return m.validEnd }

// EdgeCount returns the number of outgoing transitions.
func (m *ContentMatch) EdgeCount() int { return len(m.next) }

// Edge returns the i-th outgoing transition.
func (m *ContentMatch) Edge(i int) (*NodeType, *ContentMatch) {
	e := m.next[i]
	return e.typ, e.next
}

// MatchType returns the state after a node of type t, or nil if t is not
// allowed here.
func (m *ContentMatch) MatchType(t *NodeType) *ContentMatch {
	for _, e := range m.next {
		if e.typ == t {
			return e.next
		}
	}
	return nil
}

// MatchFragment matches the children of frag in [start, end) and returns the
// resulting state, or nil if they do not match.
func (m *ContentMatch) MatchFragment(frag Fragment, start, end int) *ContentMatch {
	cur := m
	for i := start; cur != nil && i < end; i++ {
		cur = cur.MatchType(frag.Child(i).Type())
	}
	return cur
}

// InlineContent reports whether this state expects inline content.
func (m *ContentMatch) InlineContent() bool {
	return len(m.next) != 0 && m.next[0].typ.IsInline()
}

// DefaultType returns the first type that may come next and can be created
// without input, or nil.
func (m *ContentMatch) DefaultType() *NodeType {
	for _, e := range m.next {
		if !e.typ.IsText() && !e.typ.HasRequiredAttrs() {
			return e.typ
		}
	}
	return nil
}

// Compatible reports whether the two states share a possible next type.
func (m *ContentMatch) Compatible(other *ContentMatch) bool {
	for _, a := range m.next {
		for _, b := range other.next {
			if a.typ == b.typ {
				return true
			}
		}
	}
	return false
}

func (m *ContentMatch) String() string {
	var seen []*ContentMatch
	var scan func(*ContentMatch)
	scan = func(s *ContentMatch) {
		seen = append(seen, s)
		for _, e := range s.next {
			if !slices.Contains(seen, e.next) {
				scan(e.next)
			}
		}
	}
	scan(m)

	var b strings.Builder
	for i, s := range seen {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i))
		if s.validEnd {
			b.WriteByte('*')
		}
		b.WriteByte(' ')
		for j, e := range s.next {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s->%d", e.typ.name, slices.Index(seen, e.next))
		}
	}
	return b.String()
}

// Content expression grammar:
//
//	expr     = seq ("|" seq)*
//	seq      = subscript+
//	subscript = atom ("+" | "*" | "?" | "{" n ["," [m]] "}")*
//	atom     = name | group | "(" expr ")"

type exprKind uint8

const (
	exprName exprKind = iota
	exprChoice
	exprSeq
	exprPlus
	exprStar
	exprOpt
	exprRange
)

type expr struct {
	kind  exprKind
	typ   *NodeType
	exprs []*expr
	expr  *expr
	min   int
	max   int // -1 for unbounded
}

type tokenStream struct {
	source string
	tokens []string
	pos    int
	types  map[string]*NodeType
	order  []*NodeType
	inline int // 0 unknown, 1 inline, 2 block
}

func isWordRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func tokenize(s string) []string {
	var tokens []string
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		default:
			tokens = append(tokens, string(r))
			i++
		}
	}
	return tokens
}

func (s *tokenStream) next() string {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	return ""
}

func (s *tokenStream) eat(tok string) bool {
	if s.next() == tok {
		s.pos++
		return true
	}
	return false
}

func (s *tokenStream) err(format string, args ...any) error {
	return &SchemaValidationError{
		Msg: fmt.Sprintf(format, args...) + " (in content expression '" + s.source + "')",
	}
}

// parseContentMatch compiles a content expression into its start state.
func parseContentMatch(source string, types map[string]*NodeType, order []*NodeType) (*ContentMatch, error) {
	stream := &tokenStream{source: source, tokens: tokenize(source), types: types, order: order}
	if stream.next() == "" {
		return emptyMatch, nil
	}
	e, err := stream.parseExpr()
	if err != nil {
		return nil, err
	}
	if stream.next() != "" {
		return nil, stream.err("unexpected trailing text")
	}
	match := dfa(nfa(e))
	if err := checkForDeadEnds(match, stream); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *tokenStream) parseExpr() (*expr, error) {
	var exprs []*expr
	for {
		e, err := s.parseSeq()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !s.eat("|") {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &expr{kind: exprChoice, exprs: exprs}, nil
}

func (s *tokenStream) parseSeq() (*expr, error) {
	var exprs []*expr
	for {
		e, err := s.parseSubscript()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if n := s.next(); n == "" || n == ")" || n == "|" {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &expr{kind: exprSeq, exprs: exprs}, nil
}

func (s *tokenStream) parseSubscript() (*expr, error) {
	e, err := s.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case s.eat("+"):
			e = &expr{kind: exprPlus, expr: e}
		case s.eat("*"):
			e = &expr{kind: exprStar, expr: e}
		case s.eat("?"):
			e = &expr{kind: exprOpt, expr: e}
		case s.eat("{"):
			e, err = s.parseRange(e)
			if err != nil {
				return nil, err
			}
		default:
			return e, nil
		}
	}
}

func (s *tokenStream) parseNum() (int, error) {
	n, err := strconv.Atoi(s.next())
	if err != nil || n < 0 {
		return 0, s.err("expected number, got '%s'", s.next())
	}
	s.pos++
	return n, nil
}

func (s *tokenStream) parseRange(inner *expr) (*expr, error) {
	lo, err := s.parseNum()
	if err != nil {
		return nil, err
	}
	hi := lo
	if s.eat(",") {
		if s.next() != "}" {
			if hi, err = s.parseNum(); err != nil {
				return nil, err
			}
		} else {
			hi = -1
		}
	}
	if !s.eat("}") {
		return nil, s.err("unclosed braced range")
	}
	if hi != -1 && hi < lo {
		return nil, s.err("invalid range {%d,%d}", lo, hi)
	}
	return &expr{kind: exprRange, expr: inner, min: lo, max: hi}, nil
}

func (s *tokenStream) resolveName(name string) ([]*NodeType, error) {
	if t, ok := s.types[name]; ok {
		return []*NodeType{t}, nil
	}
	var out []*NodeType
	for _, t := range s.order {
		if slices.Contains(t.groups, name) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, s.err("no node type or group '%s' found", name)
	}
	return out, nil
}

func (s *tokenStream) parseAtom() (*expr, error) {
	if s.eat("(") {
		e, err := s.parseExpr()
		if err != nil {
			return nil, err
		}
		if !s.eat(")") {
			return nil, s.err("missing closing paren")
		}
		return e, nil
	}
	tok := s.next()
	if tok == "" || !isWordRune([]rune(tok)[0]) {
		return nil, s.err("unexpected token '%s'", tok)
	}
	types, err := s.resolveName(tok)
	if err != nil {
		return nil, err
	}
	exprs := make([]*expr, 0, len(types))
	for _, t := range types {
		mode := 2
		if t.IsInline() {
			mode = 1
		}
		if s.inline == 0 {
			s.inline = mode
		} else if s.inline != mode {
			return nil, s.err("mixing inline and block content")
		}
		exprs = append(exprs, &expr{kind: exprName, typ: t})
	}
	s.pos++
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &expr{kind: exprChoice, exprs: exprs}, nil
}

// nfaEdge is a transition in the intermediate automaton. A nil term is an
// epsilon transition.
type nfaEdge struct {
	term *NodeType
	to   int
}

// nfa builds a non-deterministic automaton for e. State 0 is the start and
// the last state is the only accepting one.
func nfa(e *expr) [][]*nfaEdge {
	states := [][]*nfaEdge{nil}
	node := func() int {
		states = append(states, nil)
		return len(states) - 1
	}
	edge := func(from, to int, term *NodeType) *nfaEdge {
		ed := &nfaEdge{term: term, to: to}
		states[from] = append(states[from], ed)
		return ed
	}
	connect := func(edges []*nfaEdge, to int) {
		for _, ed := range edges {
			ed.to = to
		}
	}

	var compile func(e *expr, from int) []*nfaEdge
	compile = func(e *expr, from int) []*nfaEdge {
		switch e.kind {
		case exprChoice:
			var out []*nfaEdge
			for _, sub := range e.exprs {
				out = append(out, compile(sub, from)...)
			}
			return out
		case exprSeq:
			for i := 0; ; i++ {
				next := compile(e.exprs[i], from)
				if i == len(e.exprs)-1 {
					return next
				}
				from = node()
				connect(next, from)
			}
		case exprStar:
			loop := node()
			edge(from, loop, nil)
			connect(compile(e.expr, loop), loop)
			return []*nfaEdge{edge(loop, -1, nil)}
		case exprPlus:
			loop := node()
			connect(compile(e.expr, from), loop)
			connect(compile(e.expr, loop), loop)
			return []*nfaEdge{edge(loop, -1, nil)}
		case exprOpt:
			return append([]*nfaEdge{edge(from, -1, nil)}, compile(e.expr, from)...)
		case exprRange:
			cur := from
			for i := 0; i < e.min; i++ {
				next := node()
				connect(compile(e.expr, cur), next)
				cur = next
			}
			if e.max == -1 {
				connect(compile(e.expr, cur), cur)
			} else {
				for i := e.min; i < e.max; i++ {
					next := node()
					edge(cur, next, nil)
					connect(compile(e.expr, cur), next)
					cur = next
				}
			}
			return []*nfaEdge{edge(cur, -1, nil)}
		default:
			return []*nfaEdge{edge(from, -1, e.typ)}
		}
	}

	connect(compile(e, 0), node())
	return states
}

// nullFrom returns the sorted set of states reachable from node through
// epsilon transitions.
func nullFrom(states [][]*nfaEdge, node int) []int {
	var result []int
	var scan func(n int)
	scan = func(n int) {
		edges := states[n]
		if len(edges) == 1 && edges[0].term == nil {
			scan(edges[0].to)
			return
		}
		result = append(result, n)
		for _, ed := range edges {
			if ed.term == nil && !slices.Contains(result, ed.to) {
				scan(ed.to)
			}
		}
	}
	scan(node)
	slices.Sort(result)
	return result
}

func stateKey(set []int) string {
	parts := make([]string, len(set))
	for i, n := range set {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// dfa converts the automaton into deterministic ContentMatch states using
// the subset construction.
func dfa(states [][]*nfaEdge) *ContentMatch {
	labeled := make(map[string]*ContentMatch)
	final := len(states) - 1

	type out struct {
		term *NodeType
		set  []int
	}

	var explore func(set []int) *ContentMatch
	explore = func(set []int) *ContentMatch {
		var outs []*out
		for _, n := range set {
			for _, ed := range states[n] {
				if ed.term == nil {
					continue
				}
				var o *out
				for _, cand := range outs {
					if cand.term == ed.term {
						o = cand
						break
					}
				}
				for _, target := range nullFrom(states, ed.to) {
					if o == nil {
						o = &out{term: ed.term}
						outs = append(outs, o)
					}
					if !slices.Contains(o.set, target) {
						o.set = append(o.set, target)
					}
				}
			}
		}

		state := &ContentMatch{validEnd: slices.Contains(set, final)}
		labeled[stateKey(set)] = state
		for _, o := range outs {
			slices.Sort(o.set)
			next, ok := labeled[stateKey(o.set)]
			if !ok {
				next = explore(o.set)
			}
			state.next = append(state.next, matchEdge{typ: o.term, next: next})
		}
		return state
	}

	return explore(nullFrom(states, 0))
}

// checkForDeadEnds rejects automata with a required position that can only
// be filled by types that cannot be generated without input.
func checkForDeadEnds(start *ContentMatch, stream *tokenStream) error {
	work := []*ContentMatch{start}
	for i := 0; i < len(work); i++ {
		state := work[i]
		dead := !state.validEnd
		names := make([]string, 0, len(state.next))
		for _, e := range state.next {
			names = append(names, e.typ.name)
			if dead && !(e.typ.IsText() || e.typ.HasRequiredAttrs()) {
				dead = false
			}
			if !slices.Contains(work, e.next) {
				work = append(work, e.next)
			}
		}
		if dead {
			return stream.err("only non-generatable nodes (%s) in a required position", strings.Join(names, ", "))
		}
	}
	return nil
}
