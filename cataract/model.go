package cataract

import "sort"

// Resource bounds enforced as hard caps (spec.md §5, §4.1).
const (
	MaxParseDepth          = 10
	MaxMediaQueries         = 1000
	MaxPropertyNameLength   = 256
	MaxPropertyValueLength  = 32768
)

// NestingStyle records whether a nested rule's selector was resolved via an
// explicit "&" substitution or an implicit parent-selector prepend.
type NestingStyle int

const (
	// NestingImplicit means the child selector had no "&" and the parent
	// selector was prepended ("{parent} {child}").
	NestingImplicit NestingStyle = iota
	// NestingExplicit means the child selector contained one or more "&"
	// that were substituted with the parent selector.
	NestingExplicit
)

// Declaration is a single "property: value" pair, optionally !important.
// Property is lowercased ASCII; Value is trimmed and never carries a
// trailing "!important" (that is split out into Important).
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule is a single-selector style rule. Selector is always a fully
// resolved, single selector — never a comma list (see SelectorListID for
// how source comma-lists are grouped back together for serialization).
type Rule struct {
	ID             uint32
	Selector       string
	Declarations   []Declaration
	ParentRuleID   *uint32
	NestingStyle   *NestingStyle
	SelectorListID *uint32
	MediaQueryID   *uint32

	specificity *uint32 // memoized lazily by Specificity()
}

// AtRule models @keyframes (Rules populated) and @font-face (Declarations
// populated), built by parseKeyframes / parseFontFace in atrules.go.
// @charset, @import, @media, @supports, @layer, @container, and @scope
// never produce an AtRule record. @page, @property, @counter-style, and unknown
// declaration-bodied at-rules are folded into ordinary Rules instead (their
// Selector is the at-rule prelude, e.g. "@property --main-color").
type AtRule struct {
	ID           uint32
	Selector     string
	Rules        []Rule        // non-nil for @keyframes
	Declarations []Declaration // non-nil for @font-face
}

// MediaQuery is a single canonicalized media condition
// ("screen", "(max-width: 768px)", "screen and (max-width: 768px)", ...).
type MediaQuery struct {
	ID         uint32
	Type       string
	Conditions *string
}

// Text reconstructs the media query's serialized form.
func (m MediaQuery) Text() string {
	if m.Conditions == nil {
		return m.Type
	}
	if m.Type == "" || m.Type == "all" {
		return *m.Conditions
	}
	return m.Type + " and " + *m.Conditions
}

// Equal reports whether two media queries have the same (type, conditions).
func (m MediaQuery) Equal(other MediaQuery) bool {
	if m.Type != other.Type {
		return false
	}
	if (m.Conditions == nil) != (other.Conditions == nil) {
		return false
	}
	return m.Conditions == nil || *m.Conditions == *other.Conditions
}

// ImportStatement records an @import occurrence. ID is the splice
// position: once resolved, the imported rules are inserted at that
// position in Stylesheet.Rules and the ID becomes meaningless (the
// resolver's post-splice renumbering pass discards it).
type ImportStatement struct {
	ID           uint32
	URL          string
	Media        *string
	MediaQueryID *uint32
	Resolved     bool
}

// Stylesheet is the owning, ID-addressed in-memory model produced by the
// parser. Rules is the sole source of truth: every other field indexes
// into it by ID (invariants I1-I7, spec.md §3).
type Stylesheet struct {
	Rules           []Rule
	AtRules         []AtRule
	MediaQueries    []MediaQuery
	Imports         []ImportStatement
	Charset         *string
	HasNesting      bool

	MediaIndex      map[string][]uint32 // media type -> sorted rule IDs
	SelectorLists   map[uint32][]uint32 // selector_list_id -> rule IDs
	MediaQueryLists map[uint32][]uint32 // media_query_list_id -> media query IDs

	opts                 ParserOptions
	nextSelectorList     uint32
	nextMediaQueryID     uint32
	nextMediaQueryListID uint32
	nextAtRuleID         uint32
	mediaIndexDirty      bool
	mediaQueryKeys       map[string]bool // dedup by (type, conditions) text
}

// NewStylesheet returns an empty stylesheet ready for AddBlock.
func NewStylesheet(opts ...Option) *Stylesheet {
	cfg := defaultOptions()
	for _, o := range opts {
		o(&cfg)
	}
	return &Stylesheet{
		MediaIndex:      make(map[string][]uint32),
		SelectorLists:   make(map[uint32][]uint32),
		MediaQueryLists: make(map[uint32][]uint32),
		mediaQueryKeys:  make(map[string]bool),
		opts:            cfg,
	}
}

// Parse is a convenience constructor: NewStylesheet().AddBlock(css).
func Parse(css string, opts ...Option) (*Stylesheet, error) {
	sheet := NewStylesheet(opts...)
	if err := sheet.AddBlock(css); err != nil {
		return nil, err
	}
	return sheet, nil
}

// Len returns the number of style rules (Size/Length/size in other APIs).
func (s *Stylesheet) Len() int { return len(s.Rules) }

// Empty reports whether the stylesheet has no style rules.
func (s *Stylesheet) Empty() bool { return len(s.Rules) == 0 }

// At returns the rule at position i ("[]" in the reference API).
func (s *Stylesheet) At(i int) *Rule {
	if i < 0 || i >= len(s.Rules) {
		return nil
	}
	return &s.Rules[i]
}

// Each iterates rules in document order.
func (s *Stylesheet) Each(fn func(r *Rule)) {
	for i := range s.Rules {
		fn(&s.Rules[i])
	}
}

// Specificity lazily computes and memoizes a rule's specificity.
func (r *Rule) Specificity() uint32 {
	if r.specificity != nil {
		return *r.specificity
	}
	v := CalculateSpecificity(r.Selector)
	r.specificity = &v
	return v
}

// MediaQueryByID resolves a rule/import's MediaQueryID to a MediaQuery.
func (s *Stylesheet) MediaQueryByID(id uint32) *MediaQuery {
	for i := range s.MediaQueries {
		if s.MediaQueries[i].ID == id {
			return &s.MediaQueries[i]
		}
	}
	return nil
}

// internMediaQuery returns the ID of an existing MediaQuery with the same
// (type, conditions), or allocates a new one, respecting MaxMediaQueries.
func (s *Stylesheet) internMediaQuery(mqType string, conditions *string) (uint32, error) {
	key := mqType + "\x00"
	if conditions != nil {
		key += *conditions
	}
	for _, mq := range s.MediaQueries {
		ck := mq.Type + "\x00"
		if mq.Conditions != nil {
			ck += *mq.Conditions
		}
		if ck == key {
			return mq.ID, nil
		}
	}
	if len(s.mediaQueryKeys) >= MaxMediaQueries {
		return 0, newParseError(ErrTooManyMediaQueries, "exceeded MAX_MEDIA_QUERIES", 0, 0)
	}
	id := s.nextMediaQueryID
	s.nextMediaQueryID++
	s.MediaQueries = append(s.MediaQueries, MediaQuery{ID: id, Type: mqType, Conditions: conditions})
	s.mediaQueryKeys[key] = true
	return id, nil
}

// rebuildMediaIndex clears and repopulates MediaIndex from Rules +
// MediaQueries + MediaQueryLists. Called lazily whenever the index is
// stale (after renumbering, splicing, or removal).
func (s *Stylesheet) rebuildMediaIndex() {
	s.MediaIndex = make(map[string][]uint32)
	for i := range s.Rules {
		r := &s.Rules[i]
		if r.MediaQueryID == nil {
			continue // base (all-media) rules are never materialized in the index
		}
		for _, typ := range s.mediaTypesFor(*r.MediaQueryID) {
			s.MediaIndex[typ] = append(s.MediaIndex[typ], r.ID)
		}
	}
	for typ := range s.MediaIndex {
		sort.Slice(s.MediaIndex[typ], func(i, j int) bool { return s.MediaIndex[typ][i] < s.MediaIndex[typ][j] })
	}
	s.mediaIndexDirty = false
}

// mediaTypesFor returns every media type a MediaQuery ID participates in,
// including sibling types from its media_query_list group ("@media screen, print").
func (s *Stylesheet) mediaTypesFor(mqID uint32) []string {
	var types []string
	seen := map[string]bool{}
	add := func(id uint32) {
		mq := s.MediaQueryByID(id)
		if mq == nil {
			return
		}
		t := mq.Type
		if t == "" {
			t = "all"
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	add(mqID)
	for _, group := range s.MediaQueryLists {
		found := false
		for _, id := range group {
			if id == mqID {
				found = true
				break
			}
		}
		if found {
			for _, id := range group {
				add(id)
			}
		}
	}
	return types
}

// ensureMediaIndex rebuilds the index if it has gone stale.
func (s *Stylesheet) ensureMediaIndex() {
	if s.mediaIndexDirty {
		s.rebuildMediaIndex()
	}
}

// renumber performs the single O(n) pass required by invariant I1 whenever
// rules are spliced or removed: it reassigns every Rule.ID to its array
// position and rewrites every cross-reference (SelectorLists, Imports'
// splice positions) through an old->new map, then marks the media index
// dirty for lazy rebuild.
func (s *Stylesheet) renumber() {
	oldToNew := make(map[uint32]uint32, len(s.Rules))
	for i := range s.Rules {
		oldToNew[s.Rules[i].ID] = uint32(i)
		s.Rules[i].ID = uint32(i)
	}

	newLists := make(map[uint32][]uint32, len(s.SelectorLists))
	for listID, ids := range s.SelectorLists {
		remapped := make([]uint32, 0, len(ids))
		for _, old := range ids {
			if nw, ok := oldToNew[old]; ok {
				remapped = append(remapped, nw)
			}
		}
		if len(remapped) > 0 {
			newLists[listID] = remapped
		}
	}
	s.SelectorLists = newLists

	for i := range s.Imports {
		if nw, ok := oldToNew[s.Imports[i].ID]; ok {
			s.Imports[i].ID = nw
		}
	}

	s.mediaIndexDirty = true
}

// RemoveAt deletes the rule at position i, renumbering IDs and rewriting
// all indices (invariant-preserving per P9).
func (s *Stylesheet) RemoveAt(i int) {
	if i < 0 || i >= len(s.Rules) {
		return
	}
	s.Rules = append(s.Rules[:i], s.Rules[i+1:]...)
	s.renumber()
}

// AppendMediaQuery always allocates a fresh MediaQuery record (no
// deduplication), for callers like the import resolver that must create
// new composed media-query records per spec.md §4.6 step 5.
func (s *Stylesheet) AppendMediaQuery(mqType string, conditions *string) uint32 {
	id := s.nextMediaQueryID
	s.nextMediaQueryID++
	s.MediaQueries = append(s.MediaQueries, MediaQuery{ID: id, Type: mqType, Conditions: conditions})
	return id
}

// InsertRulesAt splices rules into the stylesheet at array position pos,
// preserving their ID tags as-is; callers (the import resolver) are
// responsible for giving those tags values that do not collide with any
// existing rule's ID before calling Reindex. Marks the media index dirty.
func (s *Stylesheet) InsertRulesAt(pos int, rules []Rule) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.Rules) {
		pos = len(s.Rules)
	}
	merged := make([]Rule, 0, len(s.Rules)+len(rules))
	merged = append(merged, s.Rules[:pos]...)
	merged = append(merged, rules...)
	merged = append(merged, s.Rules[pos:]...)
	s.Rules = merged
	s.mediaIndexDirty = true
}

// AppendSelectorList reserves a fresh selector_list_id and records its
// rule ID membership, for merging an already-grouped selector list from
// another stylesheet (the import resolver).
func (s *Stylesheet) AppendSelectorList(ruleIDs []uint32) uint32 {
	id := s.nextSelectorList
	s.nextSelectorList++
	s.SelectorLists[id] = append([]uint32{}, ruleIDs...)
	return id
}

// Reindex performs the post-splice renumbering pass (spec.md §3
// Lifecycle, §4.6 step 7): renumbers every rule/import ID to its new
// array position and rewrites selector_lists references, then rebuilds
// the media index.
func (s *Stylesheet) Reindex() {
	s.renumber()
	s.rebuildMediaIndex()
}
