package peg

// MemoStrategy selects how rule results are memoized.
type MemoStrategy int

const (
	// MemoLimited keeps, for each rule, the results at its last
	// LimitedMemoSize positions.
	MemoLimited MemoStrategy = iota
	// MemoFlat keeps every (position, rule) result.
	MemoFlat
)

// LimitedMemoSize is the number of positions remembered per rule by
// MemoLimited.
const LimitedMemoSize = 10

func (s MemoStrategy) String() string {
	if s == MemoFlat {
		return "flat"
	}
	return "limited"
}

// ParseMemoStrategy reads "flat" or "limited". The empty string selects
// MemoLimited.
func ParseMemoStrategy(s string) (MemoStrategy, bool) {
	switch s {
	case "flat":
		return MemoFlat, true
	case "limited", "":
		return MemoLimited, true
	}
	return MemoLimited, false
}

type memo interface {
	get(m *Matcher, e *Expr, pos int) *parseData
	clear()
}

// Only rules are memoized: they are the only expressions reached through
// many call paths.

// Keys include the atomicity of the calling context: a result computed
// inside an atomic expression has no sub-matches to hand out elsewhere.
type memoKey struct {
	pos    int
	id     int64
	atomic bool
}

type flatMemo struct {
	table map[memoKey]*parseData
	limit int
}

func newFlatMemo(limit int) *flatMemo {
	return &flatMemo{table: make(map[memoKey]*parseData), limit: limit}
}

func (f *flatMemo) get(m *Matcher, e *Expr, pos int) *parseData {
	if e.Kind != KindRule {
		return m.parse(e, pos)
	}
	key := memoKey{pos: pos, id: e.ID, atomic: m.atomic}
	if d, ok := f.table[key]; ok {
		return d
	}
	d := m.parse(e, pos)
	if f.limit > 0 && len(f.table) >= f.limit {
		m.memoPressure(len(f.table), pos)
		f.clear()
	}
	f.table[key] = d
	return d
}

func (f *flatMemo) clear() {
	f.table = make(map[memoKey]*parseData)
}

type ring struct {
	positions [LimitedMemoSize]int
	data      [LimitedMemoSize]*parseData
	last      int
}

func newRing() *ring {
	r := &ring{}
	for i := range r.positions {
		r.positions[i] = -1
	}
	return r
}

type ringKey struct {
	rule   *Expr
	atomic bool
}

type limitedMemo struct {
	rings map[ringKey]*ring
}

func newLimitedMemo() *limitedMemo {
	return &limitedMemo{rings: make(map[ringKey]*ring)}
}

func (l *limitedMemo) get(m *Matcher, e *Expr, pos int) *parseData {
	if e.Kind != KindRule {
		return m.parse(e, pos)
	}
	key := ringKey{rule: e, atomic: m.atomic}
	r, ok := l.rings[key]
	if !ok {
		r = newRing()
		l.rings[key] = r
	}
	for i, p := range r.positions {
		if p == pos {
			return r.data[i]
		}
	}
	d := m.parse(e, pos)
	r.last = (r.last + 1) % LimitedMemoSize
	r.positions[r.last] = pos
	r.data[r.last] = d
	return d
}

func (l *limitedMemo) clear() {
	l.rings = make(map[ringKey]*ring)
}
