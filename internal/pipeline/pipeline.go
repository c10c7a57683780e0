// Package pipeline assembles the full derive chain the browse surfaces read
// from: predicate filter → quick filters → tag filter → free-text search →
// rank → window. Build always derives a complete snapshot from complete
// inputs before handing it back, so a consumer never observes a partially
// updated model; the expensive stages are memoized on input fingerprints so
// a change that only moves the window reuses the ordered set.
package pipeline

import (
	"encoding/json"
	"hash"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/ranking"
	"github.com/intakehq/intake/internal/relevance"
	"github.com/intakehq/intake/internal/search"
	"github.com/intakehq/intake/internal/tagging"
	"github.com/intakehq/intake/internal/window"
)

// Inputs is the complete state the pipeline derives from. Window.TotalCount
// is ignored; the pipeline fills it from the matched set.
type Inputs struct {
	Leads    []lead.Lead
	Filter   filter.Node
	Search   string
	Stage    string
	Owner    string
	TagIDs   []string
	Sort     ranking.Spec
	Override map[string]relevance.Score
	Window   window.Params
}

// Row is one decorated lead ready for rendering.
type Row struct {
	Lead   lead.Lead
	Status string
	Tags   []string
}

// Snapshot is one fully derived pipeline output.
type Snapshot struct {
	Ordered []Row
	Visible []Row
	Window  window.Slice
	Matched int
	Total   int
}

// Stats counts how often the memoized stages actually recomputed.
type Stats struct {
	FilterDerives int
	OrderDerives  int
}

// Pipeline carries the memo state between Build calls. It is owned by a
// single controller and is not safe for concurrent use.
type Pipeline struct {
	engine *tagging.Engine

	filterKey uint64
	filtered  []lead.Lead
	orderKey  uint64
	ordered   []Row

	stats Stats
}

// New builds a pipeline decorating rows through the given tagging engine.
func New(engine *tagging.Engine) *Pipeline {
	return &Pipeline{engine: engine}
}

// Stats returns recompute counters, used to observe memo behavior.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Build derives a snapshot for the inputs, reusing memoized intermediate
// results when their slice of the inputs is unchanged.
func (p *Pipeline) Build(in Inputs) Snapshot {
	fKey := p.filterFingerprint(in)
	if fKey != p.filterKey || p.filtered == nil {
		p.filtered = p.deriveFiltered(in)
		p.filterKey = fKey
		p.stats.FilterDerives++
	}

	oKey := p.orderFingerprint(fKey, in)
	if oKey != p.orderKey || p.ordered == nil {
		p.ordered = p.deriveOrdered(in)
		p.orderKey = oKey
		p.stats.OrderDerives++
	}

	params := in.Window
	params.TotalCount = len(p.ordered)
	slice := window.Compute(params)

	return Snapshot{
		Ordered: p.ordered,
		Visible: p.ordered[slice.Start:slice.End],
		Window:  slice,
		Matched: len(p.ordered),
		Total:   len(in.Leads),
	}
}

func (p *Pipeline) deriveFiltered(in Inputs) []lead.Lead {
	node := composeNode(in)

	matched := make([]lead.Lead, 0, len(in.Leads))
	for _, l := range in.Leads {
		if !filter.Evaluate(l, node) {
			continue
		}
		if !p.matchesTagFilter(l, in.TagIDs) {
			continue
		}
		matched = append(matched, l)
	}

	return search.FilterByTerm(in.Search, matched)
}

func (p *Pipeline) deriveOrdered(in Inputs) []Row {
	orderedLeads := ranking.Apply(p.filtered, in.Sort, in.Override)

	rows := make([]Row, len(orderedLeads))
	for i, l := range orderedLeads {
		rows[i] = Row{
			Lead:   l,
			Status: p.engine.EffectiveStatus(l),
			Tags:   p.engine.EffectiveTags(l),
		}
	}
	return rows
}

// composeNode merges the custom predicate with the quick filters into one
// ALL group.
func composeNode(in Inputs) filter.Node {
	children := []filter.Node{in.Filter}
	if s := strings.TrimSpace(in.Stage); s != "" {
		children = append(children, filter.Where(lead.FieldStage, filter.OpEquals, s))
	}
	if o := strings.TrimSpace(in.Owner); o != "" {
		children = append(children, filter.Where(lead.FieldOwner, filter.OpEquals, o))
	}
	if len(children) == 1 {
		return in.Filter
	}
	return filter.AllOf(children...)
}

// matchesTagFilter applies the tag chips: with tags selected, a lead passes
// when it carries at least one of them. An empty selection passes
// everything, mirroring the vacuous-true rule for empty predicate groups.
func (p *Pipeline) matchesTagFilter(l lead.Lead, tagIDs []string) bool {
	if len(tagIDs) == 0 {
		return true
	}
	effective := p.engine.EffectiveTags(l)
	for _, want := range tagIDs {
		for _, have := range effective {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (p *Pipeline) filterFingerprint(in Inputs) uint64 {
	h := fnv.New64a()
	for _, l := range in.Leads {
		writePart(h, l.UID)
	}
	if raw, err := json.Marshal(in.Filter); err == nil {
		h.Write(raw)
	}
	writePart(h, strings.TrimSpace(in.Search))
	writePart(h, in.Stage)
	writePart(h, in.Owner)
	for _, id := range in.TagIDs {
		writePart(h, id)
	}
	writePart(h, strconv.FormatUint(p.engine.Version(), 10))
	return h.Sum64()
}

func (p *Pipeline) orderFingerprint(filterKey uint64, in Inputs) uint64 {
	h := fnv.New64a()
	writePart(h, strconv.FormatUint(filterKey, 10))
	writePart(h, in.Sort.Key)
	writePart(h, string(in.Sort.Direction))
	writePart(h, strconv.FormatUint(p.engine.Version(), 10))

	// Map iteration order is random; hash entries in sorted uid order.
	uids := make([]string, 0, len(in.Override))
	for uid := range in.Override {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	for _, uid := range uids {
		writePart(h, uid)
		writePart(h, strconv.FormatFloat(in.Override[uid].Score, 'g', -1, 64))
	}
	return h.Sum64()
}

func writePart(h hash.Hash64, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}
