// Package tagging computes effective tags and statuses for leads. Automatic
// tags come from user-editable rule sets evaluated through the shared
// predicate evaluator; manual tags and status overrides are local-only
// preferences written through to the durable store the moment they change.
//
// The effective tag set is always manual ∪ auto: removing a manual tag never
// suppresses a rule that still matches, so an auto tag reappears on the next
// computation. This is the intended contract, not an accident.
package tagging

import (
	"fmt"
	"strings"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/lead"
)

// Status keys produced by the inference cascade.
const (
	StatusUrgent      = "urgent"
	StatusProgressing = "progressing"
	StatusCold        = "cold"
)

// Cascade thresholds. InferStatus documents the order they apply in.
const (
	hotScore       = 70.0
	coldScore      = 30.0
	hotProbability = 0.7
)

// Statuses lists the valid status keys, in severity order.
func Statuses() []string {
	return []string{StatusUrgent, StatusProgressing, StatusCold}
}

// Store is the slice of the durable local store the engine writes through
// to. Overrides never reach the remote persistence service.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	List(prefix string) (map[string]string, error)
	GetJSON(key string, v any) bool
	SetJSON(key string, v any) error
}

const (
	rulesKey       = "tags/rules"
	colorsKey      = "tags/colors"
	displayKey     = "tags/display"
	tagOverridePfx = "overrides/tags/"
	statusPfx      = "overrides/status/"
)

// Prefs are the tag display preferences shared by the TUI and list output.
type Prefs struct {
	ShowBadges bool `json:"showBadges"`
	BadgeLimit int  `json:"badgeLimit"`
}

// DefaultPrefs is used whenever the stored preferences are absent or corrupt.
func DefaultPrefs() Prefs {
	return Prefs{ShowBadges: true, BadgeLimit: 3}
}

// Engine owns tag rules, manual tag sets and status overrides for the
// working record set.
type Engine struct {
	store    Store
	rules    []Rule
	manual   map[string][]string
	statuses map[string]string
	colors   map[string]string
	version  uint64
}

// NewEngine loads rules and overrides from the store. Absent or corrupt
// entries fall back to defaults; the engine never fails to construct.
func NewEngine(store Store) *Engine {
	e := &Engine{
		store:    store,
		rules:    DefaultRules(),
		manual:   make(map[string][]string),
		statuses: make(map[string]string),
		colors:   make(map[string]string),
	}
	if store == nil {
		return e
	}

	var rules []Rule
	if store.GetJSON(rulesKey, &rules) && len(rules) > 0 {
		e.rules = rules
	}

	var colors map[string]string
	if store.GetJSON(colorsKey, &colors) && colors != nil {
		e.colors = colors
	}

	if entries, err := store.List(tagOverridePfx); err == nil {
		for key, raw := range entries {
			uid := strings.TrimPrefix(key, tagOverridePfx)
			var tags []string
			if jsonDecode(raw, &tags) {
				e.manual[uid] = tags
			}
		}
	}

	if entries, err := store.List(statusPfx); err == nil {
		for key, status := range entries {
			uid := strings.TrimPrefix(key, statusPfx)
			if status != "" {
				e.statuses[uid] = status
			}
		}
	}

	return e
}

// Version increments whenever rules, assignments or overrides change.
// Derived caches key off it to know when tag state is stale.
func (e *Engine) Version() uint64 {
	return e.version
}

// Rules returns the active rule set in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Rule returns the rule with the given tag ID.
func (e *Engine) Rule(id string) (Rule, bool) {
	for _, r := range e.rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// FindRule resolves a rule by ID or, failing that, by case-insensitive name.
// CLI flags accept either form.
func (e *Engine) FindRule(nameOrID string) (Rule, bool) {
	if r, ok := e.Rule(nameOrID); ok {
		return r, true
	}
	for _, r := range e.rules {
		if strings.EqualFold(r.Name, nameOrID) {
			return r, true
		}
	}
	return Rule{}, false
}

// UpsertRule adds or replaces a rule and persists the rule set.
func (e *Engine) UpsertRule(r Rule) error {
	if r.ID == "" || r.Name == "" {
		return fmt.Errorf("tag rule requires id and name")
	}

	replaced := false
	for i, existing := range e.rules {
		if existing.ID == r.ID {
			e.rules[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		e.rules = append(e.rules, r)
	}
	e.version++
	return e.persistRules()
}

// RemoveRule deletes a rule by tag ID and persists the rule set.
func (e *Engine) RemoveRule(id string) error {
	kept := e.rules[:0]
	for _, r := range e.rules {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	e.rules = kept
	e.version++
	return e.persistRules()
}

// AutoTags returns the IDs of every rule the lead currently satisfies, in
// rule order.
func (e *Engine) AutoTags(l lead.Lead) []string {
	var tags []string
	for _, r := range e.rules {
		if filter.Evaluate(l, r.Node()) {
			tags = append(tags, r.ID)
		}
	}
	return tags
}

// EffectiveTags returns manual ∪ auto for the lead: auto tags in rule order,
// then manual tags not already present in assignment order.
func (e *Engine) EffectiveTags(l lead.Lead) []string {
	tags := e.AutoTags(l)
	seen := make(map[string]struct{}, len(tags))
	for _, id := range tags {
		seen[id] = struct{}{}
	}
	for _, id := range e.manual[l.UID] {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			tags = append(tags, id)
		}
	}
	return tags
}

// HasTag reports whether the lead's effective tag set contains id.
func (e *Engine) HasTag(l lead.Lead, id string) bool {
	for _, t := range e.EffectiveTags(l) {
		if t == id {
			return true
		}
	}
	return false
}

// AssignTag adds a manual tag for the uid and writes it through immediately.
func (e *Engine) AssignTag(uid, tagID string) error {
	if uid == "" || tagID == "" {
		return fmt.Errorf("tag assignment requires uid and tag id")
	}
	for _, existing := range e.manual[uid] {
		if existing == tagID {
			return nil
		}
	}
	e.manual[uid] = append(e.manual[uid], tagID)
	e.version++
	return e.persistManual(uid)
}

// RemoveTag removes a manual tag for the uid. It has no effect on auto tags:
// a rule that still matches re-adds its tag on the next computation.
func (e *Engine) RemoveTag(uid, tagID string) error {
	tags := e.manual[uid]
	kept := tags[:0]
	for _, t := range tags {
		if t != tagID {
			kept = append(kept, t)
		}
	}
	e.version++
	if len(kept) == 0 {
		delete(e.manual, uid)
		if e.store == nil {
			return nil
		}
		return e.store.Delete(tagOverridePfx + uid)
	}
	e.manual[uid] = kept
	return e.persistManual(uid)
}

// ManualTags returns the manually assigned tags for a uid.
func (e *Engine) ManualTags(uid string) []string {
	tags := e.manual[uid]
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// EffectiveStatus returns the manual override when present, else the
// inferred status.
func (e *Engine) EffectiveStatus(l lead.Lead) string {
	if s, ok := e.statuses[l.UID]; ok && s != "" {
		return s
	}
	return InferStatus(l)
}

// OverrideStatus pins a status for the uid and writes it through.
func (e *Engine) OverrideStatus(uid, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}
	e.statuses[uid] = status
	e.version++
	if e.store == nil {
		return nil
	}
	return e.store.Set(statusPfx+uid, status)
}

// ClearStatusOverride removes the manual status for the uid, restoring
// inference.
func (e *Engine) ClearStatusOverride(uid string) error {
	delete(e.statuses, uid)
	e.version++
	if e.store == nil {
		return nil
	}
	return e.store.Delete(statusPfx + uid)
}

// StatusOverride reports the pinned status for a uid, if any.
func (e *Engine) StatusOverride(uid string) (string, bool) {
	s, ok := e.statuses[uid]
	return s, ok
}

// TagColor resolves the display color for a tag: user override, then rule
// color, then a neutral default.
func (e *Engine) TagColor(id string) string {
	if c, ok := e.colors[id]; ok && c != "" {
		return c
	}
	if r, ok := e.Rule(id); ok && r.Color != "" {
		return r.Color
	}
	return defaultTagColor
}

// SetTagColor overrides a tag's display color and persists the override map.
func (e *Engine) SetTagColor(id, color string) error {
	e.colors[id] = color
	e.version++
	if e.store == nil {
		return nil
	}
	return e.store.SetJSON(colorsKey, e.colors)
}

// Display returns the stored display preferences, falling back to defaults.
func (e *Engine) Display() Prefs {
	prefs := DefaultPrefs()
	if e.store != nil {
		var stored Prefs
		if e.store.GetJSON(displayKey, &stored) && stored.BadgeLimit > 0 {
			prefs = stored
		}
	}
	return prefs
}

// SetDisplay persists display preferences.
func (e *Engine) SetDisplay(p Prefs) error {
	if e.store == nil {
		return nil
	}
	return e.store.SetJSON(displayKey, p)
}

// InferStatus applies the fixed status cascade. The order is load-bearing:
//  1. urgent or warning SLA flag → urgent
//  2. high conversion probability or high score → progressing
//  3. low score or explicit cold marker → cold
//  4. default → progressing
func InferStatus(l lead.Lead) string {
	if v, ok := lead.Resolve(l, lead.FieldSLAState); ok {
		switch strings.ToLower(lead.Text(v)) {
		case "urgent", "warning":
			return StatusUrgent
		}
	}

	prob, hasProb := resolveNumeric(l, lead.FieldConversionProb)
	score, hasScore := resolveNumeric(l, lead.FieldLeadScore)

	if (hasProb && prob >= hotProbability) || (hasScore && score >= hotScore) {
		return StatusProgressing
	}
	if hasScore && score < coldScore {
		return StatusCold
	}
	if v, ok := lead.Resolve(l, lead.FieldColdLead); ok && lead.Truthy(v) {
		return StatusCold
	}
	return StatusProgressing
}

func resolveNumeric(l lead.Lead, key string) (float64, bool) {
	v, ok := lead.Resolve(l, key)
	if !ok {
		return 0, false
	}
	return lead.Numeric(v)
}

func (e *Engine) persistRules() error {
	if e.store == nil {
		return nil
	}
	if err := e.store.SetJSON(rulesKey, e.rules); err != nil {
		return fmt.Errorf("persist tag rules: %w", err)
	}
	return nil
}

func (e *Engine) persistManual(uid string) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.SetJSON(tagOverridePfx+uid, e.manual[uid]); err != nil {
		return fmt.Errorf("persist tags for %s: %w", uid, err)
	}
	return nil
}

func validStatus(status string) bool {
	for _, s := range Statuses() {
		if s == status {
			return true
		}
	}
	return false
}
