// Package featureflags evaluates opt-in policies from a FEATURE_FLAGS string
// such as "strict_threads=on,comment_cache=25%".
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// StrictThreads makes a reply's parent comment required to exist on the same post.
	StrictThreads = "strict_threads"
	// ThreadCache serves comment thread order through the Redis cache.
	// Author names are still resolved per request.
	ThreadCache = "thread_cache"
)

type ruleKind int

const (
	ruleOff ruleKind = iota
	ruleOn
	rulePercent
)

type rule struct {
	kind ruleKind
	pct  int
	raw  string
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{kind: ruleOn, raw: value}, true
	case "off", "false", "0":
		return rule{kind: ruleOff, raw: value}, true
	}
	pctRaw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{}, false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return rule{}, false
	}
	switch {
	case pct <= 0:
		return rule{kind: ruleOff, raw: value}, true
	case pct >= 100:
		return rule{kind: ruleOn, raw: value}, true
	}
	return rule{kind: rulePercent, pct: pct, raw: value}, true
}

// Manager holds parsed flag rules. It is immutable after construction.
type Manager struct {
	rules map[string]rule
}

// NewManager parses a comma-separated key=value list. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			rules[key] = r
		}
	}
	return &Manager{rules: rules}
}

// Enabled reports whether name is on for the given subject (a post or user id).
// Percentage rollouts bucket the subject deterministically; subject 0 never
// falls into a partial rollout.
func (m *Manager) Enabled(name string, subject uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	switch r.kind {
	case ruleOn:
		return true
	case rulePercent:
		return subject != 0 && bucket(name, subject) < r.pct
	}
	return false
}

// Raw returns the configured values keyed by flag name. A nil Manager has
// no flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Snapshot evaluates every configured flag for one subject.
func (m *Manager) Snapshot(subject uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, subject)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, subject uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(subject), 10)))
	return int(h.Sum32() % 100)
}
