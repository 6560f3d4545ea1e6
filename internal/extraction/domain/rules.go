package extraction

// ConditionRule selects rows by their redispatch/condition code. With a
// non-empty Include set only those codes survive; Exclude then removes
// codes from whatever Include kept. The zero rule keeps every row.
type ConditionRule struct {
	Include []string
	Exclude []string
}

// Matches reports whether a condition code passes the rule.
func (r ConditionRule) Matches(code string) bool {
	for _, excluded := range r.Exclude {
		if code == excluded {
			return false
		}
	}
	if len(r.Include) == 0 {
		return true
	}
	for _, included := range r.Include {
		if code == included {
			return true
		}
	}
	return false
}

// IsZero reports whether the rule filters nothing.
func (r ConditionRule) IsZero() bool {
	return len(r.Include) == 0 && len(r.Exclude) == 0
}

type ruleKey struct {
	sheet  int
	market string
}

// RuleTable is the declarative condition-code rule set, keyed by (sheet id,
// market name) with per-sheet defaults. Several markets share a sheet but
// diverge on condition code, so the market key is part of the lookup.
type RuleTable struct {
	exact    map[ruleKey]ConditionRule
	defaults map[int]ConditionRule
}

// NewRuleTable returns an empty table.
func NewRuleTable() *RuleTable {
	return &RuleTable{
		exact:    make(map[ruleKey]ConditionRule),
		defaults: make(map[int]ConditionRule),
	}
}

// Add registers a rule for a (sheet, market) pair.
func (t *RuleTable) Add(sheetID int, market string, rule ConditionRule) {
	t.exact[ruleKey{sheet: sheetID, market: market}] = rule
}

// AddDefault registers the fallback rule for a sheet, applied to markets
// without an exact entry.
func (t *RuleTable) AddDefault(sheetID int, rule ConditionRule) {
	t.defaults[sheetID] = rule
}

// Lookup resolves the rule for a (sheet, market) pair. Markets and sheets
// without any entry get the zero rule, which keeps all rows.
func (t *RuleTable) Lookup(sheetID int, market string) ConditionRule {
	if t == nil {
		return ConditionRule{}
	}
	if rule, ok := t.exact[ruleKey{sheet: sheetID, market: market}]; ok {
		return rule
	}
	return t.defaults[sheetID]
}

// Len returns the number of registered rules, defaults included.
func (t *RuleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.exact) + len(t.defaults)
}
