package schedule

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	// nowTimeLayout accepts "2025-02-10 09:00:00" as well as unpadded fields.
	nowTimeLayout = "2006-1-2 15:4:5"

	// dateLayout accepts "2025-03-05" and "2025-3-5".
	dateLayout = "2006-1-2"
)

// Evaluator filters API payloads against a fixed set of [Rules].
//
// Evaluator holds no state between calls; Filter on identical input always
// yields identical output. It is safe for concurrent use.
type Evaluator struct {
	rules  Rules
	logger *slog.Logger
}

// NewEvaluator creates an [Evaluator]. A nil logger falls back to slog.Default.
func NewEvaluator(rules Rules, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{rules: rules, logger: logger}
}

// Rules returns the rules the evaluator applies.
func (e *Evaluator) Rules() Rules {
	return e.rules
}

// itemContext is the per-item state threaded through entry evaluation.
type itemContext struct {
	year   int
	cutoff time.Time
}

// Filter returns the slots in payload that pass every rule, in the order they
// were encountered.
func (e *Evaluator) Filter(payload any) []Slot {
	slots := []Slot{}

	items, ok := payload.([]any)
	if !ok {
		e.logger.Warn("响应数据结构异常", "type", fmt.Sprintf("%T", payload))
		return slots
	}

	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		entries, ok := item["data"].([]any)
		if !ok || !truthy(item["result"]) {
			continue
		}

		ic, err := e.newItemContext(item)
		if err != nil {
			e.logger.Warn("时间解析失败："+err.Error(), "nowTime", fmt.Sprint(item["nowTime"]))
			continue
		}

		for _, entry := range entries {
			if slot, ok := e.evaluateEntry(ic, entry); ok {
				slots = append(slots, slot)
			}
		}
	}

	return slots
}

func (e *Evaluator) newItemContext(item map[string]any) (itemContext, error) {
	raw, exists := item["nowTime"]
	if !exists {
		return itemContext{}, fmt.Errorf("missing nowTime")
	}
	s, ok := raw.(string)
	if !ok {
		return itemContext{}, fmt.Errorf("nowTime is %T, not a string", raw)
	}

	now, err := time.Parse(nowTimeLayout, s)
	if err != nil {
		return itemContext{}, fmt.Errorf("invalid nowTime %q: %w", s, err)
	}
	// time.Parse tolerates a fractional suffix after the seconds field
	if !wholeSeconds(s) {
		return itemContext{}, fmt.Errorf("invalid nowTime %q: unconverted data after seconds", s)
	}

	return itemContext{
		year:   now.Year(),
		cutoff: e.rules.Cutoff(now.Year()),
	}, nil
}

// wholeSeconds reports whether s ends in a 1-2 digit seconds field.
func wholeSeconds(s string) bool {
	tail := s[strings.LastIndexByte(s, ':')+1:]
	if len(tail) == 0 || len(tail) > 2 {
		return false
	}
	for _, c := range tail {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (e *Evaluator) evaluateEntry(ic itemContext, raw any) (Slot, bool) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return Slot{}, false
	}

	state := stringField(entry, "stateShown", "")
	if e.rules.FullMarker != "" && strings.Contains(state, e.rules.FullMarker) {
		return Slot{}, false
	}

	cost, ok := entry["cost"].(float64)
	if !ok || cost != e.rules.Cost {
		return Slot{}, false
	}

	schDate, exists := entry["schDate"]
	if !exists || !truthy(schDate) {
		return Slot{}, false
	}

	dateStr := fmt.Sprintf("%d-%s", ic.year, scalarString(schDate))
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		e.logger.Warn(fmt.Sprintf("日期格式错误：%s", scalarString(schDate)), "date", dateStr, "error", err.Error())
		return Slot{}, false
	}
	if !date.Before(ic.cutoff) {
		return Slot{}, false
	}

	return Slot{
		Department: stringField(entry, "deptName", DefaultDepartment),
		Date:       dateStr,
		TimeRange:  stringField(entry, "startTime", "") + "-" + stringField(entry, "endTime", ""),
		State:      state,
		Remaining:  intField(entry, "remainNo"),
		Address:    stringField(entry, "clinicAddr", DefaultAddress),
	}, true
}

// truthy mirrors the loose truthiness JSON producers tend to rely on.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// stringField returns entry[key] as text, or def when absent or null.
func stringField(entry map[string]any, key, def string) string {
	v, ok := entry[key]
	if !ok || v == nil {
		return def
	}
	return scalarString(v)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// intField returns entry[key] as an int, or 0 when absent or not numeric.
func intField(entry map[string]any, key string) int {
	switch t := entry[key].(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
