package config

import (
	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/schedule"
)

// BuildOptions converts parsed configuration into Watcher options.
//
// The caller appends its own logger and notifier options.
func BuildOptions(cfg *Config) ([]slotwatch.Option, error) {
	month, day, err := parseCutoff(cfg.Rules.Cutoff)
	if err != nil {
		return nil, err
	}

	rules := schedule.Rules{
		Cost:        *cfg.Rules.Cost,
		CutoffMonth: month,
		CutoffDay:   day,
		FullMarker:  cfg.Rules.FullMarker,
	}

	source := slotwatch.Source{
		URL:     cfg.Source.URL,
		Headers: copyMap(cfg.Source.Headers),
		Query:   copyMap(cfg.Source.Query),
		Timeout: cfg.Source.Timeout.Duration(),
	}

	return []slotwatch.Option{
		slotwatch.WithInterval(cfg.Interval.Duration()),
		slotwatch.WithSource(source),
		slotwatch.WithRules(rules),
		slotwatch.WithPushPlus(slotwatch.PushPlus{
			URL:         cfg.PushPlus.URL,
			Token:       cfg.PushPlus.Token,
			TitleSuffix: cfg.PushPlus.TitleSuffix,
			Timeout:     cfg.PushPlus.Timeout.Duration(),
		}),
		slotwatch.WithStatusPort(cfg.StatusPort),
	}, nil
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
