package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"github.com/dmitrijs2005/puffkeeper/internal/common"
)

func doseLine(name string, done bool, ts *time.Time) string {
	if !done {
		return fmt.Sprintf("%-8s pending", name+":")
	}
	if ts == nil {
		return fmt.Sprintf("%-8s taken", name+":")
	}
	return fmt.Sprintf("%-8s taken at %s", name+":", ts.Local().Format("15:04"))
}

func formatState(st *api.TrackerState) string {
	var b strings.Builder
	b.WriteString(doseLine("Morning", st.MorningCompleted, st.MorningTimestamp))
	b.WriteString("\n")
	b.WriteString(doseLine("Evening", st.EveningCompleted, st.EveningTimestamp))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Puffs left: %d", st.PuffCount)
	if st.PuffCount <= 0 {
		b.WriteString(" (refill needed)")
	}
	return b.String()
}

func formatPuff(p api.ExtraPuff) string {
	return fmt.Sprintf("%s  %s", p.ID, p.Timestamp.Local().Format("2006-01-02 15:04"))
}

func decode(raw json.RawMessage, v any) error {
	return json.Unmarshal(raw, v)
}

func formatEvent(ev api.ChangeEvent) string {
	switch ev.Table {
	case common.TableTrackerState:
		var st api.TrackerState
		if ev.Record == nil || decode(ev.Record, &st) != nil {
			return fmt.Sprintf("[state] %s", strings.ToLower(ev.Type))
		}
		return fmt.Sprintf("[state] morning=%t evening=%t puffs=%d", st.MorningCompleted, st.EveningCompleted, st.PuffCount)

	case common.TableExtraPuffs:
		var p api.ExtraPuff
		raw := ev.Record
		if raw == nil {
			raw = ev.OldRecord
		}
		if raw == nil || decode(raw, &p) != nil {
			return fmt.Sprintf("[puffs] %s", strings.ToLower(ev.Type))
		}
		switch ev.Type {
		case "INSERT":
			return fmt.Sprintf("[puffs] + %s", formatPuff(p))
		case "DELETE":
			return fmt.Sprintf("[puffs] - %s", formatPuff(p))
		default:
			return fmt.Sprintf("[puffs] ~ %s", formatPuff(p))
		}
	}

	return fmt.Sprintf("[%s] %s", ev.Table, strings.ToLower(ev.Type))
}
