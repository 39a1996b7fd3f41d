package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// mockSchedule holds the remaining count for each demo slot.
type mockSchedule struct {
	mu        sync.Mutex
	remaining []int
}

// StartMockHospitalServer serves a fake doctor schedule on addr.
// Remaining counts drift every request, so slots open and fill up over time.
// Call this in a goroutine before creating the Watcher.
func StartMockHospitalServer(addr string) {
	sched := &mockSchedule{remaining: []int{0, 2, 0, 1}}
	dates := []string{"03-02", "03-03", "03-05", "03-09"}

	mux := http.NewServeMux()
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		sched.mu.Lock()
		entries := make([]map[string]any, 0, len(dates))
		for i, d := range dates {
			if rand.Intn(3) == 0 {
				sched.remaining[i] = rand.Intn(4)
			}
			state := "可预约"
			if sched.remaining[i] == 0 {
				state = "号满"
			}
			entries = append(entries, map[string]any{
				"deptName":   "儿科",
				"schDate":    d,
				"startTime":  "08:00",
				"endTime":    "12:00",
				"cost":       17,
				"stateShown": state,
				"remainNo":   sched.remaining[i],
				"clinicAddr": "门诊楼3楼",
			})
		}
		sched.mu.Unlock()

		payload := []map[string]any{{
			"result":  true,
			"nowTime": time.Now().Format("2006-01-02 15:04:05"),
			"data":    entries,
		}}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock hospital server failed", "error", err)
	}
}
