// Command fakeapi runs a mock collaborator service for developing the viewer
// without plant hardware. It serves a sparse set of monitoring points with
// drifting readings and keeps saved viewpoints in memory.
package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
)

type point struct {
	PointID      string  `json:"point_id"`
	Name         string  `json:"name"`
	CurrentValue float64 `json:"current_value"`
	Unit         string  `json:"unit"`
	AlertLevel   int     `json:"alert_level"`
	TrendType    string  `json:"trend_type"`
}

type detail struct {
	PointID      string    `json:"point_id"`
	Name         string    `json:"name"`
	CurrentValue float64   `json:"current_value"`
	Unit         string    `json:"unit"`
	AlertLevel   int       `json:"alert_level"`
	TrendType    string    `json:"trend_type"`
	UpdatedAt    string    `json:"updated_at"`
	Readings     []reading `json:"readings"`
}

type reading struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

type viewpoint struct {
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
}

type server struct {
	mu         sync.Mutex
	start      time.Time
	viewpoints map[string]viewpoint
}

// Sparse on purpose: the viewer has to interpolate the gaps.
var pointIDs = []string{"S1", "S2", "S7", "S12", "S15", "S23", "S30"}

func main() {
	addr := flag.String("addr", ":8780", "listen address")
	flag.Parse()

	s := &server{
		start:      time.Now(),
		viewpoints: make(map[string]viewpoint),
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/points", s.handlePoints(false))
	r.Get("/temperature/points", s.handlePoints(true))
	r.Get("/point/{id}", s.handleDetail(false))
	r.Get("/temperature/data/{id}", s.handleDetail(true))
	r.Get("/viewpoints", s.handleViewpoints)
	r.Post("/viewpoints", s.handleSaveViewpoint)

	log.Printf("fakeapi listening on %s", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatal(err)
	}
}

func (s *server) handlePoints(temperature bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		points := make([]point, 0, len(pointIDs))
		for i, id := range pointIDs {
			points = append(points, s.pointFor(id, i, temperature))
		}
		// Wrapped shape, matching the production deployment.
		writeJSON(w, map[string]interface{}{"data": points})
	}
}

func (s *server) handleDetail(temperature bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		idx := -1
		for i, known := range pointIDs {
			if known == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			http.NotFound(w, r)
			return
		}

		p := s.pointFor(id, idx, temperature)
		readings := make([]reading, 0, 12)
		now := time.Now()
		for i := 11; i >= 0; i-- {
			ts := now.Add(-time.Duration(i) * 5 * time.Minute)
			readings = append(readings, reading{
				Timestamp: ts.Format(time.RFC3339),
				Value:     p.CurrentValue + rand.Float64()*2 - 1,
			})
		}

		writeJSON(w, detail{
			PointID:      p.PointID,
			Name:         p.Name,
			CurrentValue: p.CurrentValue,
			Unit:         p.Unit,
			AlertLevel:   p.AlertLevel,
			TrendType:    p.TrendType,
			UpdatedAt:    now.Format(time.RFC3339),
			Readings:     readings,
		})
	}
}

// pointFor synthesizes a slowly drifting reading so the UI has something to
// watch.
func (s *server) pointFor(id string, idx int, temperature bool) point {
	t := time.Since(s.start).Seconds()
	base := 40.0 + float64(idx)*7
	unit := "%"
	name := "Flow " + id
	if temperature {
		base = 55.0 + float64(idx)*12
		unit = "C"
		name = "Temp " + id
	}
	value := base + 8*math.Sin(t/30+float64(idx))

	alert := 0
	trend := "steady"
	switch {
	case value > base+6:
		alert = 2
		trend = "rising"
	case value > base+3:
		alert = 1
		trend = "rising"
	case value < base-3:
		trend = "falling"
	}

	return point{
		PointID:      id,
		Name:         name,
		CurrentValue: math.Round(value*10) / 10,
		Unit:         unit,
		AlertLevel:   alert,
		TrendType:    trend,
	}
}

func (s *server) handleViewpoints(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.viewpoints)
}

func (s *server) handleSaveViewpoint(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PointID  string     `json:"point_id"`
		Position [3]float64 `json:"position"`
		Target   [3]float64 `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.PointID == "" {
		http.Error(w, "bad viewpoint payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.viewpoints[payload.PointID] = viewpoint{
		Position: payload.Position,
		Target:   payload.Target,
	}
	s.mu.Unlock()

	log.Printf("saved viewpoint for %s", payload.PointID)
	w.WriteHeader(http.StatusCreated)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
