// Command calibcheck resolves a range of point ids against the current
// calibration set and prints where each would land. Useful for sanity-checking
// anchor placement without starting the viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"thermal-scene/internal/api"
	"thermal-scene/internal/calibration"
	"thermal-scene/pkg/geometry"
)

func main() {
	url := flag.String("url", "", "collaborator base URL")
	file := flag.String("file", "", "viewpoints JSON file; overrides -url")
	prefix := flag.String("prefix", "S", "point id prefix")
	from := flag.Int("from", 1, "first ordinal to resolve")
	to := flag.Int("to", 30, "last ordinal to resolve")
	flag.Parse()

	store := loadStore(*url, *file)

	fmt.Printf("%d anchors:\n", store.Len())
	for _, a := range store.Anchors() {
		fmt.Printf("  %-6s ordinal %-4d target (%.2f, %.2f, %.2f)\n",
			a.ID, a.Ordinal, a.Pose.Target.X, a.Pose.Target.Y, a.Pose.Target.Z)
	}

	resolver := store.Resolver()
	fmt.Println("\nresolved positions:")
	for ord := *from; ord <= *to; ord++ {
		id := fmt.Sprintf("%s%d", *prefix, ord)
		res := resolver.Resolve(id)
		if res == nil {
			fmt.Printf("  %-6s unresolvable\n", id)
			continue
		}
		kind := "interpolated"
		if _, ok := store.Anchor(id); ok {
			kind = "anchor"
		}
		fmt.Printf("  %-6s (%.2f, %.2f, %.2f)  %s\n",
			id, res.Pose.Target.X, res.Pose.Target.Y, res.Pose.Target.Z, kind)
	}
}

func loadStore(url, file string) *calibration.Store {
	if file != "" {
		store := calibration.NewStore(nil)
		store.ApplyRemote(readViewpointFile(file))
		return store
	}
	if url == "" {
		return calibration.NewStore(nil)
	}

	client := api.NewClient(url)
	store := calibration.NewStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Load(ctx); err != nil {
		log.Printf("remote calibration unavailable, using defaults: %v", err)
	}
	return store
}

// readViewpointFile decodes a saved viewpoints map, the same shape the
// service serves on GET /viewpoints.
func readViewpointFile(path string) map[string]geometry.Pose {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	var wire map[string]struct {
		Position [3]float64 `json:"position"`
		Target   [3]float64 `json:"target"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		log.Fatalf("decode %s: %v", path, err)
	}

	out := make(map[string]geometry.Pose, len(wire))
	for id, v := range wire {
		out[id] = geometry.Pose{
			Position: geometry.NewVec3(v.Position[0], v.Position[1], v.Position[2]),
			Target:   geometry.NewVec3(v.Target[0], v.Target[1], v.Target[2]),
		}
	}
	return out
}
