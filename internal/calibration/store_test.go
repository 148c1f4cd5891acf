package calibration

import (
	"context"
	"errors"
	"testing"

	"thermal-scene/pkg/geometry"
)

type fakeRemote struct {
	viewpoints map[string]geometry.Pose
	fetchErr   error
	saveErr    error
	saved      []string
}

func (f *fakeRemote) FetchViewpoints(ctx context.Context) (map[string]geometry.Pose, error) {
	return f.viewpoints, f.fetchErr
}

func (f *fakeRemote) SaveViewpoint(ctx context.Context, id string, pose geometry.Pose) error {
	f.saved = append(f.saved, id)
	return f.saveErr
}

func TestStoreLoadMergesRemoteOverDefaults(t *testing.T) {
	remote := &fakeRemote{viewpoints: map[string]geometry.Pose{
		"S1":  {Position: geometry.NewVec3(99, 0, 0), Target: geometry.NewVec3(99, 0, -1)},
		"S15": {Position: geometry.NewVec3(7, 7, 7), Target: geometry.NewVec3(7, 0, 0)},
	}}
	s := NewStore(remote)

	changed := 0
	s.OnChange(func() { changed++ })

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if changed != 1 {
		t.Errorf("OnChange fired %d times, want 1", changed)
	}

	// Remote wins on collision.
	a, ok := s.Anchor("S1")
	if !ok {
		t.Fatal("S1 missing after load")
	}
	if a.Pose.Position.X != 99 {
		t.Errorf("S1 position = %v, want remote value", a.Pose.Position)
	}

	// New remote anchor joins the set.
	if _, ok := s.Anchor("S15"); !ok {
		t.Error("S15 missing after load")
	}
}

func TestStoreLoadFailureKeepsDefaults(t *testing.T) {
	s := NewStore(&fakeRemote{fetchErr: errors.New("boom")})
	before := s.Len()

	if err := s.Load(context.Background()); err == nil {
		t.Fatal("Load should report the fetch error")
	}
	if s.Len() != before {
		t.Errorf("anchor set changed on failed load: %d -> %d", before, s.Len())
	}
}

func TestStoreSaveIsOptimistic(t *testing.T) {
	remote := &fakeRemote{saveErr: errors.New("persist failed")}
	s := NewStore(remote)

	pose := geometry.Pose{
		Position: geometry.NewVec3(1, 2, 3),
		Target:   geometry.NewVec3(1, 0, 0),
	}
	err := s.Save(context.Background(), "S7", pose)
	if err == nil {
		t.Fatal("Save should report the remote failure")
	}

	// The failed save is reported but the local update is kept, so the
	// very next resolve reflects the new anchor.
	got := s.Resolver().Resolve("S7")
	if got == nil || got.Pose != pose {
		t.Errorf("anchor not applied locally after failed save: %+v", got)
	}
	if len(remote.saved) != 1 || remote.saved[0] != "S7" {
		t.Errorf("remote save calls = %v", remote.saved)
	}
}

func TestStoreSaveRejectsUnparseableID(t *testing.T) {
	remote := &fakeRemote{}
	s := NewStore(remote)
	if err := s.Save(context.Background(), "nope", geometry.Pose{}); err == nil {
		t.Fatal("Save should reject an id with no numeric suffix")
	}
	if len(remote.saved) != 0 {
		t.Error("rejected save must not reach the remote")
	}
}

func TestStoreAnchorsSortedByOrdinal(t *testing.T) {
	s := NewStore(&fakeRemote{})
	anchors := s.Anchors()
	for i := 1; i < len(anchors); i++ {
		if anchors[i-1].Ordinal > anchors[i].Ordinal {
			t.Fatalf("anchors not sorted: %v", anchors)
		}
	}
}
