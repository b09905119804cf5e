package producer

import "testing"

func TestCache(t *testing.T) {
	c := NewCache()
	if !c.ShouldSend(AssetMesh, 1) {
		t.Fatal("fresh cache refused mesh 1")
	}
	c.MarkSent(AssetMesh, 1)
	if c.ShouldSend(AssetMesh, 1) {
		t.Error("mesh 1 offered twice")
	}
	if !c.ShouldSend(AssetImage, 1) {
		t.Error("mesh and image ids share a set")
	}
	c.MarkSent(AssetMesh, 1)
	if c.Len(AssetMesh) != 1 || c.Len(AssetImage) != 0 {
		t.Errorf("Len = %d/%d, want 1/0", c.Len(AssetMesh), c.Len(AssetImage))
	}

	c.Reset()
	if !c.ShouldSend(AssetMesh, 1) || c.Len(AssetMesh) != 0 {
		t.Error("Reset kept entries")
	}
}

func TestSizeStats(t *testing.T) {
	s := NewSizeStats(3)
	if s.Average() != 0 || s.Max() != 0 {
		t.Fatal("empty stats not zero")
	}
	for _, v := range []int{10, 40, 20} {
		s.Add(v)
	}
	if s.Count() != 3 || s.Average() != 70.0/3 || s.Max() != 40 {
		t.Errorf("count/avg/max = %d/%v/%d", s.Count(), s.Average(), s.Max())
	}
	// Evicts 10, then 40.
	s.Add(5)
	s.Add(6)
	if s.Count() != 3 || s.Average() != 31.0/3 || s.Max() != 20 {
		t.Errorf("after eviction count/avg/max = %d/%v/%d", s.Count(), s.Average(), s.Max())
	}
}
