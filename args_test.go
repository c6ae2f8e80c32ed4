package spray

import (
	"encoding/binary"
	"testing"
)

func TestDispatchGroups_ReferenceScenario(t *testing.T) {
	// emission 65000 with 16x16 workgroups needs ceil(sqrt(65000)/16) = 16.
	if g := DispatchGroups(65000); g != 16 {
		t.Fatalf("expected 16 groups for emission 65000, got %d", g)
	}
}

func TestDispatchGroups_MinimalSufficientSquare(t *testing.T) {
	cases := []uint32{1, 2, 255, 256, 257, 1000, 65000, 65536, 65537, 1 << 19, MaxParticles - 1, MaxParticles}
	for _, e := range cases {
		g := DispatchGroups(e)
		if g*g*ThreadsPerGroup < e {
			t.Errorf("emission %d: grid %dx%d covers only %d threads", e, g, g, g*g*ThreadsPerGroup)
		}
		if g > 1 && (g-1)*(g-1)*ThreadsPerGroup >= e {
			t.Errorf("emission %d: grid %d is not minimal, %d would do", e, g, g-1)
		}
	}
}

func TestDispatchGroups_Degenerate(t *testing.T) {
	if g := DispatchGroups(0); g != 0 {
		t.Fatalf("expected empty grid for zero emission, got %d", g)
	}
}

func TestDispatchGroups_ClampedToCapacity(t *testing.T) {
	if g := DispatchGroups(MaxParticles + 12345); g != MaxGroupsPerAxis {
		t.Fatalf("over-capacity emission should clamp to %d groups, got %d", MaxGroupsPerAxis, g)
	}
	if g := DispatchGroups(MaxParticles); g != MaxGroupsPerAxis {
		t.Fatalf("full capacity should need exactly %d groups, got %d", MaxGroupsPerAxis, g)
	}
}

func TestEncodeDispatchArgs(t *testing.T) {
	buf := EncodeDispatchArgs(16)
	if len(buf) != DispatchArgsSize {
		t.Fatalf("expected %d bytes, got %d", DispatchArgsSize, len(buf))
	}
	x := binary.LittleEndian.Uint32(buf[0:4])
	y := binary.LittleEndian.Uint32(buf[4:8])
	z := binary.LittleEndian.Uint32(buf[8:12])
	if x != 16 || y != 16 || z != 1 {
		t.Fatalf("expected (16,16,1), got (%d,%d,%d)", x, y, z)
	}
}
