package snowflake

import "testing"

func TestInitRejectsOutOfRangeNode(t *testing.T) {
	if err := Init(1024); err == nil {
		t.Fatalf("expected error for node 1024")
	}
	if err := Init(7); err != nil {
		t.Fatalf("Init(7): %v", err)
	}
}

func TestGenerateIDIncreasing(t *testing.T) {
	prev := GenerateID()
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
}
