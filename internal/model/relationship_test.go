package model

import "testing"

func TestOrderedPair(t *testing.T) {
	low, high := OrderedPair("U2", "U1")
	if low != "U1" || high != "U2" {
		t.Fatalf("OrderedPair = (%s,%s)", low, high)
	}
	low, high = OrderedPair("U1", "U2")
	if low != "U1" || high != "U2" {
		t.Fatalf("OrderedPair = (%s,%s)", low, high)
	}
}

func TestViewOf(t *testing.T) {
	req := NewRelationshipRequest("U9", "U3")
	if req.UserLow != "U3" || req.UserHigh != "U9" {
		t.Fatalf("pair not normalised: %+v", req)
	}
	cases := []struct {
		name string
		rel  *Relationship
		a, b string
		want RelationView
	}{
		{"none", nil, "U3", "U9", ViewNone},
		{"requested by a", req, "U9", "U3", ViewRequestedByA},
		{"requested by b", req, "U3", "U9", ViewRequestedByB},
		{"accepted", &Relationship{UserLow: "U3", UserHigh: "U9", RequesterId: "U9", State: RelationAccepted}, "U3", "U9", ViewAccepted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ViewOf(tc.rel, tc.a, tc.b); got != tc.want {
				t.Fatalf("ViewOf = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCounterpart(t *testing.T) {
	rel := NewRelationshipRequest("U1", "U2")
	if rel.Counterpart("U1") != "U2" || rel.Counterpart("U2") != "U1" {
		t.Fatalf("Counterpart mismatch")
	}
}
