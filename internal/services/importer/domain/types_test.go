package domain

import "testing"

func TestIsPurchase(t *testing.T) {
	cases := []struct {
		name string
		obj  TrackObject
		want bool
	}{
		{"price and currency", TrackObject{"price": 9.99, "currency": "USD"}, true},
		{"price only", TrackObject{"price": 9.99}, false},
		{"currency only", TrackObject{"currency": "USD"}, false},
		{"neither", TrackObject{"name": "session_start"}, false},
		{"null values still count", TrackObject{"price": nil, "currency": nil}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.obj.IsPurchase(); got != c.want {
				t.Fatalf("IsPurchase() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestBlobRefString(t *testing.T) {
	r := BlobRef{Bucket: "imports", Key: "2026/users.json"}
	if got := r.String(); got != "imports/2026/users.json" {
		t.Fatalf("String() = %q", got)
	}
}

func TestInputRef(t *testing.T) {
	in := Input{Bucket: "b", Key: "k", ByteOffset: 42}
	if in.Ref() != (BlobRef{Bucket: "b", Key: "k"}) {
		t.Fatalf("Ref() = %+v", in.Ref())
	}
}
