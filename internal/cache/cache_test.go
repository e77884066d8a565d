package cache

import (
	"testing"
	"time"
)

func TestSetGetRoundtrip(t *testing.T) {
	c := New(true)
	etag := c.Set("k", []byte("v"), time.Minute)

	data, gotTag, ok := c.Get("k")
	if !ok {
		t.Fatal("entry not found")
	}
	if string(data) != "v" {
		t.Errorf("data = %q", data)
	}
	if gotTag != etag {
		t.Errorf("etag = %q, want %q", gotTag, etag)
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("v"), -time.Second)
	if _, _, ok := c.Get("k"); ok {
		t.Error("expired entry was served")
	}
}

func TestDisabledCacheStillComputesETags(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)
	if etag == "" {
		t.Error("disabled cache returned empty etag")
	}
	if _, _, ok := c.Get("k"); ok {
		t.Error("disabled cache served an entry")
	}
}

func TestComputeETagStable(t *testing.T) {
	a := ComputeETag([]byte("payload"))
	b := ComputeETag([]byte("payload"))
	other := ComputeETag([]byte("different"))
	if a != b {
		t.Errorf("same payload produced %q and %q", a, b)
	}
	if a == other {
		t.Error("different payloads share an etag")
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("v"))
	tests := []struct {
		ifNoneMatch string
		want        bool
	}{
		{"", false},
		{"*", true},
		{etag, true},
		{`W/"deadbeef"`, false},
	}
	for _, tt := range tests {
		if got := CheckETagMatch(tt.ifNoneMatch, etag); got != tt.want {
			t.Errorf("CheckETagMatch(%q) = %v, want %v", tt.ifNoneMatch, got, tt.want)
		}
	}
}
