package cachekeys

import (
	"strings"
	"testing"
)

func TestTags_AreDistinctPrefixes(t *testing.T) {
	tags := Tags()
	if len(tags) != 6 {
		t.Fatalf("expected 6 tags but got: %d", len(tags))
	}

	for i, a := range tags {
		for j, b := range tags {
			if i == j {
				continue
			}
			if strings.HasPrefix(a.Key("x"), b.Prefix()) {
				t.Errorf("key under %s is matched by prefix of %s", a, b)
			}
		}
	}
}
