package ttscache

import (
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Could you give me 30 seconds?  ": "could you give me 30 seconds",
		"I TOTALLY understand.":             "i totally understand",
		"":                                  "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCacheableRejectsLongAndEmpty(t *testing.T) {
	if Cacheable("") {
		t.Error("empty string should not be cacheable")
	}
	long := ""
	for i := 0; i < 20; i++ {
		long += "a long phrase repeated many times "
	}
	if Cacheable(Normalize(long)) {
		t.Error("long phrase should not be cacheable")
	}
	if !Cacheable(Normalize("sounds good")) {
		t.Error("short phrase should be cacheable")
	}
}

func TestGetPutRoundTrip(t *testing.T) {
	c := New()
	key := Normalize("sounds good")
	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss before put")
	}

	frames := [][]byte{{1, 2, 3}}
	c.Put(key, frames)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestEvictsOldestAtCapacity(t *testing.T) {
	c := New()
	for i := 0; i < MaxEntries; i++ {
		c.Put(fmt.Sprintf("phrase-%03d", i), [][]byte{{byte(i)}})
	}
	if c.Len() != MaxEntries {
		t.Fatalf("len = %d, want %d", c.Len(), MaxEntries)
	}

	if _, ok := c.Get("phrase-000"); !ok {
		t.Fatal("expected oldest entry present before eviction")
	}

	c.Put("phrase-new", [][]byte{{9}})
	if c.Len() != MaxEntries {
		t.Fatalf("len after eviction = %d, want %d", c.Len(), MaxEntries)
	}
	if _, ok := c.Get("phrase-000"); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
	if _, ok := c.Get("phrase-new"); !ok {
		t.Fatal("expected newly inserted entry present")
	}
}
