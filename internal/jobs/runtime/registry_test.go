package runtime

import (
	"reflect"
	"testing"
)

type stubHandler struct {
	jobType string
}

func (h *stubHandler) Type() string       { return h.jobType }
func (h *stubHandler) Run(*Context) error { return nil }

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	h := &stubHandler{jobType: "profile_relearn"}
	if err := r.Register(h); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := r.Get("profile_relearn")
	if !ok || got != h {
		t.Fatalf("Get: want registered handler, got=(%v,%v)", got, ok)
	}
	if _, ok := r.Get("unknown"); ok {
		t.Fatalf("Get unknown type: want ok=false")
	}
}

func TestRegistryRejectsDuplicatesAndNil(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); err == nil {
		t.Fatalf("Register nil: want error")
	}
	if err := r.Register(&stubHandler{jobType: ""}); err == nil {
		t.Fatalf("Register empty type: want error")
	}
	if err := r.Register(&stubHandler{jobType: "profile_relearn"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&stubHandler{jobType: "profile_relearn"}); err == nil {
		t.Fatalf("Register duplicate: want error")
	}
}

func TestRegistryTypesSorted(t *testing.T) {
	r := NewRegistry()
	for _, jt := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(&stubHandler{jobType: jt}); err != nil {
			t.Fatalf("Register %s: %v", jt, err)
		}
	}
	want := []string{"alpha", "mid", "zeta"}
	if got := r.Types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Types: want=%v got=%v", want, got)
	}
}
