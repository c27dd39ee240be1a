package report

import (
	"reflect"
	"testing"

	"github.com/layerist/proxy-checker/internal/model"
)

func TestBuild_RestoresInputOrder(t *testing.T) {
	// results arrive in completion order, indices out of sequence
	results := []model.ProbeResult{
		{Proxy: model.Proxy{Host: "c", Port: 3}, Index: 2, Alive: true},
		{Proxy: model.Proxy{Host: "a", Port: 1}, Index: 0, Alive: true},
		{Proxy: model.Proxy{Host: "d", Port: 4}, Index: 3, Alive: false, Reason: model.ReasonTimeout},
		{Proxy: model.Proxy{Host: "b", Port: 2}, Index: 1, Alive: true},
	}

	rep := Build(results)
	want := []string{"a:1", "b:2", "c:3"}
	if !reflect.DeepEqual(rep.Lines(), want) {
		t.Fatalf("got %v want %v", rep.Lines(), want)
	}
}

func TestBuild_EmptyIsValid(t *testing.T) {
	rep := Build(nil)
	if len(rep.Working) != 0 {
		t.Fatalf("empty input should give empty report: %#v", rep)
	}

	rep = Build([]model.ProbeResult{
		{Proxy: model.Proxy{Host: "a", Port: 1}, Index: 0, Reason: model.ReasonRefused},
	})
	if len(rep.Working) != 0 {
		t.Fatalf("all-failed input should give empty report: %#v", rep)
	}
}

func TestBuild_DuplicatesPreserved(t *testing.T) {
	p := model.Proxy{Host: "a", Port: 1}
	results := []model.ProbeResult{
		{Proxy: p, Index: 0, Alive: true},
		{Proxy: p, Index: 1, Alive: true},
	}

	rep := Build(results)
	if len(rep.Working) != 2 {
		t.Fatalf("duplicate inputs keep duplicate outputs: %#v", rep.Working)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	results := []model.ProbeResult{
		{Proxy: model.Proxy{Host: "b", Port: 2}, Index: 1, Alive: true},
		{Proxy: model.Proxy{Host: "a", Port: 1}, Index: 0, Alive: true},
	}

	Build(results)
	if results[0].Index != 1 {
		t.Fatal("Build must sort a copy, not the caller's slice")
	}
}

func TestBuild_CredentialsPreservedInLines(t *testing.T) {
	results := []model.ProbeResult{
		{Proxy: model.Proxy{Host: "5.6.7.8", Port: 3128, Username: "user", Password: "pass"}, Index: 0, Alive: true},
	}

	rep := Build(results)
	want := []string{"5.6.7.8:3128:user:pass"}
	if !reflect.DeepEqual(rep.Lines(), want) {
		t.Fatalf("got %v want %v", rep.Lines(), want)
	}
}
