package e2e

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"eventdriver/internal/driver"
	"eventdriver/pkg/types"
)

func TestE2E_HTTPToHostProcess(t *testing.T) {
	before := driver.NewRecorder("before")
	after := driver.NewRecorder("after")
	host := startHost(t, "echo-host", "echo")
	srv := newServer(t, driver.New([]driver.Client{before, host, after}))

	resp, body := httpPostJSON(t, srv.URL+"/events/a", types.EmitARequest{FieldA1: 100, FieldA2: false})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events/a status=%d body=%s", resp.StatusCode, body)
	}
	resp, body = httpPostJSON(t, srv.URL+"/events/b", types.EmitBRequest{FieldB1: 3.4, FieldB2: 42})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events/b status=%d body=%s", resp.StatusCode, body)
	}
	var er types.EmitResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Kind != types.KindB || er.Clients != 3 {
		t.Fatalf("unexpected emit response %s (err=%v)", body, err)
	}

	want := []types.Event{types.EventA{FieldA1: 100}, types.EventB{FieldB1: 3.4, FieldB2: 42}}
	for _, r := range []*driver.Recorder{before, after} {
		if got := r.Events(); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s got %+v want %+v", r.Name(), got, want)
		}
	}
}

func TestE2E_UnoverriddenHostFailsFast(t *testing.T) {
	after := driver.NewRecorder("after")
	host := startHost(t, "base-host", "base")
	srv := newServer(t, driver.New([]driver.Client{host, after}))

	resp, body := httpPostJSON(t, srv.URL+"/events/a", types.EmitARequest{FieldA1: 1, FieldA2: true})
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	if len(after.Events()) != 0 {
		t.Fatalf("fail-fast dispatch reached the client after the failing host")
	}
}

func TestE2E_IsolatedHostFailureReported(t *testing.T) {
	after := driver.NewRecorder("after")
	host := startHost(t, "base-host", "base")
	d := driver.NewWithConfig(driver.Config{Policy: driver.Isolate, Clients: []driver.Client{host, after}})
	srv := newServer(t, d)

	resp, body := httpPostJSON(t, srv.URL+"/events/b", types.EmitBRequest{FieldB1: -1.25, FieldB2: 7})
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var er types.EmitResponse
	if err := json.Unmarshal(body, &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(er.Failures) != 1 || er.Failures[0].Client != "base-host" || er.Failures[0].Index != 0 {
		t.Fatalf("unexpected failures: %+v", er.Failures)
	}
	if got := after.Events(); len(got) != 1 || got[0] != (types.EventB{FieldB1: -1.25, FieldB2: 7}) {
		t.Fatalf("after got %+v", got)
	}
}
