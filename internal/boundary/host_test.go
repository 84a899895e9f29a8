package boundary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"eventdriver/internal/driver"
	"eventdriver/pkg/types"
)

func decodeReplies(t *testing.T, out string) []Reply {
	t.Helper()
	var replies []Reply
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var r Reply
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		replies = append(replies, r)
	}
	return replies
}

func TestServe_DispatchesAndReplies(t *testing.T) {
	rec := driver.NewRecorder("host")
	in := strings.Join([]string{
		`{"id":1,"method":"handle_event","event":{"kind":"EventA","data":{"field_a1":100,"field_a2":false}}}`,
		`{"id":2,"method":"handle_event","event":{"kind":"EventB","data":{"field_b1":3.4,"field_b2":42}}}`,
	}, "\n") + "\n"
	var out bytes.Buffer
	if err := Serve(context.Background(), strings.NewReader(in), &out, rec); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	replies := decodeReplies(t, out.String())
	if len(replies) != 2 || !replies[0].OK || replies[0].ID != 1 || !replies[1].OK || replies[1].ID != 2 {
		t.Fatalf("unexpected replies: %+v", replies)
	}
	got := rec.Events()
	if len(got) != 2 || got[0] != (types.EventA{FieldA1: 100}) || got[1] != (types.EventB{FieldB1: 3.4, FieldB2: 42}) {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestServe_ErrorCodes(t *testing.T) {
	failing := driver.ClientFunc(func(context.Context, types.Event) error { return errors.New("nope") })
	panicky := driver.ClientFunc(func(context.Context, types.Event) error { panic("bad") })
	cases := []struct {
		name string
		h    driver.Client
		line string
		code string
	}{
		{"nil handler", nil, `{"id":1,"method":"handle_event","event":{"kind":"EventA","data":{}}}`, CodeNotImplemented},
		{"base handler", driver.Base{}, `{"id":1,"method":"handle_event","event":{"kind":"EventA","data":{}}}`, CodeNotImplemented},
		{"handler error", failing, `{"id":1,"method":"handle_event","event":{"kind":"EventB","data":{"field_b1":1,"field_b2":1}}}`, CodeHandlerError},
		{"handler panic", panicky, `{"id":1,"method":"handle_event","event":{"kind":"EventA","data":{}}}`, CodeHandlerError},
		{"unknown method", nil, `{"id":1,"method":"shutdown"}`, CodeBadRequest},
		{"unknown kind", nil, `{"id":1,"method":"handle_event","event":{"kind":"EventC","data":{}}}`, CodeBadRequest},
		{"bad json", nil, `{not json`, CodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := Serve(context.Background(), strings.NewReader(tc.line+"\n"), &out, tc.h); err != nil {
				t.Fatalf("Serve: %v", err)
			}
			replies := decodeReplies(t, out.String())
			if len(replies) != 1 || replies[0].Error == nil || replies[0].Error.Code != tc.code {
				t.Fatalf("unexpected replies: %+v", replies)
			}
		})
	}
}

func TestServe_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := Serve(ctx, strings.NewReader(`{"id":1,"method":"handle_event","event":{"kind":"EventA","data":{}}}`+"\n"), &out, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("no reply expected after cancel: %s", out.String())
	}
}

func TestReplyErr(t *testing.T) {
	if err := replyErr(Reply{OK: true}); err != nil {
		t.Fatalf("ok reply: %v", err)
	}
	if err := replyErr(Reply{}); !IsRemote(err) {
		t.Fatalf("empty reply should be a remote error, got %v", err)
	}
	err := replyErr(Reply{Error: &ReplyError{Code: CodeNotImplemented, Message: "not implemented"}})
	if !errors.Is(err, driver.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
