package boundary

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"eventdriver/internal/driver"
	"eventdriver/pkg/types"
)

// Serve runs the host side of the protocol: it reads requests from r, hands
// each event to h and writes one reply per request to w. A nil h answers
// every request with not_implemented. Serve returns nil when r reaches EOF.
func Serve(ctx context.Context, r io.Reader, w io.Writer, h driver.Client) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxFrameBytes)
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := enc.Encode(serveOne(ctx, line, h)); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("flush reply: %w", err)
		}
	}
	return sc.Err()
}

func serveOne(ctx context.Context, line []byte, h driver.Client) Reply {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Reply{Error: &ReplyError{Code: CodeBadRequest, Message: "invalid frame: " + err.Error()}}
	}
	if req.Method != MethodHandleEvent {
		return Reply{ID: req.ID, Error: &ReplyError{Code: CodeBadRequest, Message: fmt.Sprintf("unknown method %q", req.Method)}}
	}
	ev, err := req.Event.Unwrap()
	if err != nil {
		return Reply{ID: req.ID, Error: &ReplyError{Code: CodeBadRequest, Message: err.Error()}}
	}
	if h == nil {
		h = driver.Base{}
	}
	if err := callHandler(ctx, h, ev); err != nil {
		code := CodeHandlerError
		if errors.Is(err, driver.ErrNotImplemented) {
			code = CodeNotImplemented
		}
		return Reply{ID: req.ID, Error: &ReplyError{Code: code, Message: err.Error()}}
	}
	return Reply{ID: req.ID, OK: true}
}

func callHandler(ctx context.Context, h driver.Client, ev types.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.HandleEvent(ctx, ev)
}
