package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Kind tags the active variant of an Event.
type Kind string

const (
	KindA Kind = "EventA"
	KindB Kind = "EventB"
)

// ErrUnknownKind is returned when decoding a wire event whose kind is not EventA or EventB.
var ErrUnknownKind = errors.New("unknown event kind")

// Event is a closed set of event variants. Only EventA and EventB implement it.
// Clients discriminate with a type switch.
type Event interface {
	Kind() Kind
	isEvent()
}

// EventA carries an integer and a flag.
type EventA struct {
	FieldA1 int64 `json:"field_a1"`
	FieldA2 bool  `json:"field_a2"`
}

func (EventA) Kind() Kind { return KindA }
func (EventA) isEvent()   {}

func (e EventA) String() string {
	return fmt.Sprintf("EventA(field_a1=%d, field_a2=%t)", e.FieldA1, e.FieldA2)
}

// EventB carries a float and a 32-bit integer.
type EventB struct {
	FieldB1 float64 `json:"field_b1"`
	FieldB2 int32   `json:"field_b2"`
}

func (EventB) Kind() Kind { return KindB }
func (EventB) isEvent()   {}

func (e EventB) String() string {
	return fmt.Sprintf("EventB(field_b1=%g, field_b2=%d)", e.FieldB1, e.FieldB2)
}

// JSON has no literal for NaN or infinities, so non-finite floats travel as strings.
type wireFloat float64

func (f wireFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

func (f *wireFloat) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*f = wireFloat(math.NaN())
		case "+Inf", "Inf":
			*f = wireFloat(math.Inf(1))
		case "-Inf":
			*f = wireFloat(math.Inf(-1))
		default:
			return fmt.Errorf("invalid float literal %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = wireFloat(v)
	return nil
}

type wireEventB struct {
	FieldB1 wireFloat `json:"field_b1"`
	FieldB2 int32     `json:"field_b2"`
}

func (e EventB) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEventB{FieldB1: wireFloat(e.FieldB1), FieldB2: e.FieldB2})
}

func (e *EventB) UnmarshalJSON(b []byte) error {
	var w wireEventB
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	e.FieldB1 = float64(w.FieldB1)
	e.FieldB2 = w.FieldB2
	return nil
}

// Envelope is the tagged wire form of an Event:
//
//	{"kind":"EventA","data":{"field_a1":100,"field_a2":false}}
type Envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Wrap builds the envelope for ev.
func Wrap(ev Event) (Envelope, error) {
	if ev == nil {
		return Envelope{}, errors.New("nil event")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", ev.Kind(), err)
	}
	return Envelope{Kind: ev.Kind(), Data: data}, nil
}

// Unwrap decodes the variant named by the envelope's kind.
func (env Envelope) Unwrap() (Event, error) {
	switch env.Kind {
	case KindA:
		var a EventA
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
		}
		return a, nil
	case KindB:
		var b EventB
		if err := json.Unmarshal(env.Data, &b); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
}

// MarshalEvent encodes ev in envelope form.
func MarshalEvent(ev Event) ([]byte, error) {
	env, err := Wrap(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalEvent decodes an envelope-form event.
func UnmarshalEvent(b []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	return env.Unwrap()
}
