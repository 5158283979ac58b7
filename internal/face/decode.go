package face

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrDecode reports a response body that is not a JSON object with a faces key.
	ErrDecode = errors.New("face: malformed detection response")
	// ErrNoFace reports a well-formed response without any detected face.
	ErrNoFace = errors.New("face: no face detected")
)

type envelope struct {
	Faces *[]*Result `json:"faces"`
}

// DecodeResponse parses a detection response body. Nested fields that are
// missing or null decode to nil; only a malformed top level or a missing
// faces key is an error.
func DecodeResponse(data []byte) (*Response, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if env.Faces == nil {
		return nil, fmt.Errorf("%w: missing faces key", ErrDecode)
	}
	return &Response{Faces: *env.Faces}, nil
}

// First returns the first non-nil face in the response.
func (r *Response) First() (*Result, error) {
	if r == nil {
		return nil, ErrNoFace
	}
	for _, f := range r.Faces {
		if f != nil {
			return f, nil
		}
	}
	return nil, ErrNoFace
}

// Count returns the number of non-nil faces.
func (r *Response) Count() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, f := range r.Faces {
		if f != nil {
			n++
		}
	}
	return n
}
