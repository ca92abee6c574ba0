package api

import (
	"time"

	"github.com/zsiec/stimecode/internal/marks"
	"github.com/zsiec/stimecode/pkg/timecode"
)

type TimecodeResponse struct {
	FrameRate   string  `json:"framerate"`
	DropFrame   bool    `json:"drop_frame"`
	Timecode    string  `json:"timecode"`
	Fractional  string  `json:"fractional"`
	FrameNumber int64   `json:"frame_number"`
	Frames      uint64  `json:"frames"`
	Variant     string  `json:"variant"`
	Seconds     float64 `json:"seconds"`
}

func newTimecodeResponse(tc timecode.Timecode) TimecodeResponse {
	return TimecodeResponse{
		FrameRate:   tc.FrameRate().Label(),
		DropFrame:   tc.IsDropFrame(),
		Timecode:    tc.String(),
		Fractional:  tc.Fractional(),
		FrameNumber: tc.FrameNumber(),
		Frames:      tc.Frames(),
		Variant:     tc.Variant().String(),
		Seconds:     tc.Seconds(),
	}
}

type FrameRateResponse struct {
	Label            string  `json:"label"`
	Rational         string  `json:"rational"`
	FPS              float64 `json:"fps"`
	RoundedFPS       int64   `json:"rounded_fps"`
	DropFrame        bool    `json:"drop_frame"`
	DroppedPerMinute int64   `json:"dropped_per_minute"`
}

type FrameRateListResponse struct {
	FrameRates []FrameRateResponse `json:"framerates"`
	Default    string              `json:"default"`
}

// ConvertRequest carries exactly one of Timecode, FrameNumber or Seconds.
type ConvertRequest struct {
	FrameRate   string   `json:"framerate"`
	Timecode    *string  `json:"timecode,omitempty"`
	FrameNumber *int64   `json:"frame_number,omitempty"`
	Seconds     *float64 `json:"seconds,omitempty"`
	NonDrop     bool     `json:"non_drop,omitempty"`
}

// OperandRequest is one side of an arithmetic or compare request. Frames
// and Scalar are plain numbers; otherwise it describes a timecode by string
// or frame number at FrameRate.
type OperandRequest struct {
	FrameRate   string   `json:"framerate,omitempty"`
	Timecode    *string  `json:"timecode,omitempty"`
	FrameNumber *int64   `json:"frame_number,omitempty"`
	Frames      *int64   `json:"frames,omitempty"`
	Scalar      *float64 `json:"scalar,omitempty"`
	NonNegative bool     `json:"non_negative,omitempty"`
	NonDrop     bool     `json:"non_drop,omitempty"`
}

type ArithmeticRequest struct {
	Op    string         `json:"op"`
	Left  OperandRequest `json:"left"`
	Right OperandRequest `json:"right"`
}

type ArithmeticResponse struct {
	Op     string           `json:"op"`
	Result TimecodeResponse `json:"result"`
}

type CompareRequest struct {
	Left  OperandRequest `json:"left"`
	Right OperandRequest `json:"right"`
}

type CompareResponse struct {
	Result       int     `json:"result"`
	Equal        bool    `json:"equal"`
	LeftSeconds  float64 `json:"left_seconds"`
	RightSeconds float64 `json:"right_seconds"`
}

type EvaluateRequest struct {
	FrameRate  string `json:"framerate"`
	Expression string `json:"expression"`
	NonDrop    bool   `json:"non_drop,omitempty"`
}

type EvaluateResponse struct {
	Expression string            `json:"expression"`
	Result     string            `json:"result"`
	Timecode   *TimecodeResponse `json:"timecode,omitempty"`
	Number     *float64          `json:"number,omitempty"`
}

type CreateMarkRequest struct {
	Name        string  `json:"name"`
	FrameRate   string  `json:"framerate"`
	Timecode    *string `json:"timecode,omitempty"`
	FrameNumber *int64  `json:"frame_number,omitempty"`
	NonDrop     bool    `json:"non_drop,omitempty"`
}

type UpdateMarkRequest struct {
	Name        *string `json:"name,omitempty"`
	Timecode    *string `json:"timecode,omitempty"`
	ShiftFrames *int64  `json:"shift_frames,omitempty"`
}

type MarkResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Value     TimecodeResponse `json:"value"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type MarkListResponse struct {
	Marks []MarkResponse `json:"marks"`
	Count int            `json:"count"`
	Time  time.Time      `json:"time"`
}

type OffsetResponse struct {
	From   string           `json:"from"`
	To     string           `json:"to"`
	Offset TimecodeResponse `json:"offset"`
}

func newMarkResponse(m *marks.Mark) (MarkResponse, error) {
	tc, err := m.Value()
	if err != nil {
		return MarkResponse{}, err
	}
	return MarkResponse{
		ID:        m.ID,
		Name:      m.Name,
		Value:     newTimecodeResponse(tc),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
