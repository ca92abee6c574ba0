package marks

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zsiec/stimecode/pkg/timecode"
)

// Mark is a named timecode. Only the literal timecode string and its frame
// rate are persisted; the frame number is derived again on every read.
type Mark struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FrameRate string    `json:"framerate"`
	DropFrame bool      `json:"drop_frame"`
	Timecode  string    `json:"timecode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMark captures tc under name with a fresh id.
func NewMark(name string, tc timecode.Timecode) *Mark {
	now := time.Now().UTC()
	return &Mark{
		ID:        uuid.New().String(),
		Name:      name,
		FrameRate: tc.FrameRate().Label(),
		DropFrame: tc.IsDropFrame(),
		Timecode:  tc.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Value decodes the stored literal back into a signed Timecode.
func (m *Mark) Value() (timecode.Timecode, error) {
	fr, err := timecode.ParseFrameRate(m.FrameRate)
	if err != nil {
		return timecode.Timecode{}, err
	}
	if fr, err = fr.WithDropFrame(m.DropFrame); err != nil {
		return timecode.Timecode{}, err
	}
	return timecode.FromString(fr, m.Timecode)
}

// Set replaces the stored timecode, keeping id, name and creation time.
func (m *Mark) Set(tc timecode.Timecode) {
	m.FrameRate = tc.FrameRate().Label()
	m.DropFrame = tc.IsDropFrame()
	m.Timecode = tc.String()
	m.UpdatedAt = time.Now().UTC()
}

// Shift moves the mark by n frames at its own rate.
func (m *Mark) Shift(n int64) error {
	tc, err := m.Value()
	if err != nil {
		return err
	}
	m.Set(tc.AddFrames(n))
	return nil
}

func (m *Mark) validate() error {
	if m.ID == "" {
		return fmt.Errorf("mark id is required")
	}
	if _, err := m.Value(); err != nil {
		return fmt.Errorf("mark %s: %w", m.ID, err)
	}
	return nil
}

// Offset is the signed distance from one mark to another, expressed at the
// rate of from: from.Neg() + to, so from is the left operand.
func Offset(from, to *Mark) (timecode.Timecode, error) {
	a, err := from.Value()
	if err != nil {
		return timecode.Timecode{}, err
	}
	b, err := to.Value()
	if err != nil {
		return timecode.Timecode{}, err
	}
	return a.Neg().Add(b), nil
}
