package profiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoEvents is returned by Dump when nothing usable was recorded.
var ErrNoEvents = errors.New("profiler: no events to dump")

const speedscopeSchema = "https://www.speedscope.app/file-format-schema.json"

type ssFile struct {
	Schema             string      `json:"$schema"`
	Shared             ssShared    `json:"shared"`
	Profiles           []ssProfile `json:"profiles"`
	ActiveProfileIndex int         `json:"activeProfileIndex"`
	Exporter           string      `json:"exporter,omitempty"`
	Name               string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"` // "evented"
	Name       string    `json:"name"`
	Unit       string    `json:"unit"` // "microseconds"
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // µs since the first event
	Frame int    `json:"frame"`
}

// Dump writes the recorded scopes to path as a speedscope file.
func Dump(path string) error {
	doc, err := buildProfile(ring.snapshot())
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("profiler: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("profiler: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("profiler: %w", err)
	}
	return os.Rename(tmp, path)
}

// DumpTemp dumps into the OS temp dir and returns the file path.
func DumpTemp() (string, error) {
	path := filepath.Join(os.TempDir(), "canopy.profile.speedscope.json")
	if err := Dump(path); err != nil {
		return "", err
	}
	return path, nil
}

// buildProfile turns raw events into balanced open/close pairs. Closes that
// do not match the innermost open scope are skipped; scopes still open at
// the end are closed at the last timestamp.
func buildProfile(evs []event) (*ssFile, error) {
	if len(evs) == 0 {
		return nil, ErrNoEvents
	}

	namesMu.Lock()
	frames := make([]ssFrame, len(names))
	for i, n := range names {
		frames[i] = ssFrame{Name: n}
	}
	namesMu.Unlock()

	base := evs[0].atNS
	out := make([]ssEvent, 0, len(evs))
	stack := make([]int, 0, 16)
	last := int64(0)

	for _, e := range evs {
		at := max((e.atNS-base)/1000, last)
		if e.open {
			out = append(out, ssEvent{Type: "O", At: at, Frame: e.name})
			stack = append(stack, e.name)
		} else {
			if len(stack) == 0 || stack[len(stack)-1] != e.name {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: at, Frame: e.name})
		}
		last = at
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, ssEvent{Type: "C", At: last, Frame: stack[i]})
	}
	if len(out) == 0 {
		return nil, ErrNoEvents
	}

	return &ssFile{
		Schema: speedscopeSchema,
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "canopy frames",
			Unit:     "microseconds",
			EndValue: last,
			Events:   out,
		}},
		Exporter: "canopy-profiler",
		Name:     "canopy capture",
	}, nil
}
