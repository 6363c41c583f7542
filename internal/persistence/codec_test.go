package persistence

import (
	"testing"

	"github.com/petrijr/onboard/pkg/api"
)

func TestProfileCodecRoundTrip(t *testing.T) {
	p := api.Profile{
		"life":  {"name": "Ada", "age": 33},
		"prefs": {"tags": []string{"a", "b"}},
	}

	data, err := EncodeProfile(p)
	if err != nil {
		t.Fatalf("EncodeProfile failed: %v", err)
	}

	got, err := DecodeProfile(data)
	if err != nil {
		t.Fatalf("DecodeProfile failed: %v", err)
	}
	if got.GetString(api.Field("life", "name")) != "Ada" {
		t.Fatalf("name lost in round trip: %+v", got)
	}
	// JSON numbers come back as float64; the accessor absorbs that.
	if got.GetInt(api.Field("life", "age")) != 33 {
		t.Fatalf("age lost in round trip: %+v", got)
	}
	if tags := got.GetStrings(api.Field("prefs", "tags")); len(tags) != 2 {
		t.Fatalf("tags lost in round trip: %v", tags)
	}
}

func TestDecodeProfile_Malformed(t *testing.T) {
	if _, err := DecodeProfile([]byte("{not json")); err == nil {
		t.Fatalf("malformed payload must error")
	}

	p, err := DecodeProfile(nil)
	if err != nil {
		t.Fatalf("empty payload should decode to an empty profile: %v", err)
	}
	if len(p) != 0 {
		t.Fatalf("unexpected profile from empty payload: %+v", p)
	}
}

func TestFlowStateCodec(t *testing.T) {
	fs := api.FlowState{SectionIndex: 2, QuestionIndex: 1, Completed: map[string]bool{"life": true}}

	data, err := EncodeFlowState(fs)
	if err != nil {
		t.Fatalf("EncodeFlowState failed: %v", err)
	}
	got, err := DecodeFlowState(data)
	if err != nil {
		t.Fatalf("DecodeFlowState failed: %v", err)
	}
	if got.SectionIndex != 2 || got.QuestionIndex != 1 || !got.Completed["life"] {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, err := DecodeFlowState([]byte("[")); err == nil {
		t.Fatalf("malformed state must error")
	}

	// Empty and legacy payloads come back with a usable Completed map.
	empty, err := DecodeFlowState(nil)
	if err != nil || empty.Completed == nil {
		t.Fatalf("empty payload decode = (%+v, %v)", empty, err)
	}
	legacy, err := DecodeFlowState([]byte(`{"section_index":1}`))
	if err != nil || legacy.Completed == nil {
		t.Fatalf("legacy payload decode = (%+v, %v)", legacy, err)
	}
}
