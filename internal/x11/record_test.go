package x11

import (
	"encoding/binary"
	"testing"

	"github.com/jezek/xgb/xproto"
)

func wireEvent(code, detail byte, state uint16) []byte {
	buf := make([]byte, 32)
	buf[0] = code
	buf[1] = detail
	binary.LittleEndian.PutUint16(buf[28:30], state)
	return buf
}

func TestParseRecordData(t *testing.T) {
	var data []byte
	data = append(data, wireEvent(xproto.KeyPress, 38, 0x11)...)
	data = append(data, wireEvent(xproto.KeyRelease, 38, 0x11)...)
	data = append(data, wireEvent(xproto.FocusIn, 0, 0)...)

	events := parseRecordData(data)
	if len(events) != 3 {
		t.Fatalf("parsed %d events, want 3", len(events))
	}
	if events[0].code != xproto.KeyPress || events[0].keycode != 38 || events[0].state != 0x11 {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].code != xproto.KeyRelease {
		t.Errorf("event 1 = %+v", events[1])
	}
	if events[2].code != xproto.FocusIn {
		t.Errorf("event 2 = %+v", events[2])
	}
}

func TestParseRecordDataSkipsRepliesAndErrors(t *testing.T) {
	var data []byte
	data = append(data, wireEvent(0, 0, 0)...) // reply
	data = append(data, wireEvent(1, 0, 0)...) // error
	data = append(data, wireEvent(xproto.KeyPress, 24, 0)...)

	events := parseRecordData(data)
	if len(events) != 1 || events[0].keycode != 24 {
		t.Fatalf("events = %+v, want single key press", events)
	}
}

func TestParseRecordDataSendEventFlag(t *testing.T) {
	data := wireEvent(xproto.KeyPress|0x80, 30, 0)
	events := parseRecordData(data)
	if len(events) != 1 || events[0].code != xproto.KeyPress {
		t.Fatalf("send-event flag not masked: %+v", events)
	}
}

func TestRecordRangesCaptureSet(t *testing.T) {
	ranges := recordRanges()
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	r := ranges[0]
	// Focus events are only recordable on the delivered path; folding them
	// into the device range would stream pointer motion and never focus.
	if r.DeviceEvents.First != xproto.KeyPress || r.DeviceEvents.Last != xproto.KeyRelease {
		t.Errorf("device events = %d..%d, want %d..%d",
			r.DeviceEvents.First, r.DeviceEvents.Last, xproto.KeyPress, xproto.KeyRelease)
	}
	if r.DeliveredEvents.First != xproto.FocusIn || r.DeliveredEvents.Last != xproto.FocusIn {
		t.Errorf("delivered events = %d..%d, want FocusIn only",
			r.DeliveredEvents.First, r.DeliveredEvents.Last)
	}
}

func TestParseRecordDataTruncated(t *testing.T) {
	if events := parseRecordData(make([]byte, 31)); len(events) != 0 {
		t.Errorf("truncated chunk produced events: %+v", events)
	}
	if events := parseRecordData(nil); len(events) != 0 {
		t.Errorf("nil data produced events: %+v", events)
	}
}
