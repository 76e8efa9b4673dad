package x11

import (
	"encoding/binary"

	"github.com/jezek/xgb/record"
	"github.com/jezek/xgb/xproto"
)

// rawEvent is one intercepted device event from the record stream.
type rawEvent struct {
	code    byte
	keycode xproto.Keycode
	state   uint16
}

// eventHook runs the RECORD stream. EnableContext replies arrive until the
// context is disabled; each carries a batch of raw core events that are
// decoded and enqueued for the dispatcher. Nothing here blocks on X
// requests, the streaming connection must stay drained.
func (i *Interface) eventHook() {
	defer i.wg.Done()

	cookie := record.EnableContext(i.recConn, i.recCtx)
	for {
		reply, err := cookie.Reply()
		if err != nil {
			select {
			case <-i.done:
			default:
				i.log.Error("record stream failed", "error", err)
			}
			return
		}
		if reply == nil {
			return
		}
		// Category 0 is FromServer; anything else is control traffic.
		// Byte-swapped client streams cannot be decoded here and only
		// appear for clients with foreign byte order, so drop them.
		if reply.Category != 0 || reply.ClientSwapped {
			continue
		}
		for _, ev := range parseRecordData(reply.Data) {
			switch ev.code {
			case xproto.KeyPress:
				i.enqueue(command{kind: cmdHandleKey, press: true, keycode: ev.keycode, state: ev.state})
			case xproto.KeyRelease:
				i.enqueue(command{kind: cmdHandleKey, press: false, keycode: ev.keycode, state: ev.state})
			case xproto.FocusIn:
				i.enqueue(command{kind: cmdFocusChanged})
			}
		}
	}
}

// parseRecordData splits a record reply's data into raw core events. Core
// events are fixed 32-byte wire structs; the first byte is the event code
// with the send-event flag in the top bit, the second the keycode, and the
// state field sits at offset 28. Replies and errors (codes 0 and 1)
// occasionally share the buffer and are skipped.
func parseRecordData(data []byte) []rawEvent {
	var events []rawEvent
	for len(data) >= 32 {
		code := data[0] & 0x7f
		if code >= 2 {
			events = append(events, rawEvent{
				code:    code,
				keycode: xproto.Keycode(data[1]),
				state:   binary.LittleEndian.Uint16(data[28:30]),
			})
		}
		data = data[32:]
	}
	return events
}
