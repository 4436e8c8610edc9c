// Package nats exposes LED control over NATS.
//
// An optional embedded server lets the daemon act as its own broker. The
// Bridge answers control requests and republishes LED activity from the
// event bus.
//
// Subjects:
//
//	ledbridge.control.mode     request/reply, payload {"mode":"BLINK"} or plain BLINK
//	ledbridge.control.command  request/reply, payload {"command":"3"} or plain 3
//	ledbridge.led.state        LED status changes
//	ledbridge.led.commands     commands written, from any source
//	ledbridge.led.clicks       physical click count changes
//
// Control replies are CommandReply values. Code carries the legacy integer
// result: bytes written, or a negative error code.
//
// Try it with the nats CLI:
//
//	nats req ledbridge.control.mode BREATH
//	nats sub 'ledbridge.led.>'
package nats
