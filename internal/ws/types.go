package ws

const (
	// client - server
	MsgHello = "hello"
	MsgFlip  = "flip"
	MsgPing  = "ping"

	// server - client
	MsgReady           = "ready"
	MsgFrame           = "frame"
	MsgHideInstruction = "hide_instruction"
	MsgFlipStarted     = "flip_started"
	MsgClearResult     = "clear_result"
	MsgResult          = "result"
	MsgPong            = "pong"
	MsgError           = "error"
)
