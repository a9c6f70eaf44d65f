package ws

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"

	"coinflip3d/internal/game"
	"coinflip3d/internal/scene"
)

// Envelope is the wire shape of every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client → server
type HelloPayload struct {
	Renderer bool `json:"renderer"` // scene and coin mesh are ready to draw
	Timeline bool `json:"timeline"` // tween engine is loaded
}

// server → client
type ReadyPayload struct {
	SessionID string     `json:"session_id"`
	FrameRate int        `json:"frame_rate"`
	Camera    CameraPose `json:"camera"`
}

type CameraPose struct {
	Position mgl64.Vec3 `json:"position"`
	Target   mgl64.Vec3 `json:"target"`
}

type PosePayload struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Vec3 `json:"rotation"`
}

type FramePayload struct {
	T      float64     `json:"t"`
	Coin   PosePayload `json:"coin"`
	Camera PosePayload `json:"camera"`
}

type FlipStartedPayload struct {
	Seq      int64               `json:"seq"`
	Params   game.FlipParameters `json:"params"`
	SettleAt float64             `json:"settle_at"`
}

type ResultPayload struct {
	Outcome game.Outcome `json:"outcome"`
	Label   string       `json:"label"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func framePayload(s scene.Snapshot) FramePayload {
	return FramePayload{
		T:      s.T,
		Coin:   PosePayload{Position: s.Coin.Position, Rotation: s.Coin.Rotation},
		Camera: PosePayload{Position: s.Camera.Position, Rotation: s.Camera.Rotation},
	}
}

func encode(msgType string, payload any) ([]byte, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
