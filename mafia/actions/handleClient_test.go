package actions

import (
	"encoding/json"
	"testing"

	"mafserver/models"
)

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    models.InboundEvent
	}{
		{
			name:    "night action",
			message: `{"type":"action.night","payload":{"action":"kill","targetId":"p2"}}`,
			want:    models.NightActionPayload{Action: models.NightActionKill, TargetID: "p2"},
		},
		{
			name:    "vote",
			message: `{"type":"action.vote","payload":{"targetId":"p3"}}`,
			want:    models.VotePayload{TargetID: "p3"},
		},
		{
			name:    "chat message",
			message: `{"type":"message.send","payload":{"text":"hello"}}`,
			want:    models.MessagePayload{Text: "hello"},
		},
		{
			name:    "sync request",
			message: `{"type":"game.sync_request"}`,
			want:    models.SyncRequestPayload{},
		},
		{
			name:    "opening story request",
			message: `{"type":"story.opening_request"}`,
			want:    models.OpeningStoryRequestPayload{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env envelope
			if err := json.Unmarshal([]byte(tt.message), &env); err != nil {
				t.Fatal(err)
			}
			got, err := parseInbound(env)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("parseInbound() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseInboundRejectsUnknownType(t *testing.T) {
	if _, err := parseInbound(envelope{Type: "game.cheat"}); err == nil {
		t.Fatal("unknown event type was accepted")
	}
}

func TestParseInboundRejectsMalformedPayload(t *testing.T) {
	env := envelope{Type: models.EventVote, Payload: json.RawMessage(`"not an object"`)}
	if _, err := parseInbound(env); err == nil {
		t.Fatal("malformed payload was accepted")
	}
}
