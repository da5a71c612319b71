package gateway

import (
	"encoding/json"
	"testing"

	"github.com/soyeahso/adlad/internal/ad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	frame, err := NewRequest("req-1", "ads.show", showParams{Kind: "rewarded"})
	require.NoError(t, err)

	assert.Equal(t, FrameTypeRequest, frame.Type)
	assert.Equal(t, "req-1", frame.ID)
	assert.Equal(t, "ads.show", frame.Method)
	assert.JSONEq(t, `{"kind":"rewarded"}`, string(frame.Params))
}

func TestNewRequest_NilParams(t *testing.T) {
	frame, err := NewRequest("req-1", "health", nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(frame.Params))
}

func TestNewResponse_AdResult(t *testing.T) {
	frame, err := NewResponse("req-2", ad.Failed(ad.ReasonAlreadyPlaying))
	require.NoError(t, err)

	assert.Equal(t, FrameTypeResponse, frame.Type)
	require.NotNil(t, frame.OK)
	assert.True(t, *frame.OK)
	assert.JSONEq(t, `{"didShowAd":false,"errorReason":"already-playing"}`, string(frame.Payload))

	frame, err = NewResponse("req-3", ad.Shown())
	require.NoError(t, err)
	assert.JSONEq(t, `{"didShowAd":true,"errorReason":null}`, string(frame.Payload))
}

func TestNewErrorResponse(t *testing.T) {
	frame := NewErrorResponse("req-4", ErrorShape{Code: "invalid_params", Message: "bad kind"})

	data, err := json.Marshal(frame)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"res","id":"req-4","ok":false,"error":{"code":"invalid_params","message":"bad kind"}}`,
		string(data))
}

func TestNewEvent(t *testing.T) {
	frame, err := NewEvent(EventAdsPlaying, PlayingEvent{Playing: true, Kind: "rewarded"}, 7)
	require.NoError(t, err)

	assert.Equal(t, FrameTypeEvent, frame.Type)
	assert.Equal(t, EventAdsPlaying, frame.Event)
	assert.Equal(t, int64(7), frame.Seq)
	assert.JSONEq(t, `{"playing":true,"kind":"rewarded"}`, string(frame.Payload))
}

func TestPlayingEvent_OmitsEmptyKind(t *testing.T) {
	data, err := json.Marshal(PlayingEvent{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"playing":false}`, string(data))
}

func TestConnectParams_OmitsNilAuth(t *testing.T) {
	data, err := json.Marshal(ConnectParams{
		MinProtocol: 1,
		MaxProtocol: 1,
		Client:      ClientInfo{ID: "game", Version: "1.0.0", Platform: "web"},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"auth"`)
}
