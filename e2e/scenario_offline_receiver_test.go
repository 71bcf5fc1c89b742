package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"chat-wire/domain"
	"chat-wire/infrastructure/ws"

	"github.com/stretchr/testify/suite"
)

type testOfflineReceiverSuite struct {
	BaseSuite
}

func TestOfflineReceiverSuite(t *testing.T) {
	suite.Run(t, &testOfflineReceiverSuite{})
}

func (s *testOfflineReceiverSuite) TestMessageToOfflineReceiverSurvives() {
	s.Step("Step 0: Sign up both participants, only Carol connects")
	carol := s.Signup("Carol", "carol@example.com")
	dave := s.Signup("Dave", "dave@example.com")

	carolConn := s.Dial(carol.Token)
	defer carolConn.Close()
	s.AwaitRoster(carolConn, carol.User.ID)

	s.Step("Step 1: An empty submit is rejected up front")
	status, _, raw := s.post("/api/chat/send/"+dave.User.ID, carol.Token,
		map[string]string{})
	s.Require().Equal(http.StatusBadRequest, status, string(raw))

	s.Step("Step 2: Carol messages the offline Dave")
	payload, err := json.Marshal(ws.SendMessagePayload{
		ReceiverID: dave.User.ID,
		Text:       "see you tomorrow",
	})
	s.Require().NoError(err)
	s.Require().NoError(carolConn.WriteJSON(ws.Envelope{Type: ws.TypeSendMessage, Payload: payload}))

	// The ack confirms persistence even though nobody is listening
	ack := s.AwaitFrame(carolConn, ws.TypeAck)
	var acked domain.Message
	s.Require().NoError(json.Unmarshal(ack.Payload, &acked))
	s.Require().Equal("see you tomorrow", acked.Text)

	s.Step("Step 3: Carol never receives her own message as a push")
	s.AssertSilent(carolConn, ws.TypeNewMessage, 500*time.Millisecond)

	s.Step("Step 4: Dave recovers the message from history later")
	status, _, raw = s.get("/api/chat/"+carol.User.ID, dave.Token)
	s.Require().Equal(http.StatusOK, status, string(raw))

	var history []domain.Message
	s.Require().NoError(json.Unmarshal(raw, &history))
	s.Require().Len(history, 1)
	s.Require().Equal(acked.ID, history[0].ID)
	s.Require().Equal("see you tomorrow", history[0].Text)
}
