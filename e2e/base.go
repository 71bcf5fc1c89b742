package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"chat-wire/domain"
	"chat-wire/infrastructure/httpapi"
	"chat-wire/infrastructure/ws"
	"chat-wire/moderation"
	"chat-wire/observability"
	"chat-wire/projection"
	"chat-wire/repositories"
	"chat-wire/runtime"
	"chat-wire/runtime/workers"
	"chat-wire/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseSuite boots the whole stack in-process: BadgerDB, the supervised
// event pipeline, the REST surface, and the realtime gateway behind an
// httptest server. Scenarios talk to it exactly like the SPA does.
type BaseSuite struct {
	suite.Suite
	Config Config

	server       *httptest.Server
	db           *badger.DB
	orchestrator *runtime.Orchestrator
	cancel       context.CancelFunc
}

func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Reduced to 16 Mo for testing (avoid gigabytes of preallocated vlog)
	s.db, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	s.Require().NoError(err)

	censored, err := moderation.LoadCensoredWords()
	s.Require().NoError(err)
	moderator, err := moderation.NewModerator(censored.Words, '*')
	s.Require().NoError(err)

	supervisor := workers.NewSupervisor(log, 50*time.Millisecond)
	registry := runtime.NewRegistry()
	monitor := observability.NewMonitor(log)
	timeline := projection.NewTimeline(50)
	s.orchestrator = runtime.NewOrchestrator(log, supervisor, registry, monitor,
		timeline, 64, time.Second, time.Minute)

	messageRepository := repositories.NewMessageRepository(s.db, log, nil)
	userRepository := repositories.NewUserRepository(s.db)
	imageHost, err := services.NewDiskImageHost(log, s.T().TempDir(), "/uploads")
	s.Require().NoError(err)

	chatService := services.NewChatService(log, messageRepository, userRepository,
		s.orchestrator, moderator, imageHost, monitor)
	authService := services.NewAuthService(userRepository, imageHost, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.Require().NoError(s.orchestrator.Start(ctx))

	gateway := ws.NewGateway(log, s.orchestrator, chatService, 32, 5*time.Second)
	api := httpapi.NewServer(log, authService, chatService, time.Hour)
	s.server = httptest.NewServer(api.Router(gateway, s.T().TempDir()))
}

func (s *BaseSuite) TearDownSuite() {
	s.server.Close()
	s.orchestrator.Stop()
	s.cancel()
	s.Require().NoError(s.db.Close())
}

// Step prints a colorized header so scenario logs read as a narrative.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// account couples a signed-up user with its session token.
type account struct {
	User  domain.User
	Token string
}

// Signup registers an account through the REST surface and captures the
// session cookie the browser client would hold.
func (s *BaseSuite) Signup(fullName, email string) account {
	body := map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": "Sup3r$ecretPass",
	}
	status, headers, raw := s.post("/api/auth/signup", "", body)
	s.Require().Equal(http.StatusCreated, status, string(raw))

	var user domain.User
	s.Require().NoError(json.Unmarshal(raw, &user))

	token := s.sessionCookie(headers)
	s.Require().NotEmpty(token, "signup did not set a session cookie")
	return account{User: user, Token: token}
}

func (s *BaseSuite) sessionCookie(headers http.Header) string {
	for _, line := range headers.Values("Set-Cookie") {
		if strings.HasPrefix(line, "jwt=") {
			return strings.SplitN(strings.TrimPrefix(line, "jwt="), ";", 2)[0]
		}
	}
	return ""
}

// post issues an authenticated JSON request and returns the raw response.
func (s *BaseSuite) post(path, token string, body any) (int, http.Header, []byte) {
	return s.do(http.MethodPost, path, token, body)
}

func (s *BaseSuite) get(path, token string) (int, http.Header, []byte) {
	return s.do(http.MethodGet, path, token, nil)
}

func (s *BaseSuite) do(method, path, token string, body any) (int, http.Header, []byte) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintln(&logBuilder, "\nRESPONSE:")
		fmt.Fprintln(&logBuilder, raw.String())
	}
	s.T().Log(logBuilder.String())

	return resp.StatusCode, resp.Header, raw.Bytes()
}

// Dial opens a realtime connection authenticated by the token.
func (s *BaseSuite) Dial(token string) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err)
	if resp != nil {
		s.Require().NoError(resp.Body.Close())
	}
	return conn
}

// AwaitFrame reads frames until one of the wanted type arrives. Roster
// broadcasts interleave freely with directed frames, so scenarios state
// what they wait for instead of assuming a strict order.
func (s *BaseSuite) AwaitFrame(conn *websocket.Conn, wanted string) ws.Envelope {
	deadline := time.Now().Add(5 * time.Second)
	s.Require().NoError(conn.SetReadDeadline(deadline))

	for {
		var env ws.Envelope
		err := conn.ReadJSON(&env)
		s.Require().NoError(err, "no %q frame before the deadline", wanted)
		if s.Config.DebugJSON {
			s.T().Logf("WS frame %q: %s", env.Type, string(env.Payload))
		}
		if env.Type == wanted {
			return env
		}
	}
}

// AwaitRoster waits for an onlineUsers frame listing every given user.
// Intermediate rosters (taken while connections are still arriving) are
// skipped.
func (s *BaseSuite) AwaitRoster(conn *websocket.Conn, userIDs ...string) {
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		env := s.AwaitFrame(conn, ws.TypeOnlineUsers)
		var payload ws.OnlineUsersPayload
		s.Require().NoError(json.Unmarshal(env.Payload, &payload))

		online := map[string]bool{}
		for _, id := range payload.Online {
			online[id] = true
		}
		complete := true
		for _, id := range userIDs {
			if !online[id] {
				complete = false
				break
			}
		}
		if complete {
			return
		}
	}
	s.Require().Fail("roster never converged on the expected members")
}

// AssertSilent verifies no frame of the given type shows up in the window.
// The read deadline it sets is terminal for the connection, so call it
// last in a scenario.
func (s *BaseSuite) AssertSilent(conn *websocket.Conn, unwanted string, window time.Duration) {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(window)))

	for {
		var env ws.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			// Deadline reached without the unwanted frame: silence confirmed.
			return
		}
		s.Require().NotEqual(unwanted, env.Type, "unexpected %q frame: %s", unwanted, string(env.Payload))
	}
}
