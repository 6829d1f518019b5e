package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MatchwellLabs/Faceoff/internal/events"
	"github.com/MatchwellLabs/Faceoff/internal/ranking"
)

// MockEvents implements events.Client for testing
type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockEvents) Subscribe(subject string, handler func(string, []byte)) error {
	args := m.Called(subject, handler)
	return args.Error(0)
}

func (m *MockEvents) Close() {
	m.Called()
}

func setupEventRouter(ev events.Client) http.Handler {
	reg := NewRegistry(nil, testLogger())
	return NewRouter(reg, nil, ev, ranking.DefaultConfig(), 10, "", testLogger())
}

func TestCreatePublishesSessionCreatedEvent(t *testing.T) {
	ev := new(MockEvents)
	ev.On("Publish", mock.Anything, mock.Anything).Return(nil)
	router := setupEventRouter(ev)

	resp := createSession(t, router, []string{"a", "b", "c"})

	ev.AssertCalled(t, "Publish",
		events.SubjectSessionCreated(resp.ID.String()), mock.Anything)
}

func TestSubmitPublishesComparisonAndCompletionEvents(t *testing.T) {
	ev := new(MockEvents)
	ev.On("Publish", mock.Anything, mock.Anything).Return(nil)
	router := setupEventRouter(ev)

	session := createSession(t, router, []string{"a", "b"})
	base := "/api/v1/sessions/" + session.ID.String()

	w := doRequest(t, router, "POST", base+"/comparisons", SubmitComparisonRequest{Winner: "a", Loser: "b"})
	assert.Equal(t, http.StatusOK, w.Code)

	ev.AssertCalled(t, "Publish",
		events.SubjectComparisonRecorded(session.ID.String()), mock.Anything)
	ev.AssertCalled(t, "Publish",
		events.SubjectSessionCompleted(session.ID.String()), mock.Anything)
}

func TestDuplicateSubmitPublishesNothing(t *testing.T) {
	ev := new(MockEvents)
	ev.On("Publish", mock.Anything, mock.Anything).Return(nil)
	router := setupEventRouter(ev)

	session := createSession(t, router, []string{"a", "b", "c"})
	base := "/api/v1/sessions/" + session.ID.String()

	doRequest(t, router, "POST", base+"/comparisons", SubmitComparisonRequest{Winner: "a", Loser: "b"})
	calls := len(ev.Calls)

	w := doRequest(t, router, "POST", base+"/comparisons", SubmitComparisonRequest{Winner: "a", Loser: "b"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ev.Calls, calls, "duplicate submission must not publish")
}

func TestResetPublishesResetEvent(t *testing.T) {
	ev := new(MockEvents)
	ev.On("Publish", mock.Anything, mock.Anything).Return(nil)
	router := setupEventRouter(ev)

	session := createSession(t, router, []string{"a", "b"})
	w := doRequest(t, router, "POST", "/api/v1/sessions/"+session.ID.String()+"/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	ev.AssertCalled(t, "Publish",
		events.SubjectSessionReset(session.ID.String()), mock.Anything)
}

func TestDeletePublishesDeletedEvent(t *testing.T) {
	ev := new(MockEvents)
	ev.On("Publish", mock.Anything, mock.Anything).Return(nil)
	router := setupEventRouter(ev)

	session := createSession(t, router, []string{"a", "b"})
	req := httptest.NewRequest("DELETE", "/api/v1/sessions/"+session.ID.String(), nil)
	req.Header.Set("X-Judge-ID", "judge-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	ev.AssertCalled(t, "Publish",
		events.SubjectSessionDeleted(session.ID.String()), mock.Anything)
}

func TestNilEventsClientIsTolerated(t *testing.T) {
	router := setupEventRouter(nil)

	session := createSession(t, router, []string{"a", "b"})
	w := doRequest(t, router, "POST", "/api/v1/sessions/"+session.ID.String()+"/comparisons",
		SubmitComparisonRequest{Winner: "a", Loser: "b"})
	assert.Equal(t, http.StatusOK, w.Code)
}
