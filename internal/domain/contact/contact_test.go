package contact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	msgs []*Message
}

func (m *mockRepo) Create(_ context.Context, msg *Message) error {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Message, int, error) {
	out := make([]*Message, 0, len(m.msgs))
	for i := len(m.msgs) - 1; i >= 0; i-- {
		out = append(out, m.msgs[i])
	}
	return out, len(out), nil
}

func TestService_Submit(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	m, err := svc.Submit(context.Background(), &SubmitRequest{Name: " Asha ", Email: "asha@test.com", Message: "Do you deliver to Mulbagal?"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", m.Name)
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Len(t, repo.msgs, 1)
}

func TestService_Submit_MissingFields(t *testing.T) {
	svc := NewService(&mockRepo{})
	for _, req := range []SubmitRequest{
		{Email: "a@test.com", Message: "hi"},
		{Name: "A", Message: "hi"},
		{Name: "A", Email: "a@test.com", Message: "   "},
	} {
		req := req
		_, err := svc.Submit(context.Background(), &req)
		assert.True(t, errors.Is(err, ErrMissingFields), "request %+v", req)
	}
}

func TestHandler_Submit(t *testing.T) {
	h := NewHandler(NewService(&mockRepo{}))
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha","email":"asha@test.com","message":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Submit(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.Submit(e.NewContext(req, httptest.NewRecorder()))
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestMessageRepo_List_NewestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contact_messages`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY created_at DESC, id\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "phone", "message", "created_at"}).
			AddRow(uuid.New(), "B", "b@test.com", "", "second", now).
			AddRow(uuid.New(), "A", "a@test.com", "", "first", now.Add(-time.Hour)))

	msgs, total, err := NewMessageRepo(mock).List(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}
