package mail

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rianAnugrah/xyz-portal-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDisabledIsNoop(t *testing.T) {
	s := New(config.MailConfig{})
	assert.False(t, s.Enabled())
	assert.NoError(t, s.Send(t.Context(), Message{}))
}

func TestSendResend(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(config.MailConfig{Enable: true, From: "noreply@xyz.test", ResendKey: "re_test"})
	s.resendEndpoint = srv.URL

	msg, err := PasswordReset("editor@xyz.test", "https://cms.xyz.test/reset?token=", "abc")
	require.NoError(t, err)
	require.NoError(t, s.Send(t.Context(), msg))

	assert.Equal(t, "noreply@xyz.test", got["from"])
	assert.Equal(t, []interface{}{"editor@xyz.test"}, got["to"])
	assert.Contains(t, got["html"], "https://cms.xyz.test/reset?token=abc")
}

func TestSendResendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	s := New(config.MailConfig{Enable: true, ResendKey: "re_test"})
	s.resendEndpoint = srv.URL

	err := s.Send(t.Context(), Message{To: []string{"a@xyz.test"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend error 422: invalid from")
}

func TestMIMEHeaders(t *testing.T) {
	s := New(config.MailConfig{Enable: true, User: "bot@xyz.test", ReplyTo: "desk@xyz.test"})
	raw := string(s.mime(Message{To: []string{"a@xyz.test", "b@xyz.test"}, Subject: "Hi", HTML: "<p>x</p>"}))

	assert.Contains(t, raw, "From: bot@xyz.test\r\n")
	assert.Contains(t, raw, "To: a@xyz.test, b@xyz.test\r\n")
	assert.Contains(t, raw, "Reply-To: desk@xyz.test\r\n")
	assert.Contains(t, raw, "\r\n\r\n<p>x</p>")
}
