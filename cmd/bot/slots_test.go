package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\nVERSION:2.0\nEND:VCALENDAR\n"))
	}))
	defer srv.Close()

	t.Setenv("CALENDAR_URL", srv.URL)
	t.Setenv("DAYS_AHEAD", "3")

	root := newRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"slots"})

	require.NoError(t, root.Execute())

	text := out.String()
	assert.True(t,
		strings.HasPrefix(text, "Свободные слоты на ближайшие 3 дней:") ||
			strings.HasPrefix(text, "Нет свободных слотов в ближайшие 3 дней"),
		"неожиданный отчёт: %q", text)
}

func TestSlotsCmd_FeedDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	t.Setenv("CALENDAR_URL", srv.URL)

	root := newRootCmd("test")
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"slots"})

	assert.Error(t, root.Execute())
}

func TestServeCmd_RequiresToken(t *testing.T) {
	t.Setenv("CALENDAR_URL", "https://calendar.example.com/a.ics")
	t.Setenv("TELEGRAM_TOKEN", "")

	root := newRootCmd("test")
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"serve"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}
