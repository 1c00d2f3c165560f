package mail

import (
	"errors"
	"html/template"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []*Message
	fail bool
}

func (r *recordingSender) Send(m *Message) error {
	if m.subject == "boom" {
		panic("boom")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, m)
	return nil
}

func TestRaw(t *testing.T) {
	raw := string(To("a@b.co", "c@d.co").Subject("Hi").Text("hello").raw("Nuber <x@y.z>"))

	assert.Contains(t, raw, "To: a@b.co, c@d.co\r\n")
	assert.Contains(t, raw, "Subject: Hi\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nhello"))
}

func TestRender(t *testing.T) {
	tmpl := template.Must(template.New("t").Parse(`<b>{{.Code}}</b>`))
	m, err := To("a@b.co").Render(tmpl, map[string]string{"Code": "<x>"})
	require.NoError(t, err)
	assert.Equal(t, `<b>&lt;x&gt;</b>`, m.Content())
}

func TestDispatcher_DeliversEverythingBeforeClose(t *testing.T) {
	s := &recordingSender{}
	d := NewDispatcher(s, 2)

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Enqueue(To("a@b.co").Subject("hello")))
	}
	require.NoError(t, d.Enqueue(To("a@b.co").Subject("boom")))
	d.Close()

	assert.Len(t, s.sent, 10)
	assert.ErrorIs(t, d.Enqueue(To("a@b.co")), ErrClosed)
	d.Close()
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	s := &recordingSender{fail: true}
	d := NewDispatcher(s, 1)
	require.NoError(t, d.Enqueue(To("a@b.co").Subject("x")))
	d.Close()
	assert.Empty(t, s.sent)
}

func TestFromConfig_LogsWithoutCredentials(t *testing.T) {
	assert.IsType(t, LogSender{}, FromConfig())
}
